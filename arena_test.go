package main

import (
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestNewPageLinksToTarget(t *testing.T) {
	page := newPage("arena", "/arena", "Click anywhere to open a new game.")

	if !strings.Contains(page, `href="/arena"`) {
		t.Errorf("page should link to the given target, got %q", page)
	}

	errPage := newPage("Server Error", "/", "An error has occurred.")
	if !strings.Contains(errPage, `href="/"`) {
		t.Errorf("error page should link home, got %q", errPage)
	}
}

func TestArenaRoutesHonorPrefix(t *testing.T) {
	cfg := &Config{prefix: "/pre"}
	mux := httprouter.New()

	registerArenaGame(cfg, "/arena", mux)

	for _, route := range []string{
		"/pre/arena",
		"/pre/arena/abc12345",
		"/pre/arena/abc12345/ws",
		"/pre/arena/abc12345/qr",
	} {
		if handle, _, _ := mux.Lookup("GET", route); handle == nil {
			t.Errorf("route %q not registered", route)
		}
	}

	if handle, _, _ := mux.Lookup("GET", "/arena"); handle != nil {
		t.Error("unprefixed root route should not be registered when a prefix is set")
	}
}
