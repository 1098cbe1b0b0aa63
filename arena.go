// Arena
//
// A turn-based elimination simulation in the style of the Hunger Games.
// Each channel hosts at most one game at a time. The first person to issue
// "new" becomes the host; anyone may join as a tribute or the host may add
// and remove tributes by name. Once started, the host steps the game
// forward round by round, and each round narrates encounters between the
// surviving tributes until one winner (or nobody) remains.
//
// Features:
// - WebSockets per channel ID: /path/:channelid and /path/:channelid/ws
// - Commands carried as JSON over the socket: new, join, add, remove,
//   fill, status, start, step, end
// - Clients identified by cookie (playerID); the creator's cookie owns
//   the game and gates start/step/end
// - Roster capacity 2-24, padded on request from named filler pools
// - Rendered rounds broadcast to every connected client as embeds
// - Command errors returned only to the offending client
// - Idle websocket hubs auto-reaped after a configurable timeout
// - Random 8-char channel IDs via crypto/rand, with collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/arena/hunger"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type CommandMessage struct {
	Type     string `json:"type"`               // "new", "join", "add", "remove", "fill", "status", "start", "step", "end"
	Username string `json:"username,omitempty"` // sender's display name
	Title    string `json:"title,omitempty"`    // new
	Name     string `json:"name,omitempty"`     // add / remove
	Gender   string `json:"gender,omitempty"`   // join: "m", "f" or "o"
	Group    string `json:"group,omitempty"`    // fill: filler pool name
}

// EmbedMessage carries a rendered game payload for direct display.
type EmbedMessage struct {
	Type     string `json:"type"` // "embed"
	Title    string `json:"title"`
	Body     string `json:"body"`
	Footer   string `json:"footer,omitempty"`
	Severity string `json:"severity"` // "info", "danger" or "final"
}

// NoticeMessage is a plain broadcast line.
type NoticeMessage struct {
	Type    string `json:"type"` // "notice"
	Message string `json:"message"`
}

// ErrorMessage is sent only to the client whose command failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type commandRequest struct {
	client *Client
	msg    CommandMessage
}

// Hub serializes all commands for one channel, so the underlying game
// only ever sees a single sequential stream of operations.
type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan commandRequest

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time
}

func newHub(channelID string) *Hub {
	now := time.Now()
	return &Hub{
		id:         channelID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan commandRequest),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) run(cfg *Config, reg *hunger.Registry) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true
			h.mu.Unlock()

			// Late joiners get the current state of any running game.
			if payload, err := reg.Status(h.id); err == nil {
				c.send <- renderEmbed(payload)
			}

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case cr := <-h.commands:
			h.handleCommand(cfg, reg, cr)
		}
	}
}

func severityString(s hunger.Severity) string {
	switch s {
	case hunger.SeverityDanger:
		return "danger"
	case hunger.SeverityFinal:
		return "final"
	default:
		return "info"
	}
}

func renderEmbed(p hunger.Payload) EmbedMessage {
	return EmbedMessage{
		Type:     "embed",
		Title:    p.Title,
		Body:     p.Body,
		Footer:   p.Footer,
		Severity: severityString(p.Severity),
	}
}

func parseGender(flag string) hunger.Gender {
	switch strings.ToLower(strings.TrimPrefix(flag, "-")) {
	case "m":
		return hunger.Male
	case "f":
		return hunger.Female
	default:
		return hunger.Other
	}
}

// handleCommand translates one client command into a core call and fans
// the result out: confirmations and payloads to everyone, errors only to
// the sender.
func (h *Hub) handleCommand(cfg *Config, reg *hunger.Registry, cr commandRequest) {
	c := cr.client
	msg := cr.msg

	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()

	if c.playerID == "" {
		return
	}

	switch msg.Type {
	case "new":
		s, err := reg.NewGame(h.id, c.playerID, msg.Username, msg.Title)
		if err != nil {
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: %q created %q in %s", msg.Username, s.Title, h.id)
		h.broadcast(NoticeMessage{
			Type: "notice",
			Message: fmt.Sprintf("%s has started %s! Send `join` to enter yourself, `add <name>` to enter someone else, or `fill` to pad the roster with filler tributes. %d slots max, %d needed to start.",
				msg.Username, s.Title, hunger.MaxTributes, hunger.MinTributes),
		})

	case "join":
		confirmation, err := reg.AddTribute(h.id, msg.Username, parseGender(msg.Gender), true)
		if err != nil {
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: %q joined the game in %s", msg.Username, h.id)
		h.broadcast(NoticeMessage{Type: "notice", Message: confirmation})

	case "add":
		confirmation, err := reg.AddTribute(h.id, msg.Name, hunger.Other, false)
		if err != nil {
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: %q added to the game in %s", msg.Name, h.id)
		h.broadcast(NoticeMessage{Type: "notice", Message: confirmation})

	case "remove":
		confirmation, err := reg.RemoveTribute(h.id, msg.Name)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(NoticeMessage{Type: "notice", Message: confirmation})

	case "fill":
		group := msg.Group
		if group == "" {
			group = "hungergames"
		}
		pool, err := hunger.DefaultPool(group)
		if err != nil {
			h.sendError(c, err)
			return
		}
		confirmation, err := reg.PadTributes(h.id, pool)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(NoticeMessage{Type: "notice", Message: confirmation})

	case "status":
		payload, err := reg.Status(h.id)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.send(c, renderEmbed(payload))

	case "start":
		payload, err := reg.Start(h.id, c.playerID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: Game started in %s", h.id)
		h.broadcast(renderEmbed(payload))

	case "step":
		payload, err := reg.Step(h.id, c.playerID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.broadcast(renderEmbed(payload))

	case "end":
		s, err := reg.Cancel(h.id, c.playerID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		logf(cfg, "GAMES: %q cancelled in %s", s.Title, h.id)
		h.broadcast(NoticeMessage{
			Type:    "notice",
			Message: fmt.Sprintf("%s has been cancelled. Anyone may now start a new game.", s.Title),
		})

	default:
		// ignore unknown types
	}
}

// sendError delivers a failure to the issuing client only. Unknown-group
// errors include the list of valid pools.
func (h *Hub) sendError(c *Client, err error) {
	text := err.Error()
	if herr, ok := err.(*hunger.Error); ok && herr.Code == hunger.InvalidGroup {
		text = fmt.Sprintf("%s Valid groups are: %s", text, strings.Join(hunger.PoolNames(), ", "))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case c.send <- ErrorMessage{Type: "error", Message: text}:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) send(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// closeAll disconnects all clients of this hub (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "arena_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by channel ID, so each
// $path/$channelid is its own isolated session. The game state itself
// lives in the hunger.Registry; hubs only carry connections.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	registry    *hunger.Registry
	idleTimeout time.Duration
}

func newGameManager(idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		registry:    hunger.NewRegistry(),
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, channelID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[channelID]; ok {
		return hub
	}

	hub := newHub(channelID)
	gm.hubs[channelID] = hub
	go hub.run(cfg, gm.registry)
	return hub
}

// newChannelID generates a crypto-random channel ID and ensures it
// doesn't collide with existing hubs.
func (gm *GameManager) newChannelID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than
// idleTimeout. Reaping only drops connections; a pending or running game
// keeps its registry slot until it ends or is cancelled.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(gm.hubs, id)
				go hub.closeAll()
			}
		}
		gm.mu.Unlock()
	}
}

// WebSocket handler that picks the hub based on :channelid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		channelID := ps.ByName("channelid")
		if channelID == "" {
			http.Error(w, "missing channel id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.getHub(cfg, channelID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		hub.register <- client

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg CommandMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.commands <- commandRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	channelID := ps.ByName("channelid")
	if channelID == "" {
		http.Error(w, "missing channel id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:channelid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// Simple HTML client for quick testing
const arenaHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Arena</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 48rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #log { padding: 0; list-style: none; }
  #log li { padding: 0.4rem 0; border-bottom: 1px solid #ddd; white-space: pre-wrap; }
  #log li.danger { border-left: 4px solid #c0392b; padding-left: 0.5rem; }
  #log li.final { border-left: 4px solid #f1c40f; padding-left: 0.5rem; }
  #log li.error { color: #c0392b; }
  footer { font-size: 0.8rem; color: #666; }
  input { width: 100%; padding: 0.4rem; box-sizing: border-box; }
</style>
</head>
<body>
<h1>Arena</h1>
<div id="status">Connecting…</div>
<input id="cmd" placeholder="new [title] | join [m|f|o] | add <name> | remove <name> | fill [group] | status | start | step | end" autofocus>
<ul id="log"></ul>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const logEl = document.getElementById('log');
  const cmdEl = document.getElementById('cmd');

  let username = '';

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = location.pathname.replace(/\/$/, '') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  function append(text, cls) {
    const li = document.createElement('li');
    li.textContent = text;
    if (cls) li.className = cls;
    logEl.prepend(li);
  }

  function parse(line) {
    const parts = line.trim().split(/\s+/);
    const type = parts[0];
    const rest = parts.slice(1).join(' ');
    const msg = { type: type, username: username };
    switch (type) {
      case 'new': msg.title = rest; break;
      case 'join': msg.gender = rest; break;
      case 'add':
      case 'remove': msg.name = rest; break;
      case 'fill': msg.group = rest; break;
    }
    return msg;
  }

  ws.onopen = function() {
    statusEl.textContent = 'Connected.';
    username = prompt('Enter your username:') || 'anonymous';
  };

  cmdEl.addEventListener('keydown', function(e) {
    if (e.key !== 'Enter' || !cmdEl.value.trim()) return;
    ws.send(JSON.stringify(parse(cmdEl.value)));
    cmdEl.value = '';
  });

  ws.onmessage = function(event) {
    try {
      const msg = JSON.parse(event.data);
      if (msg.type === 'embed') {
        let text = msg.title + '\n' + msg.body;
        if (msg.footer) text += '\n— ' + msg.footer;
        append(text, msg.severity === 'info' ? '' : msg.severity);
      } else if (msg.type === 'notice') {
        append(msg.message);
      } else if (msg.type === 'error') {
        append(msg.message, 'error');
      }
    } catch (e) {
      console.error('bad message', e);
    }
  };

  ws.onclose = function() {
    statusEl.textContent = 'Disconnected.';
  };

  ws.onerror = function() {
    statusEl.textContent = 'Error with WebSocket.';
  };
})();
</script>
</body>
</html>
`

func arenaIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write([]byte(arenaHTML))
	}
}

// redirectNewGame handles GET /path by generating a new random channel ID
// (with server-side collision detection) and redirecting to /path/:channelid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		channelID := gm.newChannelID()
		logf(cfg, "GAMES: Created channel %s/%s", path, channelID)
		http.Redirect(w, r, cfg.prefix+path+"/"+channelID, http.StatusTemporaryRedirect)
	}
}

// registerArenaGame sets up routes so that:
//   - $path                  → redirects to new random channel (8-char ID)
//   - $path/:channelid       → HTML client
//   - $path/:channelid/ws    → WebSocket for that channel
//   - $path/:channelid/qr    → PNG QR code for that channel URL
func registerArenaGame(cfg *Config, path string, mux *httprouter.Router) {
	gm := newGameManager(cfg.sessionTimeout)

	// Root path → redirect to new random channel
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	// Per-channel client view
	mux.GET(cfg.prefix+path+"/:channelid", arenaIndexHandler(cfg))

	// Per-channel websocket
	mux.GET(cfg.prefix+path+"/:channelid/ws", serveWSForManager(cfg, gm))

	// Per-channel QR code
	mux.GET(cfg.prefix+path+"/:channelid/qr", qrHandler)
}
