package hunger

import (
	"fmt"
	"strings"
	"testing"
)

// activeGame returns a registry with a started 24-tribute game under the
// given key, driven by a deterministic seed.
func activeGame(t *testing.T, key string, tributes int) *Registry {
	t.Helper()

	reg := seededRegistry()
	if _, err := reg.NewGame(key, "alice", "Alice", ""); err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	for i := 0; i < tributes; i++ {
		gender := Gender(i % 3)
		if _, err := reg.AddTribute(key, fmt.Sprintf("Tribute %d", i), gender, false); err != nil {
			t.Fatalf("AddTribute %d failed: %v", i, err)
		}
	}
	if _, err := reg.Start(key, "alice"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return reg
}

func TestStepPreconditions(t *testing.T) {
	reg := seededRegistry()
	reg.NewGame("chan1", "alice", "Alice", "")
	reg.AddTribute("chan1", "Bob", Male, false)
	reg.AddTribute("chan1", "Cara", Female, false)

	if _, err := reg.Step("chan1", "alice"); err != ErrGameNotStarted {
		t.Errorf("step before start: got %v, want GAME_NOT_STARTED", err)
	}

	reg.Start("chan1", "alice")

	if _, err := reg.Step("chan1", "mallory"); err != ErrNotOwner {
		t.Errorf("step by non-owner: got %v, want NOT_OWNER", err)
	}
	s, _ := reg.Get("chan1")
	if s.Round != 0 {
		t.Errorf("round changed by rejected step: got %d", s.Round)
	}
}

func TestStepAdvancesRoundMonotonically(t *testing.T) {
	reg := activeGame(t, "chan1", MaxTributes)

	prevAlive := MaxTributes
	for round := 1; round <= 1000; round++ {
		p, err := reg.Step("chan1", "alice")
		if err != nil {
			t.Fatalf("step %d failed: %v", round, err)
		}
		if p.Body == "" {
			t.Errorf("round %d produced an empty narrative", round)
		}

		s, err := reg.Get("chan1")
		if err != nil {
			// Terminal round: the key has been freed.
			return
		}
		if s.Round != round {
			t.Errorf("round counter: got %d, want %d", s.Round, round)
		}
		alive := len(s.Roster.Alive())
		if alive > prevAlive {
			t.Errorf("alive count increased from %d to %d", prevAlive, alive)
		}
		prevAlive = alive
	}

	t.Fatal("game did not terminate within 1000 rounds")
}

func TestDeathInvariants(t *testing.T) {
	reg := activeGame(t, "chan1", MaxTributes)
	s, _ := reg.Get("chan1")

	causes := make(map[string]string)

	for round := 0; round < 1000; round++ {
		if _, err := reg.Step("chan1", "alice"); err != nil {
			t.Fatalf("step failed: %v", err)
		}

		for _, tr := range s.Roster.Tributes() {
			cause, wasDead := causes[tr.Name]
			if wasDead {
				if tr.Alive {
					t.Fatalf("%q came back to life", tr.Name)
				}
				if tr.CauseOfDeath != cause {
					t.Fatalf("%q cause of death changed from %q to %q", tr.Name, cause, tr.CauseOfDeath)
				}
				continue
			}
			if !tr.Alive {
				if tr.CauseOfDeath == "" {
					t.Fatalf("%q died with no cause of death", tr.Name)
				}
				causes[tr.Name] = tr.CauseOfDeath
			}
		}

		if s.State == Ended {
			return
		}
	}

	t.Fatal("game did not terminate within 1000 rounds")
}

func TestKillsAttributedToLivingTributes(t *testing.T) {
	reg := activeGame(t, "chan1", MaxTributes)
	s, _ := reg.Get("chan1")

	for s.State == Active {
		if _, err := reg.Step("chan1", "alice"); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	totalKills := 0
	deaths := 0
	for _, tr := range s.Roster.Tributes() {
		totalKills += tr.Kills
		if !tr.Alive {
			deaths++
		}
	}
	if totalKills > deaths {
		t.Errorf("%d kills recorded but only %d deaths", totalKills, deaths)
	}
}

func TestTerminalStepEndsSession(t *testing.T) {
	reg := activeGame(t, "chan1", MaxTributes)
	s, _ := reg.Get("chan1")

	var last Payload
	for s.State == Active {
		p, err := reg.Step("chan1", "alice")
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		last = p
	}

	alive := s.Roster.Alive()
	if len(alive) > 1 {
		t.Fatalf("session ended with %d tributes alive", len(alive))
	}

	if last.Severity != SeverityFinal {
		t.Errorf("terminal payload severity: got %v, want SeverityFinal", last.Severity)
	}
	if len(alive) == 1 {
		w := alive[0]
		if !strings.Contains(last.Footer, w.Name) {
			t.Errorf("terminal footer should announce %q, got %q", w.Name, last.Footer)
		}
		if !strings.Contains(last.Footer, fmt.Sprintf("District %d", w.District)) {
			t.Errorf("terminal footer should name the winner's district, got %q", last.Footer)
		}
	}

	// The key is freed; further operations see no game.
	if _, err := reg.Status("chan1"); err != ErrNoGame {
		t.Errorf("status after end: got %v, want NO_GAME", err)
	}
	if _, err := reg.Step("chan1", "alice"); err != ErrNoGame {
		t.Errorf("step after end: got %v, want NO_GAME", err)
	}
	if _, err := reg.NewGame("chan1", "bob", "Bob", ""); err != nil {
		t.Errorf("NewGame after end failed: %v", err)
	}
}

func TestTwoTributeGame(t *testing.T) {
	reg := seededRegistry()
	reg.NewGame("chan1", "alice", "Alice", "Arena")
	reg.AddTribute("chan1", "Bob", Male, false)
	reg.AddTribute("chan1", "Cara", Female, false)

	if _, err := reg.Start("chan1", "alice"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	s, _ := reg.Get("chan1")
	for _, tr := range s.Roster.Tributes() {
		if tr.District != 1 {
			t.Fatalf("two-tribute game should pair both in district 1, got %d", tr.District)
		}
	}

	for round := 1; round <= 1000; round++ {
		p, err := reg.Step("chan1", "alice")
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}

		alive := s.Roster.Alive()
		switch len(alive) {
		case 2:
			// Both survived; the game continues.
			if s.State != Active {
				t.Fatal("session ended with two tributes alive")
			}
		case 1:
			if s.State != Ended {
				t.Fatal("one tribute alive but session still active")
			}
			winner := alive[0].Name
			if winner != "Bob" && winner != "Cara" {
				t.Fatalf("unexpected winner %q", winner)
			}
			if !strings.Contains(p.Footer, winner) {
				t.Errorf("footer should announce %q, got %q", winner, p.Footer)
			}
			return
		case 0:
			if s.State != Ended {
				t.Fatal("no tributes alive but session still active")
			}
			if !strings.Contains(p.Footer, "No survivors") {
				t.Errorf("footer should announce no survivors, got %q", p.Footer)
			}
			return
		}
	}

	t.Fatal("game did not terminate within 1000 rounds")
}

func TestRoundPartitionsAliveTributes(t *testing.T) {
	reg := activeGame(t, "chan1", MaxTributes)

	p, err := reg.Step("chan1", "alice")
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}

	// One narrative line per encounter group; with group sizes of 1-3
	// and every alive tribute in exactly one group, the first round of a
	// 24-tribute game yields between 8 and 24 lines.
	lines := strings.Split(strings.TrimSpace(p.Body), "\n")
	if len(lines) < MaxTributes/3 || len(lines) > MaxTributes {
		t.Errorf("round produced %d lines, want between %d and %d", len(lines), MaxTributes/3, MaxTributes)
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Error("round narrative contains a blank line")
		}
	}
}
