package hunger

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// DefaultTitle is used when a game is created without one.
const DefaultTitle = "The Hunger Games"

// State is the lifecycle position of a session.
type State int

const (
	Pending State = iota
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Severity is a display hint for the calling layer, roughly an embed
// color.
type Severity int

const (
	SeverityInfo   Severity = iota // status, intro, bloodless rounds
	SeverityDanger                 // rounds with deaths
	SeverityFinal                  // winner or no-survivors announcement
)

// Payload is the display shape every status/start/step call produces.
// The calling layer renders it directly; nothing in here is structured
// for machines.
type Payload struct {
	Title    string
	Body     string
	Footer   string
	Severity Severity
}

// Session is one pending or running game, bound to a session key.
type Session struct {
	Key       string
	OwnerID   string
	OwnerName string
	Title     string
	State     State
	Round     int
	Roster    Roster

	rng *rand.Rand
}

// start validates preconditions, assigns districts, and activates the
// session.
func (s *Session) start(callerID string) (Payload, *Error) {
	if callerID != s.OwnerID {
		return Payload{}, ErrNotOwner
	}
	if s.State != Pending {
		return Payload{}, ErrGameStarted
	}
	if s.Roster.Len() < MinTributes {
		return Payload{}, ErrNotEnoughPlayers
	}

	s.Roster.assignDistricts()
	s.State = Active
	s.Round = 0

	var body strings.Builder
	body.WriteString("The tributes take their places. Let the games begin!\n")
	body.WriteString(s.districtListing())

	return Payload{
		Title:    s.Title,
		Body:     body.String(),
		Footer:   fmt.Sprintf("%d tributes enter the arena. The host may step the game forward at any time.", s.Roster.Len()),
		Severity: SeverityInfo,
	}, nil
}

// status is a read-only snapshot, independent of caller identity.
func (s *Session) status() Payload {
	var body strings.Builder
	var footer string

	switch s.State {
	case Pending:
		for i, t := range s.Roster.Tributes() {
			fmt.Fprintf(&body, "%d. %s\n", i+1, t.Name)
		}
		if s.Roster.Len() == 0 {
			body.WriteString("No tributes have entered yet.\n")
		}
		footer = fmt.Sprintf("Waiting for players | %d of %d slots filled", s.Roster.Len(), MaxTributes)
	default:
		body.WriteString(s.districtListing())
		footer = fmt.Sprintf("Round %d | %d of %d tributes alive | %s", s.Round, len(s.Roster.Alive()), s.Roster.Len(), s.State)
	}

	return Payload{
		Title:    s.Title,
		Body:     body.String(),
		Footer:   footer,
		Severity: SeverityInfo,
	}
}

// districtListing renders the roster grouped by district with alive/dead
// markers and kill counts.
func (s *Session) districtListing() string {
	var b strings.Builder

	district := 0
	for _, t := range s.Roster.Tributes() {
		if t.District != district {
			district = t.District
			fmt.Fprintf(&b, "District %d\n", district)
		}
		marker := "•"
		if !t.Alive {
			marker = "✝"
		}
		fmt.Fprintf(&b, "%s %s", marker, t.Name)
		if t.Kills == 1 {
			b.WriteString(" (1 kill)")
		} else if t.Kills > 1 {
			fmt.Fprintf(&b, " (%d kills)", t.Kills)
		}
		if !t.Alive {
			fmt.Fprintf(&b, " — %s", t.CauseOfDeath)
		}
		b.WriteString("\n")
	}

	return b.String()
}
