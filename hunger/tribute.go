package hunger

import "strings"

// Gender drives pronoun resolution for narrative text. It has no effect
// on round outcomes.
type Gender int

const (
	Other Gender = iota
	Male
	Female
)

// Pronouns holds the lowercase forms for one gender. Capitalized forms
// are derived on demand.
type Pronouns struct {
	Subject    string // he / she / they
	Object     string // him / her / them
	Possessive string // his / her / their
	Reflexive  string // himself / herself / themself
}

var pronounTable = [...]Pronouns{
	Other:  {"they", "them", "their", "themself"},
	Male:   {"he", "him", "his", "himself"},
	Female: {"she", "her", "her", "herself"},
}

// Pronouns returns the pronoun set for g. Unknown values fall back to
// the neutral set.
func (g Gender) Pronouns() Pronouns {
	if g < 0 || int(g) >= len(pronounTable) {
		return pronounTable[Other]
	}
	return pronounTable[g]
}

// Cap uppercases the first letter of a pronoun for sentence-initial use.
func Cap(pronoun string) string {
	if pronoun == "" {
		return ""
	}
	return strings.ToUpper(pronoun[:1]) + pronoun[1:]
}

// Tribute is one participant in a game.
type Tribute struct {
	Name         string
	District     int
	Gender       Gender
	Alive        bool
	Kills        int
	CauseOfDeath string
}

func newTribute(name string, gender Gender) *Tribute {
	return &Tribute{
		Name:   name,
		Gender: gender,
		Alive:  true,
	}
}

// Equal reports whether two tributes match on the (district, gender, name)
// tuple. Combat state is excluded on purpose.
func (t *Tribute) Equal(other *Tribute) bool {
	return t.District == other.District &&
		t.Gender == other.Gender &&
		t.Name == other.Name
}

// Less orders tributes lexicographically on (district, subject pronoun,
// name). Used for deterministic display only, never for gameplay.
func (t *Tribute) Less(other *Tribute) bool {
	if t.District != other.District {
		return t.District < other.District
	}
	tp, op := t.Gender.Pronouns().Subject, other.Gender.Pronouns().Subject
	if tp != op {
		return tp < op
	}
	return t.Name < other.Name
}

// die marks the tribute dead with the given cause. The cause is set
// exactly once; later calls are ignored.
func (t *Tribute) die(cause string) {
	if !t.Alive {
		return
	}
	t.Alive = false
	t.CauseOfDeath = cause
}
