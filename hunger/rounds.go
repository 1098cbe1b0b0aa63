package hunger

import (
	"fmt"
	"strings"
)

// The round engine partitions the living tributes into encounter groups,
// resolves each group to survival, a single death, or a mutual
// elimination, then assembles one narrative line per group. The exact
// event catalog is flavor; the load-bearing guarantees are that every
// living tribute appears in exactly one group per round, that the alive
// count never increases, and that state is applied group by group so a
// dead tribute can never be attributed a later kill.

type soloEvent struct {
	cause string // empty for survival events
	line  func(t *Tribute) string
}

var soloSurvivals = []soloEvent{
	{"", func(t *Tribute) string {
		return fmt.Sprintf("%s camouflages %s in mud and waits out the day.", t.Name, t.Gender.Pronouns().Reflexive)
	}},
	{"", func(t *Tribute) string {
		return fmt.Sprintf("%s forages for berries near the riverbank.", t.Name)
	}},
	{"", func(t *Tribute) string {
		return fmt.Sprintf("%s climbs a tall pine and scouts the arena from above.", t.Name)
	}},
	{"", func(t *Tribute) string {
		return fmt.Sprintf("%s patches %s wounds with makeshift bandages.", t.Name, t.Gender.Pronouns().Possessive)
	}},
	{"", func(t *Tribute) string {
		return fmt.Sprintf("%s finds a dry cave and sleeps soundly for once.", t.Name)
	}},
}

var soloDeaths = []soloEvent{
	{"poisoned water", func(t *Tribute) string {
		return fmt.Sprintf("%s drinks from a stagnant pond and never wakes up.", t.Name)
	}},
	{"nightlock berries", func(t *Tribute) string {
		return fmt.Sprintf("%s mistakes nightlock for blueberries. %s dies instantly.", t.Name, Cap(t.Gender.Pronouns().Subject))
	}},
	{"a fatal fall", func(t *Tribute) string {
		return fmt.Sprintf("%s loses %s footing on a cliff edge and falls.", t.Name, t.Gender.Pronouns().Possessive)
	}},
	{"tracker jacker venom", func(t *Tribute) string {
		return fmt.Sprintf("%s is stung beyond saving by a nest of tracker jackers.", t.Name)
	}},
	{"the force field", func(t *Tribute) string {
		return fmt.Sprintf("%s strays too close to the arena's edge and is thrown back dead by the force field.", t.Name)
	}},
}

var groupSurvivals = []func(names string) string{
	func(names string) string { return names + " form an uneasy alliance for the night." },
	func(names string) string { return names + " share what little food they have." },
	func(names string) string { return names + " cross paths but retreat without a fight." },
	func(names string) string {
		return names + " huddle around a dying fire, watching each other more than the flames."
	},
	func(names string) string { return names + " spar over a supply crate; no blood is drawn." },
}

type killEvent struct {
	cause func(killer *Tribute) string
	line  func(killer, victim *Tribute) string
}

var killEvents = []killEvent{
	{
		cause: func(k *Tribute) string { return "speared by " + k.Name },
		line: func(k, v *Tribute) string {
			return fmt.Sprintf("%s ambushes %s and finishes %s with a spear.", k.Name, v.Name, v.Gender.Pronouns().Object)
		},
	},
	{
		cause: func(k *Tribute) string { return "strangled by " + k.Name },
		line: func(k, v *Tribute) string {
			return fmt.Sprintf("%s strangles %s while %s sleeps.", k.Name, v.Name, v.Gender.Pronouns().Subject)
		},
	},
	{
		cause: func(k *Tribute) string { return "shot by " + k.Name },
		line: func(k, v *Tribute) string {
			return fmt.Sprintf("%s puts an arrow clean through %s's chest.", k.Name, v.Name)
		},
	},
	{
		cause: func(k *Tribute) string { return "trapped and killed by " + k.Name },
		line: func(k, v *Tribute) string {
			return fmt.Sprintf("%s catches %s in a snare and leaves nothing to chance.", k.Name, v.Name)
		},
	},
	{
		cause: func(k *Tribute) string { return "drowned by " + k.Name },
		line: func(k, v *Tribute) string {
			return fmt.Sprintf("%s overpowers %s and holds %s under the river.", k.Name, v.Name, v.Gender.Pronouns().Object)
		},
	},
}

type mutualEvent struct {
	cause func(other *Tribute) string
	line  func(a, b *Tribute) string
}

var mutualEvents = []mutualEvent{
	{
		cause: func(o *Tribute) string { return "killed in a duel with " + o.Name },
		line: func(a, b *Tribute) string {
			return fmt.Sprintf("%s and %s duel over the last supply crate; neither walks away.", a.Name, b.Name)
		},
	},
	{
		cause: func(o *Tribute) string { return "fell grappling with " + o.Name },
		line: func(a, b *Tribute) string {
			return fmt.Sprintf("%s and %s tumble from a ridge, each refusing to let go of the other.", a.Name, b.Name)
		},
	},
	{
		cause: func(o *Tribute) string { return "a landmine" },
		line: func(a, b *Tribute) string {
			return fmt.Sprintf("A buried mine catches %s and %s as they fight over high ground.", a.Name, b.Name)
		},
	},
	{
		cause: func(o *Tribute) string { return "a poisoned feast" },
		line: func(a, b *Tribute) string {
			return fmt.Sprintf("%s and %s both eat from a feast the Gamemakers laced with poison.", a.Name, b.Name)
		},
	},
}

// eventState tracks the last event drawn per category so the same line
// is never used twice back to back within a round.
type eventState struct {
	soloSurvival int
	soloDeath    int
	group        int
	kill         int
	mutual       int
}

func newEventState() *eventState {
	return &eventState{soloSurvival: -1, soloDeath: -1, group: -1, kill: -1, mutual: -1}
}

// pick draws an index in [0, n) that differs from *last when possible.
func (s *Session) pick(n int, last *int) int {
	i := s.rng.IntN(n)
	if i == *last && n > 1 {
		i = (i + 1 + s.rng.IntN(n-1)) % n
	}
	*last = i
	return i
}

// drawGroupSize favors solitary events, then pairs, then trios, clamped
// to the tributes still waiting for a group this round.
func (s *Session) drawGroupSize(remaining int) int {
	size := 1
	switch roll := s.rng.IntN(100); {
	case roll < 50:
		size = 1
	case roll < 80:
		size = 2
	default:
		size = 3
	}
	if size > remaining {
		size = remaining
	}
	return size
}

// step advances the session by one round. Preconditions have already
// been checked; from here the round always completes and always mutates
// state.
func (s *Session) step() Payload {
	alive := s.Roster.Alive()
	order := s.rng.Perm(len(alive))
	st := newEventState()

	var lines []string
	deaths := 0

	for i := 0; i < len(order); {
		size := s.drawGroupSize(len(order) - i)
		group := make([]*Tribute, size)
		for j := range group {
			group[j] = alive[order[i+j]]
		}
		i += size

		line, fell := s.resolveGroup(group, st)
		lines = append(lines, line)
		deaths += fell
	}

	s.Round++

	remaining := s.Roster.Alive()
	p := Payload{
		Title: fmt.Sprintf("%s — Round %d", s.Title, s.Round),
		Body:  strings.Join(lines, "\n"),
	}

	switch {
	case len(remaining) == 1:
		s.State = Ended
		w := remaining[0]
		p.Footer = fmt.Sprintf("%s of District %d wins %s!", w.Name, w.District, s.Title)
		p.Severity = SeverityFinal
	case len(remaining) == 0:
		s.State = Ended
		p.Footer = "No survivors remain. The arena falls silent."
		p.Severity = SeverityFinal
	case deaths == 0:
		p.Footer = fmt.Sprintf("No cannons fired. %d tributes remain.", len(remaining))
		p.Severity = SeverityInfo
	default:
		p.Footer = fmt.Sprintf("%d fell this round. %d tributes remain.", deaths, len(remaining))
		p.Severity = SeverityDanger
	}

	return p
}

// resolveGroup applies one encounter and returns its narrative line and
// death count. Solitary groups may only survive or die to the arena;
// larger groups may also produce a killer or a mutual elimination.
func (s *Session) resolveGroup(group []*Tribute, st *eventState) (string, int) {
	if len(group) == 1 {
		t := group[0]
		if s.rng.IntN(100) < 70 {
			ev := soloSurvivals[s.pick(len(soloSurvivals), &st.soloSurvival)]
			return ev.line(t), 0
		}
		ev := soloDeaths[s.pick(len(soloDeaths), &st.soloDeath)]
		t.die(ev.cause)
		return ev.line(t), 1
	}

	switch roll := s.rng.IntN(100); {
	case roll < 40:
		ev := groupSurvivals[s.pick(len(groupSurvivals), &st.group)]
		return ev(nameList(group)), 0

	case roll < 85:
		victim := group[s.rng.IntN(len(group))]
		// Three in four deaths inside a group are attributed to a
		// member; the rest are the arena's doing.
		if s.rng.IntN(100) < 75 {
			killer := victim
			for killer == victim {
				killer = group[s.rng.IntN(len(group))]
			}
			ev := killEvents[s.pick(len(killEvents), &st.kill)]
			victim.die(ev.cause(killer))
			killer.Kills++
			return ev.line(killer, victim), 1
		}
		ev := soloDeaths[s.pick(len(soloDeaths), &st.soloDeath)]
		victim.die(ev.cause)
		return ev.line(victim), 1

	default:
		a, b := s.pair(group)
		ev := mutualEvents[s.pick(len(mutualEvents), &st.mutual)]
		a.die(ev.cause(b))
		b.die(ev.cause(a))
		return ev.line(a, b), 2
	}
}

// pair selects two distinct members of a group.
func (s *Session) pair(group []*Tribute) (*Tribute, *Tribute) {
	i := s.rng.IntN(len(group))
	j := i
	for j == i {
		j = s.rng.IntN(len(group))
	}
	return group[i], group[j]
}

// nameList joins tribute names as "A and B" or "A, B and C".
func nameList(group []*Tribute) string {
	names := make([]string, len(group))
	for i, t := range group {
		names[i] = t.Name
	}
	if len(names) <= 2 {
		return strings.Join(names, " and ")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
