package hunger

import "testing"

func TestPronounResolution(t *testing.T) {
	cases := []struct {
		gender     Gender
		subject    string
		object     string
		possessive string
		reflexive  string
	}{
		{Male, "he", "him", "his", "himself"},
		{Female, "she", "her", "her", "herself"},
		{Other, "they", "them", "their", "themself"},
	}

	for _, c := range cases {
		p := c.gender.Pronouns()
		if p.Subject != c.subject {
			t.Errorf("subject for %v: got %q, want %q", c.gender, p.Subject, c.subject)
		}
		if p.Object != c.object {
			t.Errorf("object for %v: got %q, want %q", c.gender, p.Object, c.object)
		}
		if p.Possessive != c.possessive {
			t.Errorf("possessive for %v: got %q, want %q", c.gender, p.Possessive, c.possessive)
		}
		if p.Reflexive != c.reflexive {
			t.Errorf("reflexive for %v: got %q, want %q", c.gender, p.Reflexive, c.reflexive)
		}
	}

	if got := Cap("they"); got != "They" {
		t.Errorf("Cap: got %q, want %q", got, "They")
	}
	if got := Cap(""); got != "" {
		t.Errorf("Cap of empty string: got %q", got)
	}
}

func TestTributeEquality(t *testing.T) {
	a := newTribute("Bob", Male)
	b := newTribute("Bob", Male)
	c := newTribute("Bob", Female)
	d := newTribute("bob", Male)

	if !a.Equal(b) {
		t.Error("identical tributes should compare equal")
	}
	if a.Equal(c) {
		t.Error("tributes differing in gender should not compare equal")
	}
	if a.Equal(d) {
		t.Error("name comparison should be case-sensitive")
	}

	b.District = 2
	if a.Equal(b) {
		t.Error("tributes differing in district should not compare equal")
	}
}

func TestTributeOrdering(t *testing.T) {
	a := &Tribute{Name: "Ann", District: 1, Gender: Male}
	b := &Tribute{Name: "Ann", District: 2, Gender: Male}
	c := &Tribute{Name: "Bea", District: 1, Gender: Male}

	if !a.Less(b) {
		t.Error("lower district should order first")
	}
	if !a.Less(c) {
		t.Error("same district should fall through to name ordering")
	}
	if c.Less(a) {
		t.Error("ordering should not be symmetric")
	}
}

func TestDieSetsCauseExactlyOnce(t *testing.T) {
	tr := newTribute("Rue", Female)

	tr.die("a fatal fall")
	if tr.Alive {
		t.Error("tribute should be dead after die")
	}
	if tr.CauseOfDeath != "a fatal fall" {
		t.Errorf("cause of death: got %q", tr.CauseOfDeath)
	}

	tr.die("something else")
	if tr.CauseOfDeath != "a fatal fall" {
		t.Errorf("cause of death changed on second die: got %q", tr.CauseOfDeath)
	}
}
