package hunger

import "unicode/utf8"

const (
	// MinTributes is the smallest roster a game can start with.
	MinTributes = 2
	// MaxTributes is the hard capacity of a roster.
	MaxTributes = 24

	maxNameLength = 32
)

// Roster is the ordered collection of tributes in one session. Insertion
// order is preserved so district pairing at start time follows enrollment
// order.
type Roster struct {
	tributes []*Tribute
}

func (r *Roster) Len() int {
	return len(r.tributes)
}

// Tributes returns the underlying slice in enrollment order. Callers must
// not reorder it.
func (r *Roster) Tributes() []*Tribute {
	return r.tributes
}

// Alive returns the currently living tributes in enrollment order.
func (r *Roster) Alive() []*Tribute {
	alive := make([]*Tribute, 0, len(r.tributes))
	for _, t := range r.tributes {
		if t.Alive {
			alive = append(alive, t)
		}
	}
	return alive
}

// contains reports whether an equal tribute (by the district/gender/name
// tuple) is already enrolled. While the roster is being built every
// district is still zero, so this reduces to a (gender, name) check.
func (r *Roster) contains(candidate *Tribute) bool {
	for _, t := range r.tributes {
		if t.Equal(candidate) {
			return true
		}
	}
	return false
}

// containsName reports whether any tribute uses the given name,
// case-sensitively, regardless of gender.
func (r *Roster) containsName(name string) bool {
	for _, t := range r.tributes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// add validates and appends a new tribute. Validation precedes mutation;
// on error the roster is unchanged.
func (r *Roster) add(name string, gender Gender) (*Tribute, *Error) {
	// The cap counts characters, not bytes; names are display text and
	// may be non-ASCII.
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrCharLimit
	}
	t := newTribute(name, gender)
	if r.contains(t) {
		return nil, ErrPlayerExists
	}
	if len(r.tributes) >= MaxTributes {
		return nil, ErrGameFull
	}
	r.tributes = append(r.tributes, t)
	return t, nil
}

// remove deletes the tribute with the given name, preserving the order of
// the rest.
func (r *Roster) remove(name string) *Error {
	dst := r.tributes[:0]
	found := false
	for _, t := range r.tributes {
		if t.Name == name {
			found = true
			continue
		}
		dst = append(dst, t)
	}
	if !found {
		return ErrPlayerDoesNotExist
	}
	r.tributes = dst
	return nil
}

// assignDistricts pairs consecutive tributes in enrollment order:
// entries 1 and 2 become district 1, entries 3 and 4 district 2, and so
// on. An odd leftover joins the last district alone.
func (r *Roster) assignDistricts() {
	for i, t := range r.tributes {
		t.District = i/2 + 1
	}
}
