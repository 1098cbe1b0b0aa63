package hunger

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"unicode/utf8"
)

// Registry is the process-wide mapping from session key to at most one
// live session. The map itself is shared mutable state and is guarded by
// a mutex; each individual session is expected to be driven by a single
// sequential command stream (one per hosting channel), so no per-session
// locking happens here.
type Registry struct {
	mu    sync.Mutex
	games map[string]*Session

	// Seed supplies seeds for per-session random sources. Defaults to
	// crypto/rand; replaceable for deterministic tests.
	Seed func() uint64
}

func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]*Session),
		Seed:  cryptoSeed,
	}
}

func cryptoSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// NewGame creates a pending session for the given key. Fails with
// GAME_EXISTS while any session, pending or active, occupies the key.
func (r *Registry) NewGame(key, ownerID, ownerName, title string) (*Session, error) {
	if title == "" {
		title = DefaultTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[key]; ok {
		return nil, ErrGameExists
	}

	s := &Session{
		Key:       key,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Title:     title,
		State:     Pending,
		rng:       rand.New(rand.NewPCG(r.Seed(), r.Seed())),
	}
	r.games[key] = s

	return s, nil
}

// get looks up the session for a key.
func (r *Registry) get(key string) (*Session, *Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.games[key]
	if !ok {
		return nil, ErrNoGame
	}
	return s, nil
}

// Get exposes the precondition lookup used by every other operation.
func (r *Registry) Get(key string) (*Session, error) {
	s, herr := r.get(key)
	if herr != nil {
		return nil, herr
	}
	return s, nil
}

// Remove drops the session for a key. Idempotent no-op when absent.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.games, key)
}

// AddTribute enrolls a tribute in a pending session and returns a
// confirmation line. Volunteers entered themselves; the rest were added
// by the host.
func (r *Registry) AddTribute(key, name string, gender Gender, volunteer bool) (string, error) {
	s, herr := r.get(key)
	if herr != nil {
		return "", herr
	}
	if s.State != Pending {
		return "", ErrGameStarted
	}

	t, herr := s.Roster.add(name, gender)
	if herr != nil {
		return "", herr
	}

	if volunteer {
		return fmt.Sprintf("%s volunteers as tribute!", t.Name), nil
	}
	return fmt.Sprintf("%s has been entered into the game!", t.Name), nil
}

// RemoveTribute withdraws a tribute from a pending session.
func (r *Registry) RemoveTribute(key, name string) (string, error) {
	s, herr := r.get(key)
	if herr != nil {
		return "", herr
	}
	if s.State != Pending {
		return "", ErrGameStarted
	}

	if herr := s.Roster.remove(name); herr != nil {
		return "", herr
	}
	return fmt.Sprintf("%s has been removed from the game.", name), nil
}

// PadTributes fills the remaining roster slots by drawing names from the
// pool without replacement, skipping names already present. The caller
// is responsible for supplying a large enough pool.
func (r *Registry) PadTributes(key string, pool []string) (string, error) {
	s, herr := r.get(key)
	if herr != nil {
		return "", herr
	}
	if s.State != Pending {
		return "", ErrGameStarted
	}
	if s.Roster.Len() >= MaxTributes {
		return "", ErrGameFull
	}

	remaining := append([]string(nil), pool...)
	added := 0
	for s.Roster.Len() < MaxTributes && len(remaining) > 0 {
		i := s.rng.IntN(len(remaining))
		name := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)

		if utf8.RuneCountInString(name) > maxNameLength || s.Roster.containsName(name) {
			continue
		}
		if _, herr := s.Roster.add(name, Other); herr != nil {
			continue
		}
		added++
	}

	return fmt.Sprintf("Added %d tributes. The roster now holds %d of %d.", added, s.Roster.Len(), MaxTributes), nil
}

// Start activates a pending session and returns the introduction payload.
func (r *Registry) Start(key, callerID string) (Payload, error) {
	s, herr := r.get(key)
	if herr != nil {
		return Payload{}, herr
	}

	p, herr := s.start(callerID)
	if herr != nil {
		return Payload{}, herr
	}
	return p, nil
}

// Cancel ends a session in any non-terminal state and frees its key.
// Returns the cancelled session so the caller can name it.
func (r *Registry) Cancel(key, callerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.games[key]
	if !ok {
		return nil, ErrNoGame
	}
	if callerID != s.OwnerID {
		return nil, ErrNotOwner
	}

	s.State = Ended
	delete(r.games, key)

	return s, nil
}

// Status returns a read-only snapshot of the session.
func (r *Registry) Status(key string) (Payload, error) {
	s, herr := r.get(key)
	if herr != nil {
		return Payload{}, herr
	}
	return s.status(), nil
}

// Step advances an active session by exactly one round. When the round
// leaves at most one tribute alive the session ends and its key is
// freed.
func (r *Registry) Step(key, callerID string) (Payload, error) {
	s, herr := r.get(key)
	if herr != nil {
		return Payload{}, herr
	}
	if callerID != s.OwnerID {
		return Payload{}, ErrNotOwner
	}
	if s.State != Active {
		return Payload{}, ErrGameNotStarted
	}

	p := s.step()
	if s.State == Ended {
		r.Remove(key)
	}

	return p, nil
}
