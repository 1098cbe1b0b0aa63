// Package hunger implements the game core: one elimination simulation
// per session key, advanced round by round by its owner until a single
// survivor (or none) remains.
package hunger

// Code identifies one of the closed set of ways a command can fail.
// Every operation in this package either returns a success payload or
// exactly one *Error carrying one of these codes.
type Code int

const (
	NoGame Code = iota
	GameExists
	GameStarted
	GameFull
	PlayerExists
	CharLimit
	NotOwner
	InvalidGroup
	NotEnoughPlayers
	GameNotStarted
	PlayerDoesNotExist
)

// Error is the only error type that crosses this package's API boundary.
// All instances are recoverable by the caller; none are fatal.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNoGame             = &Error{NoGame, "There is no game currently running in this channel."}
	ErrGameExists         = &Error{GameExists, "A game has already been started in this channel."}
	ErrGameStarted        = &Error{GameStarted, "This game is already running."}
	ErrGameFull           = &Error{GameFull, "This game is already at maximum capacity."}
	ErrPlayerExists       = &Error{PlayerExists, "That person is already in this game."}
	ErrCharLimit          = &Error{CharLimit, "That name is too long (max 32 chars)."}
	ErrNotOwner           = &Error{NotOwner, "You are not the owner of this game."}
	ErrInvalidGroup       = &Error{InvalidGroup, "That is not a valid group."}
	ErrNotEnoughPlayers   = &Error{NotEnoughPlayers, "There are not enough players to start a game. There must be at least 2."}
	ErrGameNotStarted     = &Error{GameNotStarted, "This game hasn't been started yet."}
	ErrPlayerDoesNotExist = &Error{PlayerDoesNotExist, "There is no player with that name in this game."}
)
