package battle

import "errors"

// Battle errors. All of them leave the store unchanged.
var (
	ErrAlreadyInBattle = errors.New("participant is already in a battle")
	ErrNotInBattle     = errors.New("participant is not in a battle")
	ErrWrongPhase      = errors.New("operation not allowed in the current battle phase")
	ErrInvalidIndex    = errors.New("invalid collection index")
	ErrTimeout         = errors.New("challenge response window elapsed")
	ErrSelfChallenge   = errors.New("cannot challenge yourself")
	ErrNoChallenge     = errors.New("no pending challenge")
	ErrNotChallenged   = errors.New("only the challenged player can respond")
	ErrClosed          = errors.New("battle manager is shut down")
)
