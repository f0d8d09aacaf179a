package conversation

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by UpdateContext when the session id is
// not in the in-memory working set. Callers must call GetOrCreateSession
// first; updates never fall back to the durable store on their own.
var ErrSessionNotFound = errors.New("session not found")

// PersistError reports a failed durable write. The in-memory context
// remains valid and authoritative; the host decides whether to retry or
// queue the write.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
