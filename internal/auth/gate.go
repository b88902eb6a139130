package auth

import "errors"

var (
	// ErrLoading is returned while the stored session is still being verified.
	ErrLoading = errors.New("session is loading")
	// ErrNotAuthenticated is returned when a protected operation runs without a session.
	ErrNotAuthenticated = errors.New("please log in to continue")
)

// Require gates protected operations on the session state.
func Require(s *Session) error {
	switch s.Status() {
	case StatusLoading:
		return ErrLoading
	case StatusAuthenticated:
		return nil
	default:
		return ErrNotAuthenticated
	}
}
