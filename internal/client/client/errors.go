package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrRejected     = errors.New("request rejected")
	ErrNotLoggedIn  = errors.New("not logged in")
)
