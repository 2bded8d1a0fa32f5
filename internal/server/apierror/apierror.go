// Package apierror maps service errors to the stable messages and status
// classes exposed by the HTTP and gRPC transports. Unexpected errors collapse
// into one generic message so no internal detail reaches clients.
package apierror

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Client-facing messages.
const (
	MsgLoggedIn         = "Successfully logged in."
	MsgLoggedOut        = "Successfully logged out."
	MsgTokenIssued      = "New token issued."
	MsgRegistered       = "User created."
	MsgBadCredentials   = "Bad credentials"
	MsgAlreadyLoggedIn  = "Already logged in."
	MsgAccessDenied     = "Access Denied"
	MsgTokenNotFound    = "No RefreshToken found with the presented value."
	MsgInvalidRefresh   = "RefreshToken is not valid."
	MsgMalformedRequest = "Malformed request body."
	MsgUsernameTaken    = "Username is already taken."
	MsgTokensReset      = "All refresh tokens removed."
	MsgUnexpected       = "An unexpected error occurred."
)

type Class int

const (
	Internal Class = iota
	Unauthorized
	Conflict
	BadRequest
)

func (c Class) String() string {
	switch c {
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case BadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Problem is what a transport reports for a failed call.
type Problem struct {
	Class   Class
	Message string
}

var table = []struct {
	err     error
	problem Problem
}{
	{common.ErrBadCredentials, Problem{Unauthorized, MsgBadCredentials}},
	{common.ErrAccessDenied, Problem{Unauthorized, MsgAccessDenied}},
	{common.ErrAlreadyAuthenticated, Problem{Conflict, MsgAlreadyLoggedIn}},
	{common.ErrorAlreadyExists, Problem{Conflict, MsgUsernameTaken}},
	{common.ErrTokenNotFound, Problem{BadRequest, MsgTokenNotFound}},
	{common.ErrInvalidRefreshToken, Problem{BadRequest, MsgInvalidRefresh}},
}

// FromError classifies err. Anything not recognised is Internal.
func FromError(err error) Problem {
	for _, e := range table {
		if errors.Is(err, e.err) {
			return e.problem
		}
	}
	return Problem{Internal, MsgUnexpected}
}
