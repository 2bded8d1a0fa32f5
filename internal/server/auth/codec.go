// Package auth mints and verifies the signed bearer tokens handed out by
// authkeeper. Access and refresh tokens share one format; they only differ in
// lifetime and in whether the server keeps a record of them.
package auth

import "time"

// Claims are the decoded fields of a verified token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec creates and verifies signed, time-bound tokens.
//
// Verify fails with common.ErrTokenMalformed, common.ErrTokenSignatureInvalid
// or common.ErrTokenExpired.
type Codec interface {
	Mint(subject string, ttl time.Duration) (string, error)
	Verify(token string) (*Claims, error)
	ExtractSubject(token string) (string, error)
}
