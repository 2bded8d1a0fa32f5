// Package authtest provides an in-memory auth.Codec for tests that need to
// control token validity without real signatures.
package authtest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
)

const prefix = "fake-"

// Codec remembers every token it minted. Tokens it did not mint are rejected:
// strings carrying its prefix as if signed by another key, anything else as
// malformed.
type Codec struct {
	mu     sync.Mutex
	now    func() time.Time
	seq    int
	issued map[string]auth.Claims
}

var _ auth.Codec = (*Codec)(nil)

func New() *Codec {
	return &Codec{now: time.Now, issued: map[string]auth.Claims{}}
}

// SetNow pins the codec clock.
func (c *Codec) SetNow(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = func() time.Time { return now }
}

func (c *Codec) Mint(subject string, ttl time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	now := c.now()
	token := fmt.Sprintf("%s%d-%s", prefix, c.seq, subject)
	c.issued[token] = auth.Claims{
		Subject:   subject,
		ID:        fmt.Sprint(c.seq),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	return token, nil
}

func (c *Codec) Verify(token string) (*auth.Claims, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	claims, ok := c.issued[token]
	if !ok {
		if strings.HasPrefix(token, prefix) {
			return nil, common.ErrTokenSignatureInvalid
		}
		return nil, common.ErrTokenMalformed
	}
	if !c.now().Before(claims.ExpiresAt) {
		return nil, common.ErrTokenExpired
	}
	out := claims
	return &out, nil
}

func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Forge returns a token for subject that looks issued but fails signature
// verification.
func Forge(subject string) string {
	return prefix + "forged-" + subject
}
