package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndVerify_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewJWTCodec([]byte("super-secret"), WithClock(func() time.Time { return now }))

	tok, err := c.Mint("admin", time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("expected three dot-separated segments, got %d", len(parts))
	}

	claims, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if !claims.IssuedAt.Equal(now) || !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps: iat=%v exp=%v", claims.IssuedAt, claims.ExpiresAt)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestMint_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewJWTCodec([]byte("k"), WithClock(func() time.Time { return now }))

	a, err := c.Mint("admin", time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	b, err := c.Mint("admin", time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if a == b {
		t.Fatal("tokens minted with identical inputs must still differ")
	}
}

func TestExtractSubject(t *testing.T) {
	t.Parallel()

	c := NewJWTCodec([]byte("k"))
	tok, err := c.Mint("alice", time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	sub, err := c.ExtractSubject(tok)
	if err != nil || sub != "alice" {
		t.Fatalf("ExtractSubject: got (%q, %v)", sub, err)
	}

	if _, err := c.ExtractSubject("garbage"); !errors.Is(err, common.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	c := NewJWTCodec([]byte("secret"))

	tok, err := c.Mint("u1", -1*time.Second)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	_, err = c.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expired token error must also match ErrInvalidToken, got %v", err)
	}
}

func TestVerify_ExpiresWithClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewJWTCodec([]byte("secret"), WithClock(func() time.Time { return now }))

	tok, err := c.Mint("u1", time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Verify(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired after clock moved, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTCodec([]byte("right-secret")).Mint("u2", time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	_, err = NewJWTCodec([]byte("wrong-secret")).Verify(tok)
	if !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	c := NewJWTCodec([]byte("k"))
	for _, in := range []string{"", "not.a.jwt", "abc", "a.b"} {
		if _, err := c.Verify(in); !errors.Is(err, common.ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", in, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := NewJWTCodec(key).Verify(tok); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	key := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).SignedString(key)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := NewJWTCodec(key).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected token without exp to be rejected, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	c := NewJWTCodec([]byte("k"))
	tok, err := c.Mint("user", time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	parts := strings.Split(tok, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","exp":4102444800}`))

	if _, err := c.Verify(strings.Join(parts, ".")); !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}
