package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var testClaims = SessionClaims{
	UserID:      "6f1c1f5e-1d1a-4b7e-8a3e-0c9e0d6b5a11",
	Email:       "user@example.com",
	UUID:        "6f1c1f5e-1d1a-4b7e-8a3e-0c9e0d6b5a11",
	LastUpdated: "2024-05-01T12:00:00.000Z",
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestMintVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec([]byte("super-secret"), time.Hour).WithClock(fixedClock(now))

	tok, err := c.Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	got, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.Session() != testClaims {
		t.Fatalf("claims mismatch: got %+v want %+v", got.Session(), testClaims)
	}
	if !got.IssuedAt.Time.Equal(now) {
		t.Fatalf("iat mismatch: got %v want %v", got.IssuedAt.Time, now)
	}
	if !got.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("exp mismatch: got %v want %v", got.ExpiresAt.Time, now.Add(time.Hour))
	}
}

func TestVerify_ValidUntilExpiry(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := start
	c := NewCodec([]byte("secret"), 0).WithClock(func() time.Time { return now })
	if c.TTL() != DefaultTTL {
		t.Fatalf("ttl: got %v want %v", c.TTL(), DefaultTTL)
	}

	tok, err := c.Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	for _, d := range []time.Duration{0, time.Minute, 23 * time.Hour, DefaultTTL - time.Second} {
		now = start.Add(d)
		if _, err := c.Verify(tok); err != nil {
			t.Fatalf("Verify at +%v: %v", d, err)
		}
	}

	now = start.Add(DefaultTTL + time.Second)
	_, err = c.Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) || !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected invalid+expired, got %v", err)
	}
}

func TestVerify_FlippedSignature(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), time.Hour)
	tok, err := c.Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	parts := strings.Split(tok, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	for i := range sig {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		flipped[i] ^= 0x01
		bad := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)

		if _, err := c.Verify(bad); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("byte %d: expected ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), time.Hour)
	tok, err := c.Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	parts := strings.Split(tok, ".")
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	forged := strings.Replace(string(payload), "user@example.com", "evil@example.com", 1)
	bad := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forged)) + "." + parts[2]

	if _, err := c.Verify(bad); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right-secret"), time.Hour).Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	if _, err := NewCodec([]byte("wrong-secret"), time.Hour).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	c := NewCodec(secret, time.Hour)
	claims := Claims{
		UserID: testClaims.UserID, Email: testClaims.Email, UUID: testClaims.UUID, LastUpdated: testClaims.LastUpdated,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign HS384: %v", err)
	}

	for name, tok := range map[string]string{"none": none, "HS384": hs384} {
		if _, err := c.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c", "...."} {
		if _, err := c.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u", Email: "e@x.io"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewCodec(secret, time.Hour).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMint_RequiresClaims(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), time.Hour)
	cases := []SessionClaims{
		{Email: "e@x.io", LastUpdated: "t"},
		{UserID: "u", LastUpdated: "t"},
		{UserID: "u", Email: "e@x.io"},
	}
	for _, sc := range cases {
		if _, err := c.Mint(sc); !errors.Is(err, common.ErrInvalidClaims) {
			t.Fatalf("%+v: expected ErrInvalidClaims, got %v", sc, err)
		}
	}
}

func TestMint_DefaultsUUIDToUserID(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), time.Hour)
	tok, err := c.Mint(SessionClaims{UserID: "u-1", Email: "e@x.io", LastUpdated: "t"})
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	got, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.UUID != "u-1" {
		t.Fatalf("uuid: got %q want %q", got.UUID, "u-1")
	}
}

func TestNewCodec_CopiesSecret(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	c := NewCodec(secret, time.Hour)
	tok, err := c.Mint(testClaims)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	secret[0] = 'X'
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("Verify after caller mutation: %v", err)
	}
}
