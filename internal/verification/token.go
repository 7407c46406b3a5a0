// Package verification issues and checks the signed links that activate
// newly registered accounts.
package verification

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid verification token")
	ErrTokenExpired = errors.New("verification token expired")
	ErrInvalidUID   = errors.New("invalid account reference")
)

var (
	salt       = []byte("exam-service.verification.email")
	tsEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// TokenGenerator signs tokens over the account id and a fingerprint of mutable
// account state (password hash, last login, active flag). Any change to that
// state, activation included, invalidates outstanding tokens.
type TokenGenerator struct {
	key     [32]byte
	timeout time.Duration
	now     func() time.Time
}

func NewTokenGenerator(secret string, timeout time.Duration) *TokenGenerator {
	return &TokenGenerator{
		key:     sha256.Sum256(append(append([]byte{}, salt...), secret...)),
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (g *TokenGenerator) WithClock(now func() time.Time) *TokenGenerator {
	g.now = now
	return g
}

// Make returns a fresh token for the account.
func (g *TokenGenerator) Make(account *models.Account) string {
	return g.makeWithTimestamp(account, g.now().Unix())
}

// Check verifies that token was issued for the account in its current state
// and has not expired.
func (g *TokenGenerator) Check(account *models.Account, token string) error {
	if account == nil || token == "" {
		return ErrInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return ErrInvalidToken
	}

	raw, err := tsEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return ErrInvalidToken
	}

	expected := g.makeWithTimestamp(account, ts)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) != 1 {
		return ErrInvalidToken
	}

	if g.now().Sub(time.Unix(ts, 0)) > g.timeout {
		return ErrTokenExpired
	}
	return nil
}

func (g *TokenGenerator) makeWithTimestamp(account *models.Account, ts int64) string {
	tsPart := tsEncoding.EncodeToString([]byte(strconv.FormatInt(ts, 10)))
	return fmt.Sprintf("%s-%s", tsPart, g.sign(fingerprint(account, ts)))
}

func (g *TokenGenerator) sign(val []byte) string {
	h := hmac.New(sha256.New, g.key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func fingerprint(account *models.Account, ts int64) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.FormatUint(uint64(account.ID), 10))
	val.WriteString(account.PasswordHash)
	if account.LastLoginAt != nil {
		// whole seconds survive a database round trip
		val.WriteString(strconv.FormatInt(account.LastLoginAt.Unix(), 10))
	}
	val.WriteString(strconv.FormatBool(account.IsActive))
	val.WriteString(strconv.FormatInt(ts, 10))
	return val.Bytes()
}

// EncodeUID renders an account id for use in a URL path segment.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrInvalidUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return uint(id), nil
}

// Link builds the absolute verification URL.
func Link(baseURL string, account *models.Account, token string) string {
	return fmt.Sprintf("%s/verify-email/%s/%s/", strings.TrimRight(baseURL, "/"), EncodeUID(account.ID), token)
}
