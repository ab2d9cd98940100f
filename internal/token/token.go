// Package token implements the sliding-expiration session token and the
// sealed cookie it travels in. A token is the string
// "user-<id>.<unix_seconds>"; it is re-issued with a fresh timestamp on
// every authenticated request, so a session only expires one hour after
// the last use.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is how long a token stays fresh after issuance.
const Window = time.Hour

// CookieName is the cookie the sealed token travels in.
const CookieName = "auth-token"

var (
	ErrWrongFormat      = errors.New("token: wrong format")
	ErrInvalidTimestamp = errors.New("token: invalid timestamp")
	ErrExpired          = errors.New("token: expired")
)

type Token struct {
	UserID   int64
	IssuedAt int64 // unix seconds
}

func Issue(userID int64, now time.Time) Token {
	return Token{UserID: userID, IssuedAt: now.Unix()}
}

func (t Token) String() string {
	return fmt.Sprintf("user-%d.%d", t.UserID, t.IssuedAt)
}

// Parse decodes "user-<digits>.<rest>". A string of any other shape is
// ErrWrongFormat; a <rest> that is not an integer is ErrInvalidTimestamp.
func Parse(s string) (Token, error) {
	rest, ok := strings.CutPrefix(s, "user-")
	if !ok {
		return Token{}, ErrWrongFormat
	}
	idStr, tsStr, ok := strings.Cut(rest, ".")
	if !ok || !allDigits(idStr) {
		return Token{}, ErrWrongFormat
	}
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return Token{}, ErrWrongFormat
	}
	issuedAt, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return Token{}, ErrInvalidTimestamp
	}
	return Token{UserID: userID, IssuedAt: issuedAt}, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Fresh reports whether the token is still inside its validity window at
// now. Exactly Window after issuance the token is expired.
func (t Token) Fresh(now time.Time) error {
	if now.Unix()-t.IssuedAt >= int64(Window/time.Second) {
		return ErrExpired
	}
	return nil
}
