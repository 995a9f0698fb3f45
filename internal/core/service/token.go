package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A password-change token never opens a session.
const (
	PurposeSession        = "session"
	PurposePasswordChange = "password_change"
)

const defaultChangeTokenTTL = 15 * time.Minute

var errTokenPurpose = errors.New("token purpose mismatch")

type tokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session references. A token only
// names the account; authority is always re-read from the directory.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	changeTTL  time.Duration
	now        func() time.Time
}

// NewTokenIssuer returns a TokenIssuer. A non-positive TTL falls back to 12h.
func NewTokenIssuer(secret string, sessionTTL time.Duration) *TokenIssuer {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		changeTTL:  defaultChangeTokenTTL,
		now:        time.Now,
	}
}

// Issue signs a token of the given purpose for email.
func (t *TokenIssuer) Issue(email, purpose string) (string, error) {
	token, _, err := t.issue(email, purpose)
	return token, err
}

func (t *TokenIssuer) issue(email, purpose string) (token, id string, err error) {
	ttl := t.sessionTTL
	if purpose == PurposePasswordChange {
		ttl = t.changeTTL
	}
	now := t.now()
	id = uuid.NewString()
	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", err
	}
	return token, id, nil
}

// Parse verifies token and returns the email it names.
func (t *TokenIssuer) Parse(token, purpose string) (string, error) {
	claims, err := t.verify(token, purpose)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) verify(token, purpose string) (*tokenClaims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Purpose != purpose {
		return nil, errTokenPurpose
	}
	return &claims, nil
}
