package handler

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ActionSubmitComplaint is the CSRF action of the complaint form.
const ActionSubmitComplaint = "submit_complaint"

var (
	ErrCSRF = errors.New("csrf token rejected")
	// ErrEmptySecret is returned for an empty signing key.
	ErrEmptySecret = errors.New("csrf secret is empty")
)

// CSRF issues short-lived form tokens bound to a user and an action.
type CSRF struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type csrfClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

func NewCSRF(secret string) (*CSRF, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &CSRF{Secret: []byte(secret), TTL: 12 * time.Hour, Now: time.Now}, nil
}

// Issue signs a token for userID to perform action.
func (c *CSRF) Issue(userID, action string) (string, error) {
	if len(c.Secret) == 0 {
		return "", ErrEmptySecret
	}
	now := c.Now()
	claims := csrfClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// Verify checks that token was issued to userID for action and has not expired.
func (c *CSRF) Verify(token, userID, action string) error {
	if token == "" {
		return fmt.Errorf("%w: missing", ErrCSRF)
	}
	if len(c.Secret) == 0 {
		return fmt.Errorf("%w: %v", ErrCSRF, ErrEmptySecret)
	}
	var claims csrfClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(userID),
		jwt.WithTimeFunc(c.Now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCSRF, err)
	}
	if claims.Action != action {
		return fmt.Errorf("%w: issued for %q", ErrCSRF, claims.Action)
	}
	return nil
}
