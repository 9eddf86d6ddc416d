package handler

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRF(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewCSRF("secret")
	require.NoError(t, err)
	c.Now = func() time.Time { return now }

	token, err := c.Issue("u1", ActionSubmitComplaint)
	require.NoError(t, err)

	assert.NoError(t, c.Verify(token, "u1", ActionSubmitComplaint))
	assert.ErrorIs(t, c.Verify(token, "u2", ActionSubmitComplaint), ErrCSRF)
	assert.ErrorIs(t, c.Verify(token, "u1", "claim_listing"), ErrCSRF)
	assert.ErrorIs(t, c.Verify("", "u1", ActionSubmitComplaint), ErrCSRF)
	other, err := NewCSRF("other")
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(token, "u1", ActionSubmitComplaint), ErrCSRF)

	now = now.Add(13 * time.Hour)
	assert.ErrorIs(t, c.Verify(token, "u1", ActionSubmitComplaint), ErrCSRF)
}

func TestCSRF_EmptySecretRejected(t *testing.T) {
	_, err := NewCSRF("")
	assert.ErrorIs(t, err, ErrEmptySecret)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, csrfClaims{
		Action: ActionSubmitComplaint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "victim",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(""))
	require.NoError(t, err)

	zero := &CSRF{TTL: time.Hour, Now: time.Now}
	assert.ErrorIs(t, zero.Verify(forged, "victim", ActionSubmitComplaint), ErrCSRF)
	_, err = zero.Issue("victim", ActionSubmitComplaint)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSameSite(t *testing.T) {
	h := &Handler{Opts: Options{SiteURL: "https://hub.example"}}
	assert.True(t, h.sameSite("/file-a-complaint/"))
	assert.True(t, h.sameSite("https://HUB.example/x"))
	assert.False(t, h.sameSite("https://evil.example/x"))
	assert.False(t, h.sameSite("//evil.example/x"))
	assert.False(t, h.sameSite("javascript:alert(1)"))
	assert.False(t, h.sameSite(""))
}
