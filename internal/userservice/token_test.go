package userservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "", 0)
	id := uuid.New()

	token, err := tm.Issue(id)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Plain)
	assert.NotEmpty(t, token.ID)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), token.Expiry, 2*time.Second)

	claims, err := tm.Verify(token.Plain)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, DefaultIssuer, claims.Issuer)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenUniqueIDs(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	id := uuid.New()

	a, err := tm.Issue(id)
	require.NoError(t, err)
	b, err := tm.Issue(id)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerifyRejects(t *testing.T) {
	tm := NewTokenManager(testSecret, "bloghub", time.Hour)
	valid, err := tm.Issue(uuid.New())
	require.NoError(t, err)

	expired := NewTokenManager(testSecret, "bloghub", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(uuid.New())
	require.NoError(t, err)

	otherSecret, err := NewTokenManager("another-secret-another-secret-xx", "bloghub", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager(testSecret, "someone-else", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   uuid.NewString(),
		Issuer:    "bloghub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "bloghub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "tampered", token: valid.Plain + "x"},
		{name: "expired", token: old.Plain},
		{name: "wrong secret", token: otherSecret.Plain},
		{name: "wrong issuer", token: otherIssuer.Plain},
		{name: "none algorithm", token: none},
		{name: "missing token id", token: noID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tm.Verify(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestClaimsUserID(t *testing.T) {
	c := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "nope"}}
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
