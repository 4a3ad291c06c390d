package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(ttl time.Duration) *Service {
	return NewService(nil, "csb", []byte("test-secret"), ttl, nil, nil)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService(time.Hour)
	token, err := svc.signToken("acct-123")
	require.NoError(t, err)

	accountID, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-123", accountID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := testService(time.Hour).signToken("acct-123")
	require.NoError(t, err)

	other := NewService(nil, "csb", []byte("different-secret"), time.Hour, nil, nil)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	impostor := NewService(nil, "someone-else", []byte("test-secret"), time.Hour, nil, nil)
	token, err := impostor.signToken("acct-123")
	require.NoError(t, err)

	_, err = testService(time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := testService(-time.Minute)
	token, err := svc.signToken("acct-123")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.Error(t, err)
}

func TestUsernamePattern(t *testing.T) {
	assert.True(t, usernameRe.MatchString("degen_42"))
	assert.False(t, usernameRe.MatchString("ab"), "too short")
	assert.False(t, usernameRe.MatchString("Mixed"), "uppercase is normalized before validation")
	assert.False(t, usernameRe.MatchString("has space"))
}
