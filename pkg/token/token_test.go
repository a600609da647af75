package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateAndVerify(t *testing.T) {
	m, err := NewManager("test-secret", "tabletopmastering", time.Hour)
	require.NoError(t, err)

	signed, expiresAt, err := m.Generate("player-1")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "tabletopmastering", claims.Issuer)
}

func TestManager_VerifyRejectsWrongSecret(t *testing.T) {
	m1, err := NewManager("secret-one", "app", time.Hour)
	require.NoError(t, err)
	m2, err := NewManager("secret-two", "app", time.Hour)
	require.NoError(t, err)

	signed, _, err := m1.Generate("player-1")
	require.NoError(t, err)

	_, err = m2.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m, err := NewManager("test-secret", "app", time.Millisecond)
	require.NoError(t, err)

	signed, _, err := m.Generate("player-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_VerifyRejectsGarbage(t *testing.T) {
	m, err := NewManager("test-secret", "app", time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", "app", time.Hour)
	assert.Error(t, err)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m, err := NewManager("s", "app", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.TTL())
}
