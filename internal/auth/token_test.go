package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/civic-engine/internal/models"
)

func TestGenerateAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret-0123456789", "civic-engine", time.Hour)
	user := models.User{ID: "user-1", Username: "alice", Role: models.RoleCitizen}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", subject)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret-0123456789", "civic-engine", -time.Minute)
	token, err := tm.Generate(models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("test-secret-0123456789", "civic-engine", time.Hour)
	verifier := NewTokenManager("a-different-secret-key", "civic-engine", time.Hour)

	token, err := issuer.Generate(models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenManager("test-secret-0123456789", "someone-else", time.Hour)
	verifier := NewTokenManager("test-secret-0123456789", "civic-engine", time.Hour)

	token, err := issuer.Generate(models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret-0123456789", "civic-engine", time.Hour)
	_, err := tm.Parse("not.a.token")
	require.Error(t, err)
}
