package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "presence/pkg/domain-errors"
)

var tokens = NewTokenService("test-signing-key", DefaultIssuer, DefaultAudience)

func TestIssueAndValidate(t *testing.T) {
	token, err := tokens.Issue("AB", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "AB", claims.Initials)
	assert.Equal(t, "ab", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	mw, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "AB", mw.Initials)
	assert.Equal(t, claims.ID, mw.JTI)
}

func TestIssueRequiresInitials(t *testing.T) {
	_, err := tokens.Issue("", time.Hour)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidateRejects(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ValidateToken("invalid-token-string")
		require.Error(t, err)
		assert.Equal(t, "invalid token", err.Error())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := tokens.Issue("AB", -time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		require.Error(t, err)
		assert.Equal(t, "token has expired", err.Error())
	})

	t.Run("other key", func(t *testing.T) {
		token, err := NewTokenService("other-key", DefaultIssuer, DefaultAudience).Issue("AB", time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other audience", func(t *testing.T) {
		token, err := NewTokenService("test-signing-key", DefaultIssuer, "elsewhere").Issue("AB", time.Hour)
		require.NoError(t, err)
		_, err = tokens.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestPeekInitials(t *testing.T) {
	token, err := NewTokenService("any-key", DefaultIssuer, DefaultAudience).Issue("lz", time.Hour)
	require.NoError(t, err)

	initials, err := PeekInitials(token)
	require.NoError(t, err)
	assert.Equal(t, "lz", initials.String())

	_, err = PeekInitials("not.a.token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
