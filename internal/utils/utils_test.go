package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "Sales", "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Sales", claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "Sales", "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("user-1", "Sales", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	assert.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestSanitizePlainText(t *testing.T) {
	assert.Equal(t, "hello", SanitizePlainText("<script>alert(1)</script>hello"))
	assert.Equal(t, "Bob", SanitizePlainText("<b>Bob</b>"))
	assert.Equal(t, "plain text", SanitizePlainText("plain text"))
}
