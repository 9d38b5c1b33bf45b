package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habib-web-dev1/local-chef-client-sub000/internal/domain"
)

func testIdentity() *domain.Identity {
	return &domain.Identity{
		UID:         "uid-1",
		Email:       "chef@example.com",
		DisplayName: "Chef Remy",
		PhotoURL:    "https://example.com/remy.png",
	}
}

func TestTokenCodec_MintAndVerify(t *testing.T) {
	codec := NewTokenCodec("test-secret", "test-issuer", time.Hour)

	token, err := codec.Mint(testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "chef@example.com", claims.Email)
	assert.Equal(t, "Chef Remy", claims.DisplayName)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, "uid-1", claims.Subject)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	codec := NewTokenCodec("test-secret", "test-issuer", time.Hour)
	other := NewTokenCodec("other-secret", "test-issuer", time.Hour)

	token, err := codec.Mint(testIdentity())
	require.NoError(t, err)

	_, err = other.Verify(token)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec("test-secret", "test-issuer", -time.Minute)

	token, err := codec.Mint(testIdentity())
	require.NoError(t, err)

	_, err = codec.Verify(token)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec := NewTokenCodec("test-secret", "test-issuer", time.Hour)

	_, err := codec.Verify("not.a.token")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
