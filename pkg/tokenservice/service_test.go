package tokenservice

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchami/macsmith/pkg/errors"
	"github.com/openchami/macsmith/pkg/keys"
)

func testKeyset(t *testing.T) *keys.Keyset {
	t.Helper()
	entry, err := keys.NewManager().GenerateEntry(keys.AlgHS256, keys.PrefixTink)
	require.NoError(t, err)
	entry.Primary = true
	keyset, err := keys.NewKeyset(entry)
	require.NoError(t, err)
	return keyset
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestServiceIssueAndVerify(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	keyset := testKeyset(t)

	service, err := NewService(keyset, Config{
		Issuer:   "https://issuer.example",
		Audience: "svc-a",
		Clock:    fixedClock(now),
	})
	require.NoError(t, err)

	token, err := service.Issue("user-1", map[string]interface{}{"role": "admin"})
	require.NoError(t, err)

	verified, err := service.Verify(token)
	require.NoError(t, err)

	subject, err := verified.Subject()
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)

	role, err := verified.StringClaim("role")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	tokenID, err := verified.TokenID()
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	exp, err := verified.ExpiresAt()
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTokenLifetime), exp)

	t.Run("repeat verification is served from the cache", func(t *testing.T) {
		again, err := service.Verify(token)
		require.NoError(t, err)
		assert.Same(t, verified, again)
	})

	t.Run("every issued token gets a distinct jti", func(t *testing.T) {
		other, err := service.Issue("user-1", nil)
		require.NoError(t, err)
		assert.NotEqual(t, token, other)
	})
}

func TestServiceVerifyRejections(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	keyset := testKeyset(t)

	issue := func(t *testing.T, at time.Time) string {
		t.Helper()
		issuer, err := NewService(keyset, Config{
			Issuer: "https://issuer.example",
			Clock:  fixedClock(at),
		})
		require.NoError(t, err)
		token, err := issuer.Issue("user-1", nil)
		require.NoError(t, err)
		return token
	}

	verifier, err := NewService(keyset, Config{
		Issuer: "https://issuer.example",
		Clock:  fixedClock(now),
	})
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		token := issue(t, now.Add(-2*time.Hour))
		_, err := verifier.Verify(token)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeExpired, errors.GetErrorCode(err))
	})

	t.Run("token from a foreign issuer", func(t *testing.T) {
		other, err := NewService(keyset, Config{
			Issuer: "https://other.example",
			Clock:  fixedClock(now),
		})
		require.NoError(t, err)
		token, err := other.Issue("user-1", nil)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeGenericInvalid, errors.GetErrorCode(err))
	})

	t.Run("token signed with an unknown key", func(t *testing.T) {
		foreign, err := NewService(testKeyset(t), Config{
			Issuer: "https://issuer.example",
			Clock:  fixedClock(now),
		})
		require.NoError(t, err)
		token, err := foreign.Issue("user-1", nil)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeNoKeyVerified, errors.GetErrorCode(err))
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeNoKeyVerified, errors.GetErrorCode(err))
	})
}

func TestServiceCacheRevalidates(t *testing.T) {
	keyset := testKeyset(t)
	issued := time.Unix(1700000000, 0).UTC()

	issuer, err := NewService(keyset, Config{
		Issuer: "https://issuer.example",
		Clock:  fixedClock(issued),
	})
	require.NoError(t, err)
	token, err := issuer.Issue("user-1", nil)
	require.NoError(t, err)

	// verifies and populates the cache while the token is fresh
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	// a later verifier over the same keyset sees the token as expired
	late, err := NewService(keyset, Config{
		Issuer: "https://issuer.example",
		Clock:  fixedClock(issued.Add(2 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = late.Verify(token)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExpired, errors.GetErrorCode(err))
}

func TestServiceRotation(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	config := Config{Issuer: "https://issuer.example", Clock: fixedClock(now)}

	keyset := testKeyset(t)
	service, err := NewService(keyset, config)
	require.NoError(t, err)
	oldToken, err := service.Issue("user-1", nil)
	require.NoError(t, err)

	fresh, err := keys.NewManager().GenerateEntry(keys.AlgHS256, keys.PrefixTink)
	require.NoError(t, err)
	rotated, err := keyset.Rotate(fresh)
	require.NoError(t, err)

	service, err = NewService(rotated, config)
	require.NoError(t, err)

	// tokens signed before the rotation remain verifiable
	_, err = service.Verify(oldToken)
	assert.NoError(t, err)

	newToken, err := service.Issue("user-1", nil)
	require.NoError(t, err)
	verified, err := service.Verify(newToken)
	require.NoError(t, err)
	kid, _ := verified.KeyID()
	assert.Equal(t, fresh.KeyID, kid)
}

func TestServiceConfigValidation(t *testing.T) {
	keyset := testKeyset(t)

	t.Run("issuer is required", func(t *testing.T) {
		_, err := NewService(keyset, Config{})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetErrorCode(err))
	})

	t.Run("negative lifetime is rejected", func(t *testing.T) {
		_, err := NewService(keyset, Config{Issuer: "x", TokenLifetime: -time.Hour})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetErrorCode(err))
	})

	t.Run("negative cache size disables caching", func(t *testing.T) {
		service, err := NewService(keyset, Config{Issuer: "https://issuer.example", CacheSize: -1})
		require.NoError(t, err)

		token, err := service.Issue("user-1", nil)
		require.NoError(t, err)
		_, err = service.Verify(token)
		assert.NoError(t, err)
	})
}

func TestFileConfig(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		config := &FileConfig{
			Issuer:        "https://issuer.example",
			Audience:      "svc-a",
			TokenLifetime: "30m",
			ClockSkew:     "10s",
			CacheSize:     64,
			KeysetPath:    "keys/keyset.yaml",
		}
		require.NoError(t, SaveFileConfig(config, path))

		loaded, err := LoadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, config, loaded)

		serviceConfig, err := loaded.ServiceConfig()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, serviceConfig.TokenLifetime)
		assert.Equal(t, 10*time.Second, serviceConfig.ClockSkew)
	})

	t.Run("empty path yields the defaults", func(t *testing.T) {
		config, err := LoadFileConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultFileConfig(), config)
	})

	t.Run("bad duration is an invalid config", func(t *testing.T) {
		config := &FileConfig{Issuer: "x", TokenLifetime: "soon"}
		_, err := config.ServiceConfig()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetErrorCode(err))
	})
}
