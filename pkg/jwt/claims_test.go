package jwt

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchami/macsmith/pkg/errors"
)

func TestClaimsBuilder(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	t.Run("builds a full claim set", func(t *testing.T) {
		claims, err := NewClaimsBuilder().
			Issuer("https://issuer.example").
			Subject("user-1").
			Audience("svc-a", "svc-b").
			TokenID("id-123").
			IssuedAt(now).
			NotBefore(now).
			ExpiresAt(now.Add(time.Hour)).
			TypeHeader("at+jwt").
			Custom("scope", []string{"read", "write"}).
			Custom("depth", 3).
			Build()
		require.NoError(t, err)

		v, ok := claims.Claim(ClaimIssuer)
		require.True(t, ok)
		assert.Equal(t, "https://issuer.example", v)

		v, ok = claims.Claim(ClaimExpiration)
		require.True(t, ok)
		assert.Equal(t, now.Add(time.Hour).Unix(), v)

		assert.True(t, claims.HasClaim("scope"))
		assert.Equal(t, "at+jwt", claims.TypeHeader())
	})

	t.Run("reserved claim through both paths fails", func(t *testing.T) {
		_, err := NewClaimsBuilder().
			Issuer("https://issuer.example").
			Custom("iss", "https://other.example").
			Build()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConstructionInvalid, errors.GetErrorCode(err))
	})

	t.Run("reserved claim through the custom path alone is allowed", func(t *testing.T) {
		claims, err := NewClaimsBuilder().
			Custom("iss", "https://issuer.example").
			ExpiresAt(now).
			Build()
		require.NoError(t, err)
		assert.True(t, claims.HasClaim(ClaimIssuer))
	})

	t.Run("duplicate custom claim fails", func(t *testing.T) {
		_, err := NewClaimsBuilder().
			Custom("role", "admin").
			Custom("role", "viewer").
			Build()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConstructionInvalid, errors.GetErrorCode(err))
	})

	t.Run("empty audience fails", func(t *testing.T) {
		_, err := NewClaimsBuilder().Audience().Build()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConstructionInvalid, errors.GetErrorCode(err))
	})

	t.Run("non-finite numbers fail", func(t *testing.T) {
		for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			_, err := NewClaimsBuilder().Custom("ratio", bad).Build()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConstructionInvalid, errors.GetErrorCode(err))
		}
	})

	t.Run("timestamps outside the representable range fail", func(t *testing.T) {
		_, err := NewClaimsBuilder().ExpiresAt(time.Unix(-1, 0)).Build()
		assert.Error(t, err)

		_, err = NewClaimsBuilder().ExpiresAt(time.Unix(maxTimestamp+1, 0)).Build()
		assert.Error(t, err)

		_, err = NewClaimsBuilder().ExpiresAt(time.Unix(maxTimestamp, 0)).Build()
		assert.NoError(t, err)
	})

	t.Run("unsupported value types fail", func(t *testing.T) {
		_, err := NewClaimsBuilder().Custom("weird", struct{ X int }{X: 1}).Build()
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConstructionInvalid, errors.GetErrorCode(err))
	})

	t.Run("nested values are validated recursively", func(t *testing.T) {
		_, err := NewClaimsBuilder().
			Custom("meta", map[string]interface{}{"ratio": math.NaN()}).
			Build()
		assert.Error(t, err)

		_, err = NewClaimsBuilder().
			Custom("meta", map[string]interface{}{"tags": []interface{}{"a", true, 1.5}}).
			Build()
		assert.NoError(t, err)
	})

	t.Run("first error wins and later calls do not mask it", func(t *testing.T) {
		_, err := NewClaimsBuilder().
			Custom("", "value").
			Issuer("https://issuer.example").
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "claim name must not be empty")
	})
}
