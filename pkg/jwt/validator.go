// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package jwt

import (
	"time"

	"github.com/openchami/macsmith/pkg/errors"
)

const (
	// DefaultClockSkew is applied when the configuration leaves ClockSkew zero
	DefaultClockSkew = 5 * time.Second

	// MaxClockSkew bounds the configurable skew; anything larger hides real
	// expiration bugs rather than absorbing clock drift
	MaxClockSkew = 10 * time.Minute
)

// ValidatorConfig configures claim validation. Zero values mean "not
// checked" for the expectation fields.
type ValidatorConfig struct {
	// ExpectedIssuer, when set, requires an equal "iss" claim
	ExpectedIssuer string

	// ExpectedAudience, when set, requires the "aud" claim to contain it
	ExpectedAudience string

	// ExpectedType, when set, requires an equal "typ" header
	ExpectedType string

	// ExpectedAlgorithm, when set, re-asserts the header algorithm the MAC
	// layer already matched against the key
	ExpectedAlgorithm string

	// ClockSkew is the tolerance applied to every time comparison.
	// Zero selects DefaultClockSkew; values above MaxClockSkew are rejected.
	ClockSkew time.Duration

	// FixedNow pins "now" for deterministic tests. Zero means wall clock.
	FixedNow time.Time

	// AllowMissingExpiration tolerates tokens without an "exp" claim.
	// Off by default: a token that cannot expire is almost always a bug.
	AllowMissingExpiration bool

	// ExpectIssuedAt requires an "iat" claim that is not in the future
	ExpectIssuedAt bool
}

// Validator is a configured predicate over verified claim sets. It reports
// exactly one of three outcomes on rejection: EXPIRED, NOT_YET_VALID, or
// GENERIC_INVALID. Non-time failures are intentionally not told apart
// further.
type Validator struct {
	config ValidatorConfig
	now    func() time.Time
}

// NewValidator creates a Validator from the configuration
func NewValidator(config ValidatorConfig) (*Validator, error) {
	if config.ClockSkew < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "clock skew must not be negative")
	}
	if config.ClockSkew > MaxClockSkew {
		return nil, errors.Newf(errors.ErrCodeInvalidConfig, "clock skew %s exceeds maximum %s", config.ClockSkew, MaxClockSkew)
	}
	if config.ClockSkew == 0 {
		config.ClockSkew = DefaultClockSkew
	}

	now := time.Now
	if !config.FixedNow.IsZero() {
		fixed := config.FixedNow
		now = func() time.Time { return fixed }
	}
	return &Validator{config: config, now: now}, nil
}

// Validate applies every configured rule to the claim set. Rules are
// evaluated in a fixed order and the first failure is returned; a passing
// token satisfies all of them.
func (v *Validator) Validate(claims *VerifiedClaims) error {
	now := v.now()
	skew := v.config.ClockSkew

	if alg := v.config.ExpectedAlgorithm; alg != "" && claims.Algorithm() != alg {
		return errors.Newf(errors.ErrCodeGenericInvalid, "token algorithm %q does not match expected %q", claims.Algorithm(), alg)
	}

	if want := v.config.ExpectedType; want != "" {
		typ, ok := claims.TypeHeader()
		if !ok || typ != want {
			return errors.Newf(errors.ErrCodeGenericInvalid, "token type header does not match expected %q", want)
		}
	}

	if claims.HasClaim(ClaimExpiration) {
		exp, err := claims.ExpiresAt()
		if err != nil {
			return err
		}
		if !now.Add(-skew).Before(exp) {
			return errors.New(errors.ErrCodeExpired, "token has expired")
		}
	} else if !v.config.AllowMissingExpiration {
		return errors.New(errors.ErrCodeGenericInvalid, "token has no expiration set")
	}

	if claims.HasClaim(ClaimNotBefore) {
		nbf, err := claims.NotBefore()
		if err != nil {
			return err
		}
		if now.Add(skew).Before(nbf) {
			return errors.New(errors.ErrCodeNotYetValid, "token is not yet valid")
		}
	}

	if v.config.ExpectIssuedAt {
		if !claims.HasClaim(ClaimIssuedAt) {
			return errors.New(errors.ErrCodeGenericInvalid, "token has no issued-at set")
		}
		iat, err := claims.IssuedAt()
		if err != nil {
			return err
		}
		if iat.After(now.Add(skew)) {
			return errors.New(errors.ErrCodeGenericInvalid, "token issued-at is in the future")
		}
	}

	if want := v.config.ExpectedIssuer; want != "" {
		issuer, err := claims.Issuer()
		if err != nil {
			return err
		}
		if issuer != want {
			return errors.Newf(errors.ErrCodeGenericInvalid, "token issuer does not match expected %q", want)
		}
	}

	if want := v.config.ExpectedAudience; want != "" {
		audiences, err := claims.Audiences()
		if err != nil {
			return err
		}
		found := false
		for _, aud := range audiences {
			if aud == want {
				found = true
				break
			}
		}
		if !found {
			return errors.Newf(errors.ErrCodeGenericInvalid, "token audience does not contain expected %q", want)
		}
	}

	return nil
}
