// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

// Package tokenservice composes a keyset-backed signer, a claim validator,
// and a verification cache into the facade higher layers call. It owns the
// issuing policy (issuer, audience, lifetime, jti); the cryptographic core
// lives in pkg/jwt and pkg/keys.
package tokenservice

import (
	"time"

	"github.com/google/uuid"

	"github.com/openchami/macsmith/pkg/errors"
	"github.com/openchami/macsmith/pkg/jwt"
	"github.com/openchami/macsmith/pkg/keys"
	"github.com/openchami/macsmith/pkg/logging"
)

const (
	// DefaultTokenLifetime is applied when the configuration leaves it zero
	DefaultTokenLifetime = time.Hour

	// DefaultCacheSize bounds the verification cache when unconfigured
	DefaultCacheSize = 1024
)

// Config holds the token service configuration
type Config struct {
	// Issuer is stamped into every issued token and required on verification
	Issuer string

	// Audience, when set, is stamped into issued tokens and required on
	// verification
	Audience string

	// TokenLifetime is the validity window of issued tokens
	TokenLifetime time.Duration

	// ClockSkew is the tolerance for time-based validation;
	// zero selects jwt.DefaultClockSkew
	ClockSkew time.Duration

	// CacheSize bounds the verification cache; negative disables caching
	CacheSize int

	// Clock pins time for deterministic tests. Nil means wall clock.
	Clock func() time.Time
}

// Service issues and verifies tokens against one immutable keyset. Rotation
// means constructing a new Service over a rotated keyset and swapping the
// reference; a Service itself never changes keys.
type Service struct {
	mac       *jwt.KeysetMac
	validator *jwt.Validator
	config    Config
	clock     func() time.Time
	cache     *verificationCache
	logger    *logging.StructuredLogger
}

// NewService creates a Service over the given keyset
func NewService(ks *keys.Keyset, config Config) (*Service, error) {
	if config.Issuer == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "issuer is required")
	}
	if config.TokenLifetime < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "token lifetime must not be negative")
	}
	if config.TokenLifetime == 0 {
		config.TokenLifetime = DefaultTokenLifetime
	}

	mac, err := jwt.NewKeysetMac(ks)
	if err != nil {
		return nil, err
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	validatorConfig := jwt.ValidatorConfig{
		ExpectedIssuer:   config.Issuer,
		ExpectedAudience: config.Audience,
		ExpectedType:     "JWT",
		ClockSkew:        config.ClockSkew,
		ExpectIssuedAt:   true,
	}
	if config.Clock != nil {
		validatorConfig.FixedNow = config.Clock()
	}
	validator, err := jwt.NewValidator(validatorConfig)
	if err != nil {
		return nil, err
	}

	var cache *verificationCache
	if config.CacheSize >= 0 {
		size := config.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		cache, err = newVerificationCache(size)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create verification cache")
		}
	}

	return &Service{
		mac:       mac,
		validator: validator,
		config:    config,
		clock:     clock,
		cache:     cache,
		logger:    logging.NewStructuredLogger("tokenservice"),
	}, nil
}

// Keyset returns the keyset the service signs and verifies with
func (s *Service) Keyset() *keys.Keyset {
	return s.mac.Keyset()
}

// Issue signs a new token for the subject. The issuer, audience, issued-at,
// expiration, and a fresh jti come from the service configuration; custom
// claims are passed through the builder's validation.
func (s *Service) Issue(subject string, custom map[string]interface{}) (string, error) {
	start := time.Now()
	now := s.clock()

	builder := jwt.NewClaimsBuilder().
		Issuer(s.config.Issuer).
		Subject(subject).
		TokenID(uuid.NewString()).
		IssuedAt(now).
		ExpiresAt(now.Add(s.config.TokenLifetime))
	if s.config.Audience != "" {
		builder = builder.Audience(s.config.Audience)
	}
	for name, value := range custom {
		builder = builder.Custom(name, value)
	}

	claims, err := builder.Build()
	if err != nil {
		return "", err
	}

	token, err := s.mac.ComputeMacAndEncode(claims)
	s.logger.LogTokenOperation("issue", err == nil, time.Since(start))
	if err != nil {
		return "", err
	}
	return token, nil
}

// Verify authenticates the compact token against the keyset and validates
// its claims. Successful verifications are cached keyed by the token string;
// a cache hit skips the MAC but re-runs claim validation, so a cached token
// still expires on time.
func (s *Service) Verify(compact string) (*jwt.VerifiedClaims, error) {
	start := time.Now()

	if cached, ok := s.cache.get(compact); ok {
		if err := s.validator.Validate(cached); err != nil {
			s.cache.remove(compact)
			s.logger.LogTokenOperation("verify", false, time.Since(start))
			return nil, err
		}
		s.logger.LogTokenOperation("verify", true, time.Since(start))
		return cached, nil
	}

	verified, err := s.mac.VerifyMacAndDecode(compact)
	if err == nil {
		err = s.validator.Validate(verified)
	}
	s.logger.LogTokenOperation("verify", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.cache.add(compact, verified)
	return verified, nil
}
