// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

// Package jwt implements HMAC-authenticated JWTs (RFC 7519) with multi-key
// rotation. Claim sets are built through ClaimsBuilder, signed and verified
// by a keyset-backed MAC, and checked against caller policy by Validator.
// All types in this package are immutable after construction and safe for
// concurrent use.
package jwt

import (
	"math"
	"time"

	"github.com/openchami/macsmith/pkg/errors"
)

// Reserved claim names (RFC 7519 §4.1). These have typed setters on the
// builder; setting one through both the typed and the custom path is a
// construction error.
const (
	ClaimIssuer     = "iss"
	ClaimSubject    = "sub"
	ClaimAudience   = "aud"
	ClaimExpiration = "exp"
	ClaimNotBefore  = "nbf"
	ClaimIssuedAt   = "iat"
	ClaimTokenID    = "jti"
)

// maxTimestamp is the largest accepted Unix timestamp, 9999-12-31T23:59:59Z.
const maxTimestamp = 253402300799

var reservedClaims = map[string]bool{
	ClaimIssuer:     true,
	ClaimSubject:    true,
	ClaimAudience:   true,
	ClaimExpiration: true,
	ClaimNotBefore:  true,
	ClaimIssuedAt:   true,
	ClaimTokenID:    true,
}

// RawClaims is a validated claim set ready for signing. It is created only
// by ClaimsBuilder.Build and consumed once per signing operation.
type RawClaims struct {
	payload    map[string]interface{}
	typeHeader string
}

// ClaimsBuilder assembles a RawClaims. Validation happens as values are set
// and again at Build; the first failure sticks and is returned from Build.
type ClaimsBuilder struct {
	registered map[string]interface{}
	custom     map[string]interface{}
	typeHeader string
	err        error
}

// NewClaimsBuilder creates an empty builder
func NewClaimsBuilder() *ClaimsBuilder {
	return &ClaimsBuilder{
		registered: make(map[string]interface{}),
		custom:     make(map[string]interface{}),
	}
}

func (b *ClaimsBuilder) fail(err error) *ClaimsBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Issuer sets the "iss" claim
func (b *ClaimsBuilder) Issuer(issuer string) *ClaimsBuilder {
	b.registered[ClaimIssuer] = issuer
	return b
}

// Subject sets the "sub" claim
func (b *ClaimsBuilder) Subject(subject string) *ClaimsBuilder {
	b.registered[ClaimSubject] = subject
	return b
}

// Audience sets the "aud" claim. At least one value is required; an empty
// audience list is a construction error, not an absent claim.
func (b *ClaimsBuilder) Audience(audience ...string) *ClaimsBuilder {
	if len(audience) == 0 {
		return b.fail(errors.New(errors.ErrCodeConstructionInvalid, "audience requires at least one value"))
	}
	aud := make([]string, len(audience))
	copy(aud, audience)
	b.registered[ClaimAudience] = aud
	return b
}

// TokenID sets the "jti" claim
func (b *ClaimsBuilder) TokenID(id string) *ClaimsBuilder {
	b.registered[ClaimTokenID] = id
	return b
}

// ExpiresAt sets the "exp" claim, truncated to whole seconds
func (b *ClaimsBuilder) ExpiresAt(t time.Time) *ClaimsBuilder {
	return b.timestamp(ClaimExpiration, t)
}

// NotBefore sets the "nbf" claim, truncated to whole seconds
func (b *ClaimsBuilder) NotBefore(t time.Time) *ClaimsBuilder {
	return b.timestamp(ClaimNotBefore, t)
}

// IssuedAt sets the "iat" claim, truncated to whole seconds
func (b *ClaimsBuilder) IssuedAt(t time.Time) *ClaimsBuilder {
	return b.timestamp(ClaimIssuedAt, t)
}

func (b *ClaimsBuilder) timestamp(name string, t time.Time) *ClaimsBuilder {
	seconds := t.Unix()
	if seconds < 0 || seconds > maxTimestamp {
		return b.fail(errors.Newf(errors.ErrCodeConstructionInvalid, "claim %q timestamp %d out of range [0, %d]", name, seconds, int64(maxTimestamp)))
	}
	b.registered[name] = seconds
	return b
}

// TypeHeader sets the "typ" header hint emitted with the token. When unset
// the signer emits "JWT".
func (b *ClaimsBuilder) TypeHeader(typ string) *ClaimsBuilder {
	b.typeHeader = typ
	return b
}

// Custom sets an arbitrary claim. Setting the same name twice is an error,
// as is any value that cannot be represented in JSON.
func (b *ClaimsBuilder) Custom(name string, value interface{}) *ClaimsBuilder {
	if name == "" {
		return b.fail(errors.New(errors.ErrCodeConstructionInvalid, "claim name must not be empty"))
	}
	if _, dup := b.custom[name]; dup {
		return b.fail(errors.Newf(errors.ErrCodeConstructionInvalid, "claim %q set more than once", name))
	}
	if err := validateClaimValue(name, value); err != nil {
		return b.fail(err)
	}
	b.custom[name] = value
	return b
}

// Build validates the assembled claim set and returns an immutable RawClaims.
// Failures surface here, at construction time, never at signing time.
func (b *ClaimsBuilder) Build() (*RawClaims, error) {
	if b.err != nil {
		return nil, b.err
	}

	payload := make(map[string]interface{}, len(b.registered)+len(b.custom))
	for name, value := range b.registered {
		payload[name] = value
	}
	for name, value := range b.custom {
		if _, collision := b.registered[name]; collision && reservedClaims[name] {
			return nil, errors.Newf(errors.ErrCodeConstructionInvalid, "reserved claim %q set through both typed and custom paths", name)
		}
		payload[name] = value
	}

	return &RawClaims{payload: payload, typeHeader: b.typeHeader}, nil
}

// HasClaim reports whether the claim is set
func (c *RawClaims) HasClaim(name string) bool {
	_, ok := c.payload[name]
	return ok
}

// Claim returns the raw value of a claim
func (c *RawClaims) Claim(name string) (interface{}, bool) {
	v, ok := c.payload[name]
	return v, ok
}

// TypeHeader returns the configured "typ" hint, empty if unset
func (c *RawClaims) TypeHeader() string {
	return c.typeHeader
}

// payloadMap returns a copy of the claim map for serialization
func (c *RawClaims) payloadMap() map[string]interface{} {
	out := make(map[string]interface{}, len(c.payload))
	for k, v := range c.payload {
		out[k] = v
	}
	return out
}

// validateClaimValue checks that a custom claim value maps cleanly onto the
// JSON type system: strings, booleans, finite numbers, nil, sequences, and
// string-keyed objects of the same.
func validateClaimValue(name string, value interface{}) error {
	switch v := value.(type) {
	case nil, string, bool, int, int32, int64:
		return nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeConstructionInvalid, "claim %q has a non-finite numeric value", name)
		}
		return nil
	case float32:
		return validateClaimValue(name, float64(v))
	case []string:
		return nil
	case []interface{}:
		for _, item := range v {
			if err := validateClaimValue(name, item); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for key, item := range v {
			if key == "" {
				return errors.Newf(errors.ErrCodeConstructionInvalid, "claim %q has an object with an empty key", name)
			}
			if err := validateClaimValue(name, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Newf(errors.ErrCodeConstructionInvalid, "claim %q has unsupported value type %T", name, value)
	}
}
