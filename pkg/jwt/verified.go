// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package jwt

import (
	"time"

	"github.com/openchami/macsmith/pkg/errors"
)

// VerifiedClaims is a claim set recovered from a token whose MAC checked out.
// It is produced only by the verification path; callers cannot construct one,
// so holding a VerifiedClaims is proof the token authenticated against a key.
// It additionally carries the algorithm and key id found in the header.
type VerifiedClaims struct {
	claims    map[string]interface{}
	algorithm string
	keyID     string
	typ       string
}

func newVerifiedClaims(claims map[string]interface{}, algorithm, keyID, typ string) *VerifiedClaims {
	return &VerifiedClaims{
		claims:    claims,
		algorithm: algorithm,
		keyID:     keyID,
		typ:       typ,
	}
}

// Algorithm returns the algorithm string found in the verified token's header
func (c *VerifiedClaims) Algorithm() string {
	return c.algorithm
}

// KeyID returns the header's key id, if one was present
func (c *VerifiedClaims) KeyID() (string, bool) {
	return c.keyID, c.keyID != ""
}

// TypeHeader returns the header's "typ" field, if one was present
func (c *VerifiedClaims) TypeHeader() (string, bool) {
	return c.typ, c.typ != ""
}

// HasClaim reports whether the claim is set
func (c *VerifiedClaims) HasClaim(name string) bool {
	_, ok := c.claims[name]
	return ok
}

// Claim returns the raw decoded value of a claim. The returned value is
// shared with the claim set and must be treated as read-only.
func (c *VerifiedClaims) Claim(name string) (interface{}, bool) {
	v, ok := c.claims[name]
	return v, ok
}

// Issuer returns the "iss" claim
func (c *VerifiedClaims) Issuer() (string, error) {
	return c.StringClaim(ClaimIssuer)
}

// Subject returns the "sub" claim
func (c *VerifiedClaims) Subject() (string, error) {
	return c.StringClaim(ClaimSubject)
}

// TokenID returns the "jti" claim
func (c *VerifiedClaims) TokenID() (string, error) {
	return c.StringClaim(ClaimTokenID)
}

// Audiences returns the "aud" claim. A single-string audience is returned as
// a one-element slice.
func (c *VerifiedClaims) Audiences() ([]string, error) {
	v, ok := c.claims[ClaimAudience]
	if !ok {
		return nil, errMissingClaim(ClaimAudience)
	}
	switch aud := v.(type) {
	case string:
		return []string{aud}, nil
	case []interface{}:
		out := make([]string, 0, len(aud))
		for _, item := range aud {
			s, ok := item.(string)
			if !ok {
				return nil, errWrongType(ClaimAudience, "a string list")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errWrongType(ClaimAudience, "a string list")
	}
}

// ExpiresAt returns the "exp" claim
func (c *VerifiedClaims) ExpiresAt() (time.Time, error) {
	return c.timeClaim(ClaimExpiration)
}

// NotBefore returns the "nbf" claim
func (c *VerifiedClaims) NotBefore() (time.Time, error) {
	return c.timeClaim(ClaimNotBefore)
}

// IssuedAt returns the "iat" claim
func (c *VerifiedClaims) IssuedAt() (time.Time, error) {
	return c.timeClaim(ClaimIssuedAt)
}

// StringClaim returns a claim asserted to be a string
func (c *VerifiedClaims) StringClaim(name string) (string, error) {
	v, ok := c.claims[name]
	if !ok {
		return "", errMissingClaim(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", errWrongType(name, "a string")
	}
	return s, nil
}

// NumberClaim returns a claim asserted to be a number
func (c *VerifiedClaims) NumberClaim(name string) (float64, error) {
	v, ok := c.claims[name]
	if !ok {
		return 0, errMissingClaim(name)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, errWrongType(name, "a number")
	}
	return n, nil
}

// BoolClaim returns a claim asserted to be a boolean
func (c *VerifiedClaims) BoolClaim(name string) (bool, error) {
	v, ok := c.claims[name]
	if !ok {
		return false, errMissingClaim(name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, errWrongType(name, "a boolean")
	}
	return b, nil
}

func (c *VerifiedClaims) timeClaim(name string) (time.Time, error) {
	n, err := c.NumberClaim(name)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(n), 0).UTC(), nil
}

func errMissingClaim(name string) error {
	return errors.Newf(errors.ErrCodeGenericInvalid, "claim %q is not set", name)
}

func errWrongType(name, want string) error {
	return errors.Newf(errors.ErrCodeGenericInvalid, "claim %q is not %s", name, want)
}
