// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package keys

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/openchami/macsmith/pkg/errors"
)

// Algorithm identifies an HMAC algorithm family for JWT signing.
// The set of algorithms is closed; adding one means extending the
// switch statements below, not implementing an interface elsewhere.
type Algorithm string

const (
	AlgHS256 Algorithm = "HS256"
	AlgHS384 Algorithm = "HS384"
	AlgHS512 Algorithm = "HS512"
)

// MinKeySize is the minimum accepted key material length in bytes
// (256 bits) for every supported algorithm.
const MinKeySize = 32

// SupportedAlgorithms lists every algorithm this package accepts.
var SupportedAlgorithms = []Algorithm{AlgHS256, AlgHS384, AlgHS512}

// ValidateAlgorithm checks that the algorithm identifier is recognized
func ValidateAlgorithm(alg Algorithm) error {
	switch alg {
	case AlgHS256, AlgHS384, AlgHS512:
		return nil
	default:
		return errors.Newf(errors.ErrCodeKeyInvalid, "unsupported algorithm %q, supported algorithms: HS256, HS384, HS512", string(alg))
	}
}

// SigningMethod returns the golang-jwt signing method for the algorithm.
// The method's Sign/Verify implement HMAC with a constant-time tag comparison.
func (a Algorithm) SigningMethod() *jwt.SigningMethodHMAC {
	switch a {
	case AlgHS384:
		return jwt.SigningMethodHS384
	case AlgHS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// RecommendedKeySize returns the key material length in bytes generated for
// the algorithm: the underlying hash output size, never below MinKeySize.
func (a Algorithm) RecommendedKeySize() int {
	switch a {
	case AlgHS384:
		return 48
	case AlgHS512:
		return 64
	default:
		return 32
	}
}
