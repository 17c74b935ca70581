// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package tokenservice

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openchami/macsmith/pkg/jwt"
)

// verificationCache remembers successfully verified tokens so repeated
// verification of the same compact string skips the MAC computation.
// Entries are claim sets that already authenticated; time-based validation
// still runs on every hit, so the cache never extends a token's life.
// A nil cache is valid and caches nothing.
type verificationCache struct {
	entries *lru.Cache[string, *jwt.VerifiedClaims]
}

func newVerificationCache(size int) (*verificationCache, error) {
	entries, err := lru.New[string, *jwt.VerifiedClaims](size)
	if err != nil {
		return nil, err
	}
	return &verificationCache{entries: entries}, nil
}

func (c *verificationCache) get(compact string) (*jwt.VerifiedClaims, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(compact)
}

func (c *verificationCache) add(compact string, claims *jwt.VerifiedClaims) {
	if c == nil {
		return
	}
	c.entries.Add(compact, claims)
}

func (c *verificationCache) remove(compact string) {
	if c == nil {
		return
	}
	c.entries.Remove(compact)
}
