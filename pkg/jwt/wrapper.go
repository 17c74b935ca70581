// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package jwt

import (
	"github.com/openchami/macsmith/pkg/errors"
	"github.com/openchami/macsmith/pkg/keys"
)

// errNoKeyVerified is the single failure returned when every candidate key
// was tried. Which keys were candidates and why each one failed is never
// reported; that would reopen the oracle the per-key error collapses.
var errNoKeyVerified = errors.New(errors.ErrCodeNoKeyVerified, "no key in the keyset verified the token")

// KeysetMac composes one MAC primitive per keyset entry into a single
// signer/verifier. Signing always uses the primary key; verification tries
// candidate keys in keyset order, which is what makes rotation transparent:
// a verifier holding an old and a new key accepts tokens signed by either.
type KeysetMac struct {
	keyset  *keys.Keyset
	primary *Mac
	macs    []candidate
}

type candidate struct {
	entry keys.Entry
	mac   *Mac
}

// NewKeysetMac builds a wrapper over an immutable keyset
func NewKeysetMac(ks *keys.Keyset) (*KeysetMac, error) {
	w := &KeysetMac{keyset: ks}
	for _, entry := range ks.Entries() {
		mac, err := NewMac(entry)
		if err != nil {
			return nil, err
		}
		w.macs = append(w.macs, candidate{entry: entry, mac: mac})
		if entry.Primary {
			w.primary = mac
		}
	}
	if w.primary == nil {
		return nil, errors.New(errors.ErrCodeKeyInvalid, "keyset has no primary entry")
	}
	return w, nil
}

// Keyset returns the wrapped keyset
func (w *KeysetMac) Keyset() *keys.Keyset {
	return w.keyset
}

// ComputeMacAndEncode signs the claim set with the primary key only
func (w *KeysetMac) ComputeMacAndEncode(raw *RawClaims) (string, error) {
	return w.primary.ComputeMacAndEncode(raw)
}

// VerifyMacAndDecode tries the token against the candidate keys and returns
// the first success.
//
// Candidate selection: if the header carries a "kid", the candidates are the
// TINK entries with that exact key id plus every RAW entry — RAW keys never
// carry or require a key id and stay universally triable, which covers
// tokens minted mid-rotation. Without a "kid" only RAW entries are tried;
// TINK entries always stamp their id, so a token claiming none was not
// signed by one.
func (w *KeysetMac) VerifyMacAndDecode(compact string) (*VerifiedClaims, error) {
	header, _, err := splitCompact(compact)
	if err != nil {
		return nil, errNoKeyVerified
	}

	for _, c := range w.macs {
		switch c.entry.Prefix {
		case keys.PrefixRaw:
			// always a candidate
		case keys.PrefixTink:
			if header.Kid == "" || header.Kid != c.entry.KeyID {
				continue
			}
		}
		if verified, err := c.mac.VerifyMacAndDecode(compact); err == nil {
			return verified, nil
		}
	}
	return nil, errNoKeyVerified
}
