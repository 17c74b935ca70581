// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package keys

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"

	"github.com/openchami/macsmith/pkg/errors"
)

// OutputPrefix controls whether tokens signed with a key carry the key's
// identifier in their header.
type OutputPrefix string

const (
	// PrefixTink keys embed their key id as the "kid" header of every token
	// they sign, so verifiers can route tokens to the right key.
	PrefixTink OutputPrefix = "TINK"

	// PrefixRaw keys emit no key id and never require one. Raw keys remain
	// candidates for any token during verification, which keeps tokens signed
	// before rotation metadata existed verifiable.
	PrefixRaw OutputPrefix = "RAW"
)

// Entry is one symmetric key in a keyset together with its metadata.
// Entries are immutable snapshots; nothing in this module writes back
// into an entry after construction.
type Entry struct {
	// Material is the raw symmetric key, at least MinKeySize bytes.
	Material []byte

	// Algorithm the key is bound to. Tokens signed by this key carry it in
	// their header and verification rejects any other value.
	Algorithm Algorithm

	// Prefix selects whether this key's tokens carry a key id.
	Prefix OutputPrefix

	// KeyID identifies the key inside a keyset. Set only for TINK entries.
	KeyID string

	// Primary marks the single entry of a keyset used for new signatures.
	Primary bool
}

// Manager generates and validates key entries. The random source is
// injectable so tests can make generation deterministic.
type Manager struct {
	rand io.Reader
}

// NewManager creates a Manager drawing from crypto/rand
func NewManager() *Manager {
	return &Manager{rand: rand.Reader}
}

// NewManagerWithRand creates a Manager drawing from the given reader
func NewManagerWithRand(r io.Reader) *Manager {
	return &Manager{rand: r}
}

// GenerateEntry draws fresh key material for the algorithm, sized to the
// algorithm's recommended length. TINK entries get a generated key id;
// RAW entries carry none. The returned entry is not primary; promotion
// happens when the entry joins a keyset.
func (m *Manager) GenerateEntry(alg Algorithm, prefix OutputPrefix) (Entry, error) {
	if err := ValidateAlgorithm(alg); err != nil {
		return Entry{}, err
	}
	if prefix != PrefixTink && prefix != PrefixRaw {
		return Entry{}, errors.Newf(errors.ErrCodeKeyInvalid, "unsupported output prefix %q", string(prefix))
	}

	material := make([]byte, alg.RecommendedKeySize())
	if _, err := io.ReadFull(m.rand, material); err != nil {
		return Entry{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to read random key material")
	}

	entry := Entry{
		Material:  material,
		Algorithm: alg,
		Prefix:    prefix,
	}
	if prefix == PrefixTink {
		entry.KeyID = uuid.NewString()
	}
	return entry, nil
}

// ValidateEntry enforces the key invariants. It runs at generation time and
// again whenever an externally supplied key enters the system; key length and
// algorithm are never trusted implicitly.
func ValidateEntry(e Entry) error {
	if err := ValidateAlgorithm(e.Algorithm); err != nil {
		return err
	}
	if len(e.Material) < MinKeySize {
		return errors.Newf(errors.ErrCodeKeyInvalid, "key material is %d bytes, minimum is %d", len(e.Material), MinKeySize)
	}
	switch e.Prefix {
	case PrefixTink:
		if e.KeyID == "" {
			return errors.New(errors.ErrCodeKeyInvalid, "TINK entry requires a key id")
		}
	case PrefixRaw:
		if e.KeyID != "" {
			return errors.New(errors.ErrCodeKeyInvalid, "RAW entry must not carry a key id")
		}
	default:
		return errors.Newf(errors.ErrCodeKeyInvalid, "unsupported output prefix %q", string(e.Prefix))
	}
	return nil
}
