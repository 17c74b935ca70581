// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package keys

import (
	"github.com/openchami/macsmith/pkg/errors"
)

// Keyset is an immutable ordered collection of key entries with exactly one
// primary. Rotation never mutates a keyset: it constructs a new one and the
// caller atomically swaps its reference.
type Keyset struct {
	entries []Entry
}

// NewKeyset validates the entries and builds a keyset. It requires at least
// one entry, exactly one primary, and unique key ids among TINK entries.
func NewKeyset(entries ...Entry) (*Keyset, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeKeyInvalid, "keyset requires at least one entry")
	}

	primaries := 0
	seenIDs := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return nil, err
		}
		if e.Primary {
			primaries++
		}
		if e.Prefix == PrefixTink {
			if seenIDs[e.KeyID] {
				return nil, errors.Newf(errors.ErrCodeKeyInvalid, "duplicate key id %q in keyset", e.KeyID)
			}
			seenIDs[e.KeyID] = true
		}
	}
	if primaries != 1 {
		return nil, errors.Newf(errors.ErrCodeKeyInvalid, "keyset requires exactly one primary entry, found %d", primaries)
	}

	ks := &Keyset{entries: make([]Entry, len(entries))}
	copy(ks.entries, entries)
	return ks, nil
}

// Len returns the number of entries
func (k *Keyset) Len() int {
	return len(k.entries)
}

// Entries returns a copy of the entries in keyset order
func (k *Keyset) Entries() []Entry {
	out := make([]Entry, len(k.entries))
	copy(out, k.entries)
	return out
}

// Primary returns the entry used for new signing operations
func (k *Keyset) Primary() Entry {
	for _, e := range k.entries {
		if e.Primary {
			return e
		}
	}
	// NewKeyset guarantees one primary; unreachable for a constructed keyset.
	return Entry{}
}

// Rotate returns a new keyset with the given entry prepended as primary and
// every existing entry demoted. The receiver is unchanged.
func (k *Keyset) Rotate(e Entry) (*Keyset, error) {
	e.Primary = true
	entries := make([]Entry, 0, len(k.entries)+1)
	entries = append(entries, e)
	for _, old := range k.entries {
		old.Primary = false
		entries = append(entries, old)
	}
	return NewKeyset(entries...)
}

// Remove returns a new keyset without the entry matching the given key id.
// Removing the primary or the last entry is rejected; demote first by
// rotating a new primary in.
func (k *Keyset) Remove(keyID string) (*Keyset, error) {
	entries := make([]Entry, 0, len(k.entries))
	found := false
	for _, e := range k.entries {
		if e.Prefix == PrefixTink && e.KeyID == keyID {
			if e.Primary {
				return nil, errors.Newf(errors.ErrCodeKeyInvalid, "cannot remove primary entry %q", keyID)
			}
			found = true
			continue
		}
		entries = append(entries, e)
	}
	if !found {
		return nil, errors.Newf(errors.ErrCodeKeyInvalid, "no entry with key id %q", keyID)
	}
	return NewKeyset(entries...)
}
