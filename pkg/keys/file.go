// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package keys

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileKeyset is the on-disk representation of a keyset. Key material is
// base64-encoded by the YAML codec.
type fileKeyset struct {
	Keys []fileEntry `yaml:"keys"`
}

type fileEntry struct {
	Material  []byte `yaml:"material"`
	Algorithm string `yaml:"algorithm"`
	Prefix    string `yaml:"prefix"`
	KeyID     string `yaml:"key_id,omitempty"`
	Primary   bool   `yaml:"primary,omitempty"`
}

// SaveKeyset writes the keyset to a YAML file readable only by the owner
func SaveKeyset(ks *Keyset, path string) error {
	fk := fileKeyset{Keys: make([]fileEntry, 0, ks.Len())}
	for _, e := range ks.Entries() {
		fk.Keys = append(fk.Keys, fileEntry{
			Material:  e.Material,
			Algorithm: string(e.Algorithm),
			Prefix:    string(e.Prefix),
			KeyID:     e.KeyID,
			Primary:   e.Primary,
		})
	}

	data, err := yaml.Marshal(&fk)
	if err != nil {
		return fmt.Errorf("failed to marshal keyset: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create keyset directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keyset file: %w", err)
	}
	return nil
}

// LoadKeyset reads a keyset from a YAML file. Every entry is re-validated on
// load; a file edited by hand does not bypass the key invariants.
func LoadKeyset(path string) (*Keyset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyset file: %w", err)
	}

	var fk fileKeyset
	if err := yaml.Unmarshal(data, &fk); err != nil {
		return nil, fmt.Errorf("failed to parse keyset file: %w", err)
	}

	entries := make([]Entry, 0, len(fk.Keys))
	for _, f := range fk.Keys {
		entries = append(entries, Entry{
			Material:  f.Material,
			Algorithm: Algorithm(f.Algorithm),
			Prefix:    OutputPrefix(f.Prefix),
			KeyID:     f.KeyID,
			Primary:   f.Primary,
		})
	}
	return NewKeyset(entries...)
}
