// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openchami/macsmith/pkg/keys"
	"github.com/openchami/macsmith/pkg/logging"
)

var rawPrefix bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new keyset with a single primary key",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := keys.PrefixTink
		if rawPrefix {
			prefix = keys.PrefixRaw
		}

		manager := keys.NewManager()
		entry, err := manager.GenerateEntry(keys.Algorithm(algorithm), prefix)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		entry.Primary = true

		keyset, err := keys.NewKeyset(entry)
		if err != nil {
			return fmt.Errorf("failed to build keyset: %w", err)
		}
		if err := keys.SaveKeyset(keyset, keysetPath); err != nil {
			return fmt.Errorf("failed to save keyset: %w", err)
		}

		logging.NewStructuredLogger("keygen").LogKeyOperation("generate", algorithm, keyset.Len())
		fmt.Printf("Generated keyset at: %s\n", keysetPath)
		return nil
	},
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate a keyset: add a new primary key, demote the old one",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyset, err := keys.LoadKeyset(keysetPath)
		if err != nil {
			return fmt.Errorf("failed to load keyset: %w", err)
		}

		prefix := keys.PrefixTink
		if rawPrefix {
			prefix = keys.PrefixRaw
		}

		manager := keys.NewManager()
		entry, err := manager.GenerateEntry(keys.Algorithm(algorithm), prefix)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}

		rotated, err := keyset.Rotate(entry)
		if err != nil {
			return fmt.Errorf("failed to rotate keyset: %w", err)
		}
		if err := keys.SaveKeyset(rotated, keysetPath); err != nil {
			return fmt.Errorf("failed to save keyset: %w", err)
		}

		logging.NewStructuredLogger("keygen").LogKeyOperation("rotate", algorithm, rotated.Len())
		fmt.Printf("Rotated keyset at: %s (%d keys)\n", keysetPath, rotated.Len())
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{keygenCmd, rotateCmd} {
		cmd.Flags().StringVar(&algorithm, "algorithm", "HS256", "HMAC algorithm (HS256, HS384, HS512)")
		cmd.Flags().BoolVar(&rawPrefix, "raw", false, "Generate a RAW key (no key id in signed tokens)")
	}

	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(rotateCmd)
}
