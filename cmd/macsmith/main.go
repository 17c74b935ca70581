// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openchami/macsmith/pkg/logging"
	"github.com/openchami/macsmith/pkg/tokenservice"
)

var (
	configPath string
	keysetPath string
	algorithm  string
)

var rootCmd = &cobra.Command{
	Use:   "macsmith",
	Short: "MacSmith - HMAC token signing service",
	Long:  `MacSmith issues and verifies HMAC-signed JWTs with keyset-based key rotation.`,
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Generate a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		config := tokenservice.DefaultFileConfig()
		if err := tokenservice.SaveFileConfig(config, configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Generated configuration file at: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&keysetPath, "keyset", "keyset.yaml", "Path to keyset file")
}

func main() {
	logging.ConfigureFromEnv()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
