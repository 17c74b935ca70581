// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openchami/macsmith/pkg/keys"
	"github.com/openchami/macsmith/pkg/tokenservice"
)

var (
	subject      string
	customClaims []string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Issue a signed token from the keyset's primary key",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		custom := make(map[string]interface{}, len(customClaims))
		for _, claim := range customClaims {
			name, value, ok := strings.Cut(claim, "=")
			if !ok {
				return fmt.Errorf("invalid claim %q, expected name=value", claim)
			}
			custom[name] = value
		}

		token, err := service.Issue(subject, custom)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&subject, "subject", "", "Subject of the token")
	signCmd.Flags().StringArrayVar(&customClaims, "claim", nil, "Custom claim as name=value (repeatable)")
	signCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(signCmd)
}

// newService builds a token service from the config file and keyset flags
func newService() (*tokenservice.Service, error) {
	fileConfig, err := tokenservice.LoadFileConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	path := keysetPath
	if fileConfig.KeysetPath != "" && !rootCmd.PersistentFlags().Changed("keyset") {
		path = fileConfig.KeysetPath
	}
	keyset, err := keys.LoadKeyset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyset: %w", err)
	}

	serviceConfig, err := fileConfig.ServiceConfig()
	if err != nil {
		return nil, err
	}
	return tokenservice.NewService(keyset, serviceConfig)
}
