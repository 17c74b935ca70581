// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openchami/macsmith/pkg/errors"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify a token against the keyset and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		claims, err := service.Verify(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "verification failed: %s\n", errors.GetErrorCode(err))
			return err
		}

		out := map[string]interface{}{
			"algorithm": claims.Algorithm(),
		}
		if kid, ok := claims.KeyID(); ok {
			out["key_id"] = kid
		}
		for _, name := range []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"} {
			if v, ok := claims.Claim(name); ok {
				out[name] = v
			}
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render claims: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
