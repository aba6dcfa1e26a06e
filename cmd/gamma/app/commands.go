// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the gamma command-line application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/gamma/pkg/logger"
)

// NewRootCmd creates a new root command for the gamma CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "gamma",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "gamma is a command-line client for the Gamma identity and membership API",
		Long: `gamma is a command-line client for Gamma (https://auth.chalmers.it).

It reads users, groups, super groups and authorities from the client API,
reads users with their memberships from the info API, and runs the OAuth2
authorization-code flow to look up the signed-in user.

Credentials are read from the config file (see "gamma config path") and can be
overridden with the GAMMA_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := viper.BindPFlag("debug", cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
				return fmt.Errorf("failed to bind debug flag: %w", err)
			}
			logger.InitializeWithEnv(envReader)
			return validateOutputFormat(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug logging")
	flags.String(flagConfig, "", "Path to the config file (default is $XDG_CONFIG_HOME/gamma/config.yaml)")
	flags.String(flagBaseURL, "", "Root URL of the Gamma instance (overrides base_url and GAMMA_BASE_URL)")
	flags.StringP(flagOutput, "o", FormatTable, "Output format (table, json or yaml)")

	rootCmd.AddCommand(newUsersCommand())
	rootCmd.AddCommand(newGroupsCommand())
	rootCmd.AddCommand(newSuperGroupsCommand())
	rootCmd.AddCommand(newAuthoritiesCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newOAuthCommand())
	rootCmd.AddCommand(newImageURLCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
