// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/gamma/pkg/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the gamma CLI configuration",
		Long:  "The config command provides subcommands to read and update the configuration file.",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE:  configShowCmdFunc,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE:  configGetCmdFunc,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the configuration file.

Example:
  gamma config set client-api-authorization "pre-shared-key"
  gamma config set scopes "openid profile email"`,
		Args: cobra.ExactArgs(2),
		RunE: configSetCmdFunc,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "unset <key>",
		Short: "Reset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE:  configUnsetCmdFunc,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the path of the configuration file and whether it exists",
		Args:  cobra.NoArgs,
		RunE:  configPathCmdFunc,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "list-fields",
		Short: "List the keys accepted by get, set and unset",
		Args:  cobra.NoArgs,
		RunE:  configListFieldsCmdFunc,
	})

	return configCmd
}

func configShowCmdFunc(cmd *cobra.Command, _ []string) error {
	cfg, err := configStore(cmd).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	redacted := cfg.Redacted()

	return printResult(cmd, redacted, func(w io.Writer) error {
		names := config.ListConfigFields()
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			value, err := redacted.GetValue(name)
			if err != nil {
				return err
			}
			rows = append(rows, []string{name, value})
		}
		return renderTable(w, []string{"Key", "Value"}, rows)
	})
}

func configGetCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := configStore(cmd).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	value, err := cfg.GetValue(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func configSetCmdFunc(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	err := configStore(cmd).Update(cmd.Context(), func(c *config.Config) error {
		return c.SetValue(key, value)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s\n", key)
	return nil
}

func configUnsetCmdFunc(cmd *cobra.Command, args []string) error {
	key := args[0]
	err := configStore(cmd).Update(cmd.Context(), func(c *config.Config) error {
		return c.UnsetValue(key)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully unset %s\n", key)
	return nil
}

// configPathResult is what `config path` prints in json and yaml.
type configPathResult struct {
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

func configPathCmdFunc(cmd *cobra.Command, _ []string) error {
	store := configStore(cmd)
	path, err := store.Path()
	if err != nil {
		return err
	}
	exists, err := store.Exists(cmd.Context())
	if err != nil {
		return err
	}

	return printResult(cmd, configPathResult{Path: path, Exists: exists}, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
		if !exists {
			fmt.Fprintln(cmd.ErrOrStderr(), "The file does not exist yet; it is created on first use.")
		}
		return nil
	})
}

func configListFieldsCmdFunc(cmd *cobra.Command, _ []string) error {
	names := config.ListConfigFields()
	if GetStringFlagOrEmpty(cmd, flagOutput) != FormatTable {
		return printResult(cmd, names, nil)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
	return err
}
