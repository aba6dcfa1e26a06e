// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/gamma/pkg/gamma"
)

func newAuthoritiesCommand() *cobra.Command {
	authoritiesCmd := &cobra.Command{
		Use:   "authorities",
		Short: "Read the authorities defined for this client",
	}

	authoritiesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every authority",
		Args:  cobra.NoArgs,
		RunE:  authoritiesListCmdFunc,
	})
	authoritiesCmd.AddCommand(&cobra.Command{
		Use:   "for <user-id>",
		Short: "List the authorities a user holds",
		Args:  cobra.ExactArgs(1),
		RunE:  authoritiesForCmdFunc,
	})

	return authoritiesCmd
}

func authoritiesListCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	authorities, err := client.GetAuthorities(cmd.Context())
	if err != nil {
		return err
	}
	return printAuthorities(cmd, authorities, "No authorities defined")
}

func authoritiesForCmdFunc(cmd *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	authorities, err := client.GetAuthoritiesFor(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printAuthorities(cmd, authorities, "User holds no authorities")
}

func printAuthorities(cmd *cobra.Command, authorities []gamma.ClientAuthority, empty string) error {
	return printResult(cmd, authorities, func(w io.Writer) error {
		rows := make([][]string, 0, len(authorities))
		for _, a := range authorities {
			rows = append(rows, []string{string(a)})
		}
		return renderListTable(w, empty, []string{"Authority"}, rows)
	})
}
