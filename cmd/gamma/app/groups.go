// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/gamma/pkg/gamma"
)

func newGroupsCommand() *cobra.Command {
	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Read groups from the client API",
	}

	groupsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all groups",
		Args:  cobra.NoArgs,
		RunE:  groupsListCmdFunc,
	})
	groupsCmd.AddCommand(&cobra.Command{
		Use:   "for <user-id>",
		Short: "List the groups a user is a member of, with the post they hold",
		Args:  cobra.ExactArgs(1),
		RunE:  groupsForCmdFunc,
	})

	return groupsCmd
}

func newSuperGroupsCommand() *cobra.Command {
	superGroupsCmd := &cobra.Command{
		Use:   "super-groups",
		Short: "Read super groups from the client API",
	}

	superGroupsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all super groups",
		Args:  cobra.NoArgs,
		RunE:  superGroupsListCmdFunc,
	})

	return superGroupsCmd
}

func groupsListCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	groups, err := client.GetGroups(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, groups, func(w io.Writer) error {
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{string(g.ID), g.Name, g.PrettyName, g.SuperGroup.PrettyName})
		}
		return renderListTable(w, "No groups found", []string{"ID", "Name", "Pretty Name", "Super Group"}, rows)
	})
}

func groupsForCmdFunc(cmd *cobra.Command, args []string) error {
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

	groups, err := client.GetGroupsFor(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printResult(cmd, groups, func(w io.Writer) error {
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{string(g.ID), g.PrettyName, g.SuperGroup.PrettyName, g.Post.EnName})
		}
		return renderListTable(w, "User is not a member of any group",
			[]string{"ID", "Group", "Super Group", "Post"}, rows)
	})
}

func superGroupsListCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	superGroups, err := client.GetSuperGroups(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, superGroups, func(w io.Writer) error {
		return renderListTable(w, "No super groups found",
			[]string{"ID", "Name", "Pretty Name", "Type"}, superGroupRows(superGroups))
	})
}

func superGroupRows(superGroups []gamma.SuperGroup) [][]string {
	rows := make([][]string, 0, len(superGroups))
	for _, sg := range superGroups {
		rows = append(rows, []string{string(sg.ID), sg.Name, sg.PrettyName, sg.Type})
	}
	return rows
}
