// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stacklok/gamma/pkg/gamma"
)

func newInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Read extended user profiles from the info API",
	}

	infoCmd.AddCommand(&cobra.Command{
		Use:   "user <user-id>",
		Short: "Show a user together with every group membership",
		Args:  cobra.ExactArgs(1),
		RunE:  infoUserCmdFunc,
	})

	return infoCmd
}

func infoUserCmdFunc(cmd *cobra.Command, args []string) error {
	id, err := parseUserID(args[0])
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.infoAPI()
	if err != nil {
		return err
	}

	profile, err := client.GetUser(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printResult(cmd, profile, func(w io.Writer) error {
		if err := renderTable(w, userHeaders, userRows([]gamma.User{profile.User})); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return renderListTable(w, "User is not a member of any group",
			[]string{"Group", "Super Group", "Post", "Email Prefix", "Order"}, membershipRows(profile.Groups))
	})
}

func membershipRows(memberships []gamma.GroupMembership) [][]string {
	rows := make([][]string, 0, len(memberships))
	for _, m := range memberships {
		rows = append(rows, []string{
			m.Group.PrettyName,
			m.Group.SuperGroup.PrettyName,
			m.Post.EnName,
			m.Post.EmailPrefix,
			strconv.Itoa(m.Post.Order),
		})
	}
	return rows
}
