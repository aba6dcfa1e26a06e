// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/gamma/pkg/gamma"
	"github.com/stacklok/gamma/pkg/logger"
)

// maxConcurrentRequests bounds the requests `users get` has in flight.
const maxConcurrentRequests = 4

func newUsersCommand() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Read users from the client API",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE:  usersListCmdFunc,
	})
	usersCmd.AddCommand(&cobra.Command{
		Use:   "get <user-id>...",
		Short: "Get one or more users by ID",
		Long: `Get one or more users by ID. The users are fetched concurrently and
printed in the order given.

Example:
  gamma users get 11111111-1111-1111-1111-111111111111`,
		Args: cobra.MinimumNArgs(1),
		RunE: usersGetCmdFunc,
	})

	return usersCmd
}

func usersListCmdFunc(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	users, err := client.GetUsers(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, users, func(w io.Writer) error {
		return renderListTable(w, "No users found", userHeaders, userRows(users))
	})
}

func usersGetCmdFunc(cmd *cobra.Command, args []string) error {
	ids := make([]gamma.UserID, len(args))
	for i, arg := range args {
		id, err := parseUserID(arg)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	client, err := s.clientAPI()
	if err != nil {
		return err
	}

	users := make([]gamma.User, len(ids))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxConcurrentRequests)
	for i, id := range ids {
		g.Go(func() error {
			logger.Debugw("fetching user", "id", id)
			user, err := client.GetUser(ctx, id)
			if err != nil {
				return err
			}
			users[i] = *user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var data any = users
	if len(users) == 1 {
		data = users[0]
	}
	return printResult(cmd, data, func(w io.Writer) error {
		return renderTable(w, userHeaders, userRows(users))
	})
}

var userHeaders = []string{"ID", "CID", "Nick", "Name", "Acceptance Year"}

func userRows(users []gamma.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			string(u.ID),
			u.CID,
			u.Nick,
			fmt.Sprintf("%s %s", u.FirstName, u.LastName),
			strconv.Itoa(u.AcceptanceYear),
		})
	}
	return rows
}
