// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stacklok/gamma/pkg/gamma"
)

// imageURLBuilders maps "<kind> <variant>" to the endpoint builder.
var imageURLBuilders = map[string]func(gamma.Endpoints, string) string{
	"user avatar": func(e gamma.Endpoints, id string) string {
		return e.UserAvatar(gamma.UserID(id))
	},
	"group avatar": func(e gamma.Endpoints, id string) string {
		return e.GroupAvatar(gamma.GroupID(id))
	},
	"group banner": func(e gamma.Endpoints, id string) string {
		return e.GroupBanner(gamma.GroupID(id))
	},
	"super-group avatar": func(e gamma.Endpoints, id string) string {
		return e.SuperGroupAvatar(gamma.SuperGroupID(id))
	},
	"super-group banner": func(e gamma.Endpoints, id string) string {
		return e.SuperGroupBanner(gamma.SuperGroupID(id))
	},
}

func newImageURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "image-url <kind> <variant> <id>",
		Short: "Print the URL of an avatar or banner image",
		Long: `Print the URL of an avatar or banner image. No request is made.

Supported combinations:
  ` + strings.Join(imageKinds(), "\n  ") + `

Example:
  gamma image-url group banner 11111111-1111-1111-1111-111111111111`,
		Args: cobra.ExactArgs(3),
		RunE: imageURLCmdFunc,
	}
}

func imageURLCmdFunc(cmd *cobra.Command, args []string) error {
	key := args[0] + " " + args[1]
	build, ok := imageURLBuilders[key]
	if !ok {
		return fmt.Errorf("unsupported image %q (supported: %s)", key, strings.Join(imageKinds(), ", "))
	}
	if _, err := uuid.Parse(args[2]); err != nil {
		return fmt.Errorf("invalid ID %q: %w", args[2], err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), build(cfg.Endpoints(), args[2]))
	return err
}

func imageKinds() []string {
	kinds := make([]string, 0, len(imageURLBuilders))
	for k := range imageURLBuilders {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
