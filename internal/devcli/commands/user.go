package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/steven3002/feedpager-go/internal/devcli"
)

// NewUserCommand resolves a username to its profile.
func NewUserCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Resolve a username to its numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				u, err := a.client.ResolveUser(ctx, args[0])
				if err != nil {
					return err
				}
				return devcli.PrintJSON(cmd.OutOrStdout(), u)
			})
		},
	}
}
