package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steven3002/feedpager-go/feed"
)

// NewSearchCommand walks search results.
func NewSearchCommand(a *app) *cobra.Command {
	f := &runFlags{}
	var filter string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fetch search results for a query",
		Args:  cobra.ExactArgs(1),
		Example: `  feedpager search '#golang' --filter latest --pages 5
  feedpager search 'from:golang' --export-dir out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				sf, ok := feed.ParseSearchFilter(filter)
				if !ok {
					return fmt.Errorf("unknown search filter %q", filter)
				}
				cfg := f.config()
				if err := a.resume(ctx, f, &cfg); err != nil {
					return err
				}
				p, err := a.client.SearchTweets(args[0], sf, cfg, a.observers(f)...)
				if err != nil {
					return err
				}
				return a.walk(cmd, p, f)
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&filter, "filter", "top", "top, latest, users, photos or videos")
	return cmd
}
