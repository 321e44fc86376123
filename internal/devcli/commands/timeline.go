package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewTimelineCommand walks a user's timeline.
func NewTimelineCommand(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "timeline <user id or username>",
		Short: "Fetch the posts of a user",
		Args:  cobra.ExactArgs(1),
		Example: `  feedpager timeline golang --pages 3
  feedpager timeline 783214 --replies --export-dir out/
  feedpager timeline golang --pages 50 --resume-key golang --redis-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				cfg := f.config()
				if err := a.resume(ctx, f, &cfg); err != nil {
					return err
				}
				p, err := a.client.UserTweets(ctx, args[0], cfg, a.observers(f)...)
				if err != nil {
					return err
				}
				return a.walk(cmd, p, f)
			})
		},
	}
	f.bind(cmd)
	return cmd
}
