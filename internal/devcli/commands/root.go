package commands

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/steven3002/feedpager-go/checkpoint"
	"github.com/steven3002/feedpager-go/feed"
	"github.com/steven3002/feedpager-go/feed/feedmetrics"
	"github.com/steven3002/feedpager-go/internal/devcli"
)

// app is the state shared by all subcommands once the root pre-run has
// resolved the settings.
type app struct {
	settings devcli.Settings
	log      *logrus.Entry
	client   *feed.Client
	store    checkpoint.Store
	metrics  *feedmetrics.Observer
	closers  []devcli.Shutdown
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "feedpager",
		Short:         "Walk cursor-paginated timeline and search feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.Root())
		},
	}
	devcli.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		NewUserCommand(a),
		NewTimelineCommand(a),
		NewSearchCommand(a),
	)
	return rootCmd
}

func (a *app) open(ctx context.Context, root *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			_ = a.close(ctx)
		}
	}()
	s, err := devcli.LoadSettings(root.PersistentFlags())
	if err != nil {
		return err
	}
	a.settings = s
	a.log = devcli.SetupLogger(s.LogLevel, "cli")
	a.client = devcli.NewClient(s, devcli.SetupLogger(s.LogLevel, "feed"))

	shutdown, err := devcli.SetupTracing(ctx, s.OTLPEndpoint)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)

	reg := devcli.NewRegistry()
	if a.metrics, err = feedmetrics.New(reg); err != nil {
		return err
	}
	if shutdown, err = devcli.ServeMetrics(s.MetricsAddr, reg, a.log); err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)

	store, shutdown, err := devcli.OpenStore(ctx, s, a.log)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, shutdown)
	return nil
}

// run executes fn, then releases what open acquired.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) (err error) {
	defer func() {
		err = errors.Join(err, a.close(cmd.Context()))
	}()
	return fn(cmd.Context())
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](context.WithoutCancel(ctx)))
	}
	a.closers = nil
	return errors.Join(errs...)
}
