package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/steven3002/feedpager-go/checkpoint"
	"github.com/steven3002/feedpager-go/feed"
	"github.com/steven3002/feedpager-go/internal/devcli"
)

// runFlags are shared by the feed walking commands.
type runFlags struct {
	pages     int
	replies   bool
	reposts   bool
	delay     time.Duration
	cursor    string
	exportDir string
	resumeKey string
}

func (f *runFlags) bind(cmd *cobra.Command) {
	def := feed.DefaultConfig()
	fs := cmd.Flags()
	fs.IntVar(&f.pages, "pages", def.Pages, "number of pages to fetch")
	fs.BoolVar(&f.replies, "replies", def.IncludeReplies, "keep replies")
	fs.BoolVar(&f.reposts, "reposts", def.IncludeReposts, "keep reposts")
	fs.DurationVar(&f.delay, "delay", def.Delay, "pause between page requests")
	fs.StringVar(&f.cursor, "cursor", "", "start from this cursor")
	fs.StringVar(&f.exportDir, "export-dir", "", "write a CSV export into this directory")
	fs.StringVar(&f.resumeKey, "resume-key", "", "save the cursor under this key and resume from it")
}

func (f *runFlags) config() feed.Config {
	return feed.Config{
		Pages:          f.pages,
		IncludeReplies: f.replies,
		IncludeReposts: f.reposts,
		Delay:          f.delay,
		StartCursor:    f.cursor,
	}
}

// resume applies a stored checkpoint unless an explicit cursor was given.
func (a *app) resume(ctx context.Context, f *runFlags, cfg *feed.Config) error {
	if f.resumeKey == "" || cfg.StartCursor != "" {
		return nil
	}
	ok, err := checkpoint.Resume(ctx, a.store, f.resumeKey, cfg)
	if err != nil {
		return err
	}
	if ok {
		a.log.WithField("cursor", cfg.StartCursor).Infof("resuming %q", f.resumeKey)
	}
	return nil
}

func (a *app) observers(f *runFlags) []feed.PaginatorOption {
	opts := []feed.PaginatorOption{feed.WithObserver(a.metrics)}
	if f.resumeKey != "" {
		opts = append(opts, feed.WithObserver(&checkpoint.Recorder{Store: a.store, Key: f.resumeKey, Log: a.log}))
	}
	return opts
}

// walkResult is printed when no export directory is given.
type walkResult struct {
	Subject       string        `json:"subject"`
	Cursor        string        `json:"cursor,omitempty"`
	HasMore       bool          `json:"has_more"`
	Requests      int           `json:"requests"`
	ParseFailures int           `json:"parse_failures"`
	Export        string        `json:"export,omitempty"`
	Items         []*feed.Tweet `json:"items"`
}

// walk drives p page by page, logging progress, then prints or exports the
// accumulated tweets. Items fetched before an error are still reported.
func (a *app) walk(cmd *cobra.Command, p *feed.Paginator[*feed.Tweet], f *runFlags) error {
	ctx := cmd.Context()
	var walkErr error
	for b, err := range p.Pages(ctx) {
		if err != nil {
			walkErr = err
			break
		}
		a.log.WithField("cursor", b.Snapshot.Cursor.Token).
			Infof("page %d: %d new, %d total", b.Snapshot.Requests, len(b.Items), len(b.Snapshot.Items))
	}

	res := walkResult{
		Subject:       p.Subject(),
		Cursor:        p.Cursor().Token,
		HasMore:       p.HasMore(),
		Requests:      p.Requests(),
		ParseFailures: p.ParseFailures(),
	}
	if f.exportDir != "" && p.Len() > 0 {
		path, err := p.Export(feed.CSVExporter{Dir: f.exportDir})
		if err != nil {
			return err
		}
		res.Export = path
		a.log.Infof("exported %d items to %s", p.Len(), path)
	} else {
		res.Items = p.Items()
	}
	if err := devcli.PrintJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	return walkErr
}
