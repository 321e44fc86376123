package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Exporter serialises accumulated items to a named file and returns its
// path.
type Exporter[T Item] interface {
	Export(name string, items []T) (string, error)
}

// Export hands the accumulated items to e. The export is named after the
// query for feeds that provide one, otherwise after the owner of the first
// item.
func (p *Paginator[T]) Export(e Exporter[T]) (string, error) {
	name, err := p.ExportName()
	if err != nil {
		return "", err
	}
	return e.Export(name, p.Items())
}

// ExportName derives the export name without exporting.
func (p *Paginator[T]) ExportName() (string, error) {
	if n, ok := p.fetcher.(ExportNamer); ok {
		if name := n.ExportName(); name != "" {
			return name, nil
		}
	}
	if len(p.items) == 0 {
		return "", ErrNothingToExport
	}
	if o, ok := any(p.items[0]).(Owned); ok && o.Owner() != "" {
		return o.Owner(), nil
	}
	return "", fmt.Errorf("%w: first item has no owner", ErrNothingToExport)
}

var tweetColumns = []string{
	"id", "created_at", "author_id", "author_username", "author_name",
	"text", "in_reply_to_id", "repost", "likes", "reposts",
}

// CSVExporter writes tweets as <Dir>/<name>.csv, replacing any previous
// export of the same name.
type CSVExporter struct {
	Dir string
}

func (e CSVExporter) Export(name string, items []*Tweet) (string, error) {
	if name == "" {
		return "", ErrNothingToExport
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tweetColumns); err != nil {
		return "", fmt.Errorf("write CSV header: %w", err)
	}
	for _, t := range items {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format(time.RFC3339)
		}
		row := []string{
			t.ID, created, t.AuthorID, t.AuthorUsername, t.AuthorName,
			t.Text, t.InReplyToID, strconv.FormatBool(t.Repost),
			strconv.Itoa(t.Likes), strconv.Itoa(t.Reposts),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, f.Close()
}

var _ Exporter[*Tweet] = CSVExporter{}
