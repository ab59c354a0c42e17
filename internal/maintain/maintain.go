// Package maintain implements the vault maintenance operations run from the
// CLI: renaming legacy slug files, backfilling headers, rewriting wiki-links
// after renames, and model-assisted reclassification.
package maintain

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
)

// Options selects which operations run. Operations always execute in the
// fixed order reclassify, fix headers, rename, update links: header fixes
// settle titles before renames, and link updates need the rename map.
type Options struct {
	Reclassify  bool
	FixHeaders  bool
	Rename      bool
	UpdateLinks bool
	DryRun      bool
}

// Summary reports what each operation touched.
type Summary struct {
	Reclassified int
	HeadersFixed int
	Renamed      int
	LinksUpdated int
	RenameMap    map[string]string
}

// Runner executes maintenance passes over a vault.
type Runner struct {
	vault  *vault.Vault
	model  llm.Model
	logger *slog.Logger
}

// NewRunner builds a maintenance runner. model may be nil when reclassify is
// not requested.
func NewRunner(v *vault.Vault, model llm.Model, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{vault: v, model: model, logger: logger}
}

// Run executes the selected operations and returns a summary.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary

	if opts.DryRun {
		r.logger.Info("dry run, no files will be modified")
	}

	if opts.Reclassify {
		if r.model == nil {
			r.logger.Error("reclassify requested but no model configured, skipping")
		} else {
			n, err := r.ReclassifyNotes(ctx, opts.DryRun)
			if err != nil {
				return sum, err
			}
			sum.Reclassified = n
		}
	}

	if opts.FixHeaders {
		n, err := r.FixHeaders(opts.DryRun)
		if err != nil {
			return sum, err
		}
		sum.HeadersFixed = n
	}

	if opts.Rename {
		renames, err := r.RenameToTitleCase(opts.DryRun)
		if err != nil {
			return sum, err
		}
		sum.Renamed = len(renames)
		sum.RenameMap = renames
	}

	if opts.UpdateLinks {
		n, err := r.UpdateWikiLinks(sum.RenameMap, opts.DryRun)
		if err != nil {
			return sum, err
		}
		sum.LinksUpdated = n
	}

	r.logger.Info("maintenance complete",
		slog.Int("reclassified", sum.Reclassified),
		slog.Int("headers_fixed", sum.HeadersFixed),
		slog.Int("renamed", sum.Renamed),
		slog.Int("links_updated", sum.LinksUpdated))
	return sum, nil
}

// contentFolders are the category folders maintenance operates on.
// Attachments hold binaries, not notes.
func contentFolders() []string {
	var out []string
	for _, c := range vault.CategoryOrder {
		if c != vault.CategoryAttachments {
			out = append(out, c)
		}
	}
	return out
}

func sortedPaths(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}
