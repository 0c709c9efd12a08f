package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SelectFlags `embed:""`

	Output      string `short:"o" help:"Output directory (overrides build.output_dir)"`
	History     string `help:"SQLite build history database (overrides build.history_db)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file"`
	ReportDir   string `name:"report-dir" help:"Write build-report.json into this directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	_, err = RunBuild(g.context(), g.stdout(), cfg, b)
	return err
}

// options converts the flags into build options.
func (s SelectFlags) options() build.Options {
	return build.Options{
		Collections:   s.Collection,
		Languages:     s.Language,
		IncludeDrafts: s.Drafts,
		Concurrency:   s.Concurrency,
	}
}

// RunBuild executes one build with the optional history store, metrics file
// and report directory wired in, and prints the summary to out.
func RunBuild(ctx context.Context, out io.Writer, cfg *config.Config, b *BuildCmd) (*build.Report, error) {
	opts := b.options()
	opts.OutputDir = b.Output
	opts.ReportDir = b.ReportDir

	if dbPath := firstNonEmpty(b.History, cfg.Resolve(cfg.Build.HistoryDB)); dbPath != "" {
		store, err := history.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("Failed to close history store", logfields.Error(cerr))
			}
		}()
		opts.History = store
	}

	metricsFile := firstNonEmpty(b.MetricsFile, cfg.Resolve(cfg.Build.MetricsFile))
	var rec *metrics.PrometheusRecorder
	if metricsFile != "" {
		rec = metrics.NewPrometheusRecorder(nil)
		opts.Recorder = rec
	}

	builder, err := build.New(cfg, opts)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(out, "Building %s into %s\n", cfg.Title, builder.OutputDir())
	report, err := builder.Build(ctx)

	if rec != nil {
		if werr := metrics.WriteTextfile(rec.Registry(), metricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(metricsFile), logfields.Error(werr))
		}
	}
	if report != nil {
		printReport(out, report)
	}
	return report, err
}

func printReport(out io.Writer, r *build.Report) {
	for _, w := range r.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %v\n", w)
	}
	_, _ = fmt.Fprintln(out, r.Summary())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
