package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitegen.yaml" env:"SITEGEN_CONFIG"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Check   CheckCmd   `cmd:"" help:"Parse, resolve and link content without writing output"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever project files change"`
	History HistoryCmd `cmd:"" help:"List recent builds from the history database"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel returns debug when verbose is set, otherwise the level named
// by SITEGEN_LOG_LEVEL, defaulting to info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SITEGEN_LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SelectFlags narrow a build to part of the site.
type SelectFlags struct {
	Collection  []string `name:"collection" help:"Only process these collections" sep:","`
	Language    []string `name:"language" short:"l" help:"Only process these language codes" sep:","`
	Drafts      bool     `help:"Include draft content"`
	Concurrency int      `help:"Parallel workers (0 uses build.concurrency)"`
}

func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}
