package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	DB    string `name:"db" help:"SQLite build history database (overrides build.history_db)"`
	Limit int    `short:"n" help:"Number of builds to list" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dbPath := firstNonEmpty(h.DB, cfg.Resolve(cfg.Build.HistoryDB))
	if dbPath == "" {
		return errors.ValidationError("no history database configured (set build.history_db or --db)").Build()
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(g.context(), h.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(g.stdout(), "No builds recorded")
		return nil
	}
	renderHistory(g.stdout(), entries)
	return nil
}

var historyHeader = []string{"Build", "Started", "Duration", "Outcome", "Records", "Files", "Error"}

func renderHistory(w io.Writer, entries []history.Entry) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.BuildID),
			e.StartedAt.Local().Format(time.DateTime),
			e.Duration.Round(time.Millisecond).String(),
			e.Outcome,
			strconv.Itoa(e.Records),
			strconv.Itoa(e.Files),
			e.Error,
		})
	}
	table.Header(historyHeader)
	_ = table.Bulk(rows)
	_ = table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
