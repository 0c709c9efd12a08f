package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/build"
)

// CheckCmd implements the 'check' command. It fails on the same errors a
// build would, without touching the output directory.
type CheckCmd struct {
	SelectFlags `embed:""`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	opts := c.options()
	opts.Check = true

	builder, err := build.New(cfg, opts)
	if err != nil {
		return err
	}
	report, err := builder.Build(g.context())
	out := g.stdout()
	printReport(out, report)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Check passed: %d records, %d warnings\n", report.Records, len(report.Warnings))
	return nil
}
