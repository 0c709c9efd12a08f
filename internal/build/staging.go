package build

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// stagingDir is the sibling directory a build writes into before promotion.
func stagingDir(outDir string) string { return outDir + "_stage" }

// beginStaging creates a fresh staging directory, removing leftovers from an
// interrupted build.
func (st *State) beginStaging() error {
	stage := stagingDir(st.outDir)
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("remove stale staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	st.stageDir = stage
	slog.Debug("Initialized staging directory", slog.String("staging", stage), slog.String("final", st.outDir))
	return nil
}

// finalizeStaging promotes the staging directory to the output location.
//  1. Move the existing output (if any) to <output>.prev.
//  2. Rename staging to output.
//  3. Remove the backup.
func (st *State) finalizeStaging() error {
	if st.stageDir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(st.stageDir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}

	prev := st.outDir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	if _, err := os.Stat(st.outDir); err == nil {
		if err := os.Rename(st.outDir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}
	if err := os.Rename(st.stageDir, st.outDir); err != nil {
		// Put the previous output back so the site stays servable.
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, st.outDir)
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	st.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	slog.Info("Promoted staging directory", logfields.Path(st.outDir))
	return nil
}

// abortStaging removes the staging directory after a failed build.
func (st *State) abortStaging() {
	if st.stageDir == "" {
		return
	}
	dir := st.stageDir
	st.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
		return
	}
	slog.Debug("Removed staging directory after abort", logfields.Path(dir))
}
