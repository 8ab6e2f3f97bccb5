package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/regtrace/regtrace/internal/app/dto"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/memory"
)

// NewScanCmd creates the offline drift scan command
func NewScanCmd() *cobra.Command {
	var (
		oldCatalog string
		newCatalog string
		workspace  string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a drift scan for one version transition",
		Long: `Loads two catalog files and a workspace file, then runs the drift
scan as if the new version were being activated. Findings print as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w := newWorkbench()

			oldVersion, err := w.loadCatalog(ctx, oldCatalog)
			if err != nil {
				return err
			}
			newVersion, err := w.loadCatalog(ctx, newCatalog)
			if err != nil {
				return err
			}
			if err := w.loadWorkspace(ctx, workspace, oldVersion.ID); err != nil {
				return err
			}

			engine := drift.NewEngine(memory.NewDriftRepository(), w.mappings, w.library,
				w.versions, crosswalk.NewMatcher(crosswalk.MatcherConfig{}), drift.EngineConfig{}, w.logger)

			controls, err := w.controls.List(ctx)
			if err != nil {
				return err
			}
			findings, err := engine.DetectDrift(ctx, oldVersion.ID, newVersion.ID, controls, w.answers)
			if err != nil {
				return err
			}
			return printJSON(dto.NewDriftViews(findings, time.Now().UTC()))
		},
	}

	cmd.Flags().StringVar(&oldCatalog, "old", "", "catalog file of the current version")
	cmd.Flags().StringVar(&newCatalog, "new", "", "catalog file of the incoming version")
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace file with controls, answers and mappings")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}
