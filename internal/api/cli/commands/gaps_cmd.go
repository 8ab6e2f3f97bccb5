package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/regtrace/regtrace/internal/domain/gap"
)

// NewGapsCmd creates the offline gap recalculation command
func NewGapsCmd() *cobra.Command {
	var (
		catalog   string
		workspace string
	)

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Run a gap pass over one catalog and workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w := newWorkbench()

			version, err := w.loadCatalog(ctx, catalog)
			if err != nil {
				return err
			}
			if err := w.loadWorkspace(ctx, workspace, version.ID); err != nil {
				return err
			}

			reqs, err := w.requirements.ListByVersion(ctx, version.ID)
			if err != nil {
				return err
			}
			mappings, err := w.mappings.ListAll(ctx)
			if err != nil {
				return err
			}

			detector := gap.NewDetector(w.gaps, gap.DetectorConfig{}, w.logger)
			gaps, err := detector.Recalculate(ctx, version.ID, reqs, mappings)
			if err != nil {
				return err
			}
			return printJSON(gaps)
		},
	}

	cmd.Flags().StringVar(&catalog, "catalog", "", "catalog file")
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace file with controls, answers and mappings")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}
