package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/regtrace/regtrace/internal/domain/scoring"
	"github.com/regtrace/regtrace/pkg/types"
)

// NewScoreCmd creates the offline scoring command
func NewScoreCmd() *cobra.Command {
	var (
		catalog   string
		workspace string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute framework, domain and weighted scores",
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

			mappings, err := w.mappings.ListByVersion(ctx, version.ID)
			if err != nil {
				return err
			}
			controls, err := w.controls.List(ctx)
			if err != nil {
				return err
			}

			answers := func(controlID string) (types.AnswerValue, bool) {
				a, ok := w.answers.Answer(ctx, controlID)
				return a.Value, ok
			}

			return printJSON(map[string]interface{}{
				"framework": scoring.FrameworkPercentage(version.ID, mappings, answers),
				"domains":   scoring.GroupByDomain(mappings, controls, answers),
				"weighted":  scoring.ComputeWeightedScore(controls, answers),
			})
		},
	}

	cmd.Flags().StringVar(&catalog, "catalog", "", "catalog file")
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace file with controls, answers and mappings")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}
