package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/regtrace/regtrace/internal/domain/compare"
)

// NewCompareCmd creates the requirement comparison command
func NewCompareCmd() *cobra.Command {
	var (
		oldCatalog string
		newCatalog string
		workspace  string
		code       string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Render one requirement side by side across two catalogs",
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
			if workspace != "" {
				if err := w.loadWorkspace(ctx, workspace, oldVersion.ID); err != nil {
					return err
				}
			}

			comparator := compare.NewComparator(w.library, w.mappings, w.answers)
			comparison, err := comparator.Compare(ctx, code, oldVersion.ID, newVersion.ID)
			if err != nil {
				return err
			}
			return printJSON(comparison)
		},
	}

	cmd.Flags().StringVar(&oldCatalog, "old", "", "catalog file of the current version")
	cmd.Flags().StringVar(&newCatalog, "new", "", "catalog file of the incoming version")
	cmd.Flags().StringVar(&workspace, "workspace", "", "optional workspace file for compliance projection")
	cmd.Flags().StringVar(&code, "code", "", "requirement code to compare")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
