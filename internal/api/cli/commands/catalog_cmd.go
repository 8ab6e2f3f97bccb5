package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command group
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with framework catalog files",
	}
	cmd.AddCommand(catalogValidateCmd())
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Parse a catalog file and report its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			w := newWorkbench()

			version, err := w.loadCatalog(ctx, args[0])
			if err != nil {
				return err
			}
			reqs, err := w.requirements.ListByVersion(ctx, version.ID)
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"framework_id": version.FrameworkID,
				"version_code": version.VersionCode,
				"name":         version.Name,
				"effective":    version.EffectiveDate,
				"requirements": len(reqs),
			})
		},
	}
}
