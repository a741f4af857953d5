package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(permissionsCmd)
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Print the permission catalog grouped by module",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		grouped := permission.Grouped()

		for _, module := range permission.Modules() {
			if _, err := fmt.Fprintf(out, "%s\n", module); err != nil {
				return err
			}

			for _, def := range grouped[module] {
				if _, err := fmt.Fprintf(out, "  %-24s %s\n", def.Key, def.Label); err != nil {
					return err
				}
			}
		}

		return nil
	},
}
