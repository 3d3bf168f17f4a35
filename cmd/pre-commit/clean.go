// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCleanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the store directory",
		Long:  "Remove the store directory, including every installed hook environment and the error log.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.session(cmd.Context()); err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			if _, err := os.Stat(st.Dir()); err == nil {
				if err := st.Clean(); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "Cleaned %s.\n", st.Dir())
			}
			return nil
		},
	}
}
