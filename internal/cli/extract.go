package cli

import (
	"github.com/spf13/cobra"
)

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <path>",
		Short: "Print the structural record of a wireframe as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			doc, err := a.runner(false).Extract(path)
			if err != nil {
				return err
			}
			return writeJSON(a.out, doc.Record)
		},
	}
}
