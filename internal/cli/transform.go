package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/jobscript/internal/transform"
	"github.com/me/jobscript/pkg/jobtmpl"
)

func newTransformCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "transform <name[,name...]> <value>",
		Short: "Apply a transform chain to a literal value",
		Example: `  jobscript transform memory_to_mb 16G
  jobscript transform basename,remove_all_extensions /data/mesh.tar.gz`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if list {
				for _, name := range transform.Names() {
					fmt.Fprintln(w, name)
				}
				return nil
			}
			v, err := transform.ApplyChain(strings.Split(args[0], ","), jobtmpl.StringValue(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(w, v.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List the available transforms")
	return cmd
}
