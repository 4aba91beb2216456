package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClearCommand creates the clear command.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty a profile's cart and delete it from storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDeps(cmd.Context(), func(deps *Deps) error {
				view, err := deps.Carts.ClearCart(cmd.Context(), opts.Profile)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to clear cart", err)
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared cart for profile %s\n", opts.Profile)
				return err
			})
		},
	}
}
