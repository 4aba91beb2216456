package cli

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print a profile's cart and totals",
		Example: `  cartctl show --profile 3f2a9c
  cartctl show --profile 3f2a9c --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDeps(cmd.Context(), func(deps *Deps) error {
				view, err := deps.Carts.GetCart(cmd.Context(), opts.Profile)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to load cart", err)
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				return writeCartText(cmd.OutOrStdout(), view)
			})
		},
	}
}
