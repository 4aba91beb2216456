package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/reconciler"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	UserID string
	Token  string
}

// NewReconcileCommand creates the reconcile command, which merges a profile's
// cart into an account's server-side cart as a login would.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge a profile's cart into an account",
		Long: `Push every line item of the profile's cart to the commerce API using the
given access token, then remove the pushed items from the local cart. Items
that fail to merge are reported; the command exits 1 when any did.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDeps(cmd.Context(), func(deps *Deps) error {
				res := deps.Reconciler.Reconcile(cmd.Context(), opts.Profile, reconciler.Session{
					UserID: opts.UserID,
					Token:  opts.Token,
				})

				out := cmd.OutOrStdout()
				var err error
				if opts.Format == "json" {
					err = writeJSON(out, res)
				} else {
					_, err = fmt.Fprintf(out, "%s: %d synced, %d skipped, %d failed\n",
						res.State, res.Synced, res.Skipped, res.Failed)
					for _, msg := range res.Errors {
						fmt.Fprintf(out, "  %s\n", msg)
					}
				}
				if err != nil {
					return err
				}
				if res.State == reconciler.StatePartiallyFailed {
					return WrapExitError(ExitFailure, "some items failed to merge", res.Err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "account access token (required)")
	_ = cmd.MarkFlagRequired("token")
	cmd.Flags().StringVar(&opts.UserID, "user", "", "account user id, for logs and events")

	return cmd
}
