package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/reconciler"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/service"
)

// Deps are the services a command operates on.
type Deps struct {
	Carts      *service.CartService
	Reconciler *reconciler.Reconciler
	Close      func() error
}

// Opener connects Deps. Commands call it lazily so that --help works without
// a reachable store.
type Opener func(ctx context.Context) (*Deps, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Profile string
	open    Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for cartctl.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Inspect and repair storefront carts",
		Long:  "cartctl reads and modifies anonymous storefront carts directly in the configured ledger store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "browser profile id (X-Session-ID)")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))

	return cmd
}

// withDeps opens the dependencies, runs fn and closes them again.
func (o *RootOptions) withDeps(ctx context.Context, fn func(*Deps) error) error {
	if o.Profile == "" {
		return NewExitError(ExitCommandError, "--profile is required")
	}
	deps, err := o.open(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open cart store", err)
	}
	defer func() {
		if deps.Close != nil {
			_ = deps.Close()
		}
	}()
	return fn(deps)
}
