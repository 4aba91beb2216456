package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/service"
)

// Exit codes for cartctl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran but did not fully succeed
	ExitCommandError = 2 // bad flags or an unreachable store
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err, defaulting to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCartText(w io.Writer, view service.CartView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tVENDOR\tQTY\tPRICE\tLINE TOTAL")
	for _, item := range view.Ledger.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.VendorID, item.Quantity, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := view.Totals
	fmt.Fprintf(w, "\nitems:    %d\n", t.ItemCount)
	fmt.Fprintf(w, "subtotal: %s\n", t.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "shipping: %s\n", t.ShippingTotal.StringFixed(2))
	if t.CouponCode != nil {
		fmt.Fprintf(w, "coupon:   %s (-%s)\n", *t.CouponCode, t.DiscountTotal.StringFixed(2))
	}
	_, err := fmt.Fprintf(w, "total:    %s\n", t.Total.StringFixed(2))
	return err
}
