package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/discussions-app/core/internal/authz"
)

func (a *App) pending(ctx context.Context) {
	requests := a.broker.Pending()
	if len(requests) == 0 {
		fmt.Fprintln(a.out, "Nothing waiting for approval")
		return
	}
	for _, r := range requests {
		age := time.Since(r.Created).Round(time.Second)
		fmt.Fprintf(a.out, "[%s] %s (waiting %s)\n", r.ID, r.Summary, age)
	}
}

func (a *App) approve(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: approve <id>")
		return
	}

	password, err := GetPassword(a.out, "Enter wallet password")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	// the flow wipes the password after signing
	if err := a.broker.Resolve(args[0], authz.Decision{Password: password}); err != nil {
		if errors.Is(err, authz.ErrUnknownRequest) {
			fmt.Fprintln(a.out, "No such pending transaction")
		} else {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

func (a *App) cancel(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: cancel <id>")
		return
	}
	if err := a.broker.Cancel(args[0]); err != nil {
		if errors.Is(err, authz.ErrUnknownRequest) {
			fmt.Fprintln(a.out, "No such pending transaction")
		} else {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}
