package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/discussions-app/core/internal/authz"
	"github.com/discussions-app/core/internal/wallet"
)

func (a *App) parseAmount(raw string) (wallet.Quantity, bool) {
	q, err := wallet.ParseQuantity(raw + " " + a.schedule.Symbol)
	if err != nil {
		fmt.Fprintf(a.out, "bad amount %q: %v\n", raw, err)
		return wallet.Quantity{}, false
	}
	return q, true
}

// submitAsync runs one flow in the background so the REPL stays free to
// take the approve command the flow is waiting on.
func (a *App) submitAsync(desc string, fn func(ctx context.Context) (string, error)) {
	go func() {
		txID, err := fn(context.Background())
		switch {
		case errors.Is(err, authz.ErrCancelled):
			fmt.Fprintf(a.out, "\n%s cancelled\n", desc)
		case errors.Is(err, authz.ErrTimeout):
			fmt.Fprintf(a.out, "\n%s timed out waiting for approval\n", desc)
		case err != nil:
			fmt.Fprintf(a.out, "\n%s failed: %v\n", desc, err)
		default:
			fmt.Fprintf(a.out, "\n%s submitted: %s\n", desc, txID)
		}
	}()
}

func (a *App) transfer(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: transfer <amount> <recipient> [memo]")
		return
	}
	amount, ok := a.parseAmount(args[0])
	if !ok {
		return
	}
	recipient := args[1]
	memo := strings.Join(args[2:], " ")

	svc := a.session.flows
	a.submitAsync("transfer", func(ctx context.Context) (string, error) {
		return svc.Transfer(ctx, amount, a.schedule, recipient, memo)
	})
}

func (a *App) deposit(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: deposit <amount>")
		return
	}
	amount, ok := a.parseAmount(args[0])
	if !ok {
		return
	}

	svc := a.session.flows
	userName := a.session.userName
	a.submitAsync("deposit", func(ctx context.Context) (string, error) {
		return svc.Deposit(ctx, amount, a.schedule, userName)
	})
}

func (a *App) withdraw(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: withdraw <amount> <chain-account> [memo]")
		return
	}
	amount, ok := a.parseAmount(args[0])
	if !ok {
		return
	}
	chainAccount := args[1]
	memo := strings.Join(args[2:], " ")

	svc := a.session.flows
	a.submitAsync("withdrawal", func(ctx context.Context) (string, error) {
		return svc.Withdraw(ctx, amount, a.schedule, chainAccount, memo)
	})
}

func (a *App) newAccount(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 3 {
		fmt.Fprintln(a.out, "Usage: newaccount <name> <pubkey> <price>")
		return
	}
	price, ok := a.parseAmount(args[2])
	if !ok {
		return
	}
	name, pubKey := args[0], args[1]

	svc := a.session.flows
	a.submitAsync("account creation", func(ctx context.Context) (string, error) {
		return svc.CreateAccount(ctx, price, a.schedule, name, pubKey)
	})
}

func (a *App) airdrop(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: airdrop <amount-each> <recipients...>")
		return
	}
	each, ok := a.parseAmount(args[0])
	if !ok {
		return
	}
	raw := strings.Join(args[1:], " ")

	svc := a.session.flows
	a.submitAsync("airdrop", func(ctx context.Context) (string, error) {
		result, err := svc.Airdrop(ctx, raw, each, a.schedule, "", func(i, total int) {
			fmt.Fprintf(a.out, "validating recipient %d/%d\n", i, total)
		})
		if err != nil {
			return "", err
		}
		if result.Failed != "" {
			return "", fmt.Errorf("stopped at %s after %d transfers", result.Failed, len(result.TxIDs))
		}
		return strings.Join(result.TxIDs, ", "), nil
	})
}
