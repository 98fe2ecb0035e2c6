package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	mode := "offline"
	if a.session.session.Engine.Synced() {
		mode = "synced"
	}
	return fmt.Sprintf("(%s %s)", a.session.userName, mode)
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Discussions CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.Login(ctx)

	for {
		fmt.Fprintf(a.out, "discussions %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()

		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)

		case "follow":
			a.follow(ctx, args)
		case "watch":
			a.watch(ctx, args)
		case "read":
			a.markRead(ctx)
		case "block":
			a.blockUser(ctx, args)
		case "blockpost":
			a.blockPost(ctx, args)
		case "pin":
			a.pin(ctx, args)
		case "delegate":
			a.delegate(ctx, args)

		case "transfer":
			a.transfer(ctx, args)
		case "deposit":
			a.deposit(ctx, args)
		case "withdraw":
			a.withdraw(ctx, args)
		case "newaccount":
			a.newAccount(ctx, args)
		case "airdrop":
			a.airdrop(ctx, args)

		case "pending":
			a.pending(ctx)
		case "approve":
			a.approve(ctx, args)
		case "cancel":
			a.cancel(ctx, args)

		case "status":
			a.status(ctx)
		case "sync":
			a.sync(ctx)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Moderation: follow, watch, read, block, blockpost, pin, delegate")
		fmt.Fprintln(a.out, "Wallet:     transfer, deposit, withdraw, newaccount, airdrop")
		fmt.Fprintln(a.out, "Approvals:  pending, approve <id>, cancel <id>")
		fmt.Fprintln(a.out, "Other:      status, sync, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: login, exit")
	}
}

// requireLogin prints a hint and reports false when no session exists.
func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first")
		return false
	}
	return true
}
