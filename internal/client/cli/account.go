package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/discussions-app/core/internal/account"
	"github.com/discussions-app/core/internal/remote"
)

func (a *App) follow(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: follow <pubkey> <display-name>")
		return
	}
	if a.session.session.Store.ToggleFollow(args[0], args[1]) {
		fmt.Fprintf(a.out, "Following %s\n", args[1])
	} else {
		fmt.Fprintf(a.out, "Unfollowed %s\n", args[1])
	}
}

func (a *App) watch(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: watch <thread-id> <reply-count>")
		return
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "reply-count must be a number")
		return
	}
	watching, err := a.session.session.Store.ToggleWatch(args[0], count)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if watching {
		fmt.Fprintf(a.out, "Watching thread %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Stopped watching thread %s\n", args[0])
	}
}

func (a *App) markRead(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	a.session.session.Store.MarkWatchedRead()
	fmt.Fprintln(a.out, "Marked all watched threads read")
}

func (a *App) blockUser(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: block <display-name> <pubkey>")
		return
	}
	if a.session.session.Store.ToggleBlockUser(args[0], args[1]) {
		fmt.Fprintf(a.out, "Blocked %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Unblocked %s\n", args[0])
	}
}

func (a *App) blockPost(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: blockpost <path>")
		return
	}
	if a.session.session.Store.ToggleBlockPost(args[0]) {
		fmt.Fprintf(a.out, "Blocked post %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Unblocked post %s\n", args[0])
	}
}

func (a *App) pin(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: pin <path> <tag>")
		return
	}
	if a.session.session.Store.TogglePinPost(args[0], args[1]) {
		fmt.Fprintf(a.out, "Pinned %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Unpinned %s\n", args[0])
	}
}

func (a *App) delegate(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: delegate <name:pubkey> <tag>")
		return
	}
	if a.session.session.Store.ToggleDelegatedMember(args[0], args[1]) {
		fmt.Fprintf(a.out, "Delegated %s for #%s\n", args[0], args[1])
	} else {
		fmt.Fprintf(a.out, "Removed delegation of %s\n", args[0])
	}
}

func (a *App) status(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	sess := a.session.session
	fmt.Fprintf(a.out, "Account:  %s\n", sess.PublicKey())
	fmt.Fprintf(a.out, "Synced:   %t\n", sess.Engine.Synced())
	for _, f := range account.Fields() {
		n, err := sess.Store.Len(f)
		if err != nil {
			continue
		}
		fmt.Fprintf(a.out, "%-9s %d\n", string(f)+":", n)
	}
}

func (a *App) sync(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	if err := a.session.session.Engine.Pull(ctx); err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			fmt.Fprintln(a.out, "Store unavailable")
		} else {
			fmt.Fprintf(a.out, "Sync failed: %v\n", err)
		}
		return
	}
	fmt.Fprintln(a.out, "Synced")
}
