package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/eosname"
	"github.com/discussions-app/core/internal/flows"
	"github.com/discussions-app/core/internal/remote"
	"github.com/discussions-app/core/internal/session"
)

// loginState bundles everything that only exists while logged in.
type loginState struct {
	session  *session.Session
	flows    *flows.Service
	userName string
}

func (l *loginState) close() {
	l.session.Close()
}

// accountNameValidator applies the on-chain account name rule. Airdrop
// recipient lists are checked against it entry by entry.
type accountNameValidator struct{}

func (accountNameValidator) ValidateName(ctx context.Context, name string) error {
	if !eosname.IsValidName(name) {
		return fmt.Errorf("not a valid account name")
	}
	return nil
}

func (a *App) Login(ctx context.Context) {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already logged in")
		return
	}

	userName, err := GetSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out, "Enter wallet password")
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	sess, err := session.Login(ctx, session.Options{
		BaseURL: a.config.ServerEndpointAddr,
		Cache:   a.cache,
		Logger:  a.log,
	}, password)
	if err != nil {
		if errors.Is(err, session.ErrWrongPassword) {
			fmt.Fprintln(a.out, "Wrong password")
		} else {
			fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		}
		return
	}

	if err := sess.Start(ctx); err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			fmt.Fprintln(a.out, "Store unavailable, running on the offline copy")
		} else {
			fmt.Fprintf(a.out, "Pull unsuccessful: %v\n", err)
		}
	}

	submitter := remote.NewRelaySubmitter(a.config.RelayEndpointAddr, sess.Salt(), a.log)
	a.session = &loginState{
		session:  sess,
		flows:    flows.NewService(a.broker, submitter, accountNameValidator{}, a.log),
		userName: userName,
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", userName, sess.PublicKey())
}

func (a *App) Logout(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	a.session.close()
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
}
