package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/discussions-app/core/internal/authz"
	"github.com/discussions-app/core/internal/client/config"
	"github.com/discussions-app/core/internal/localcache"
	"github.com/discussions-app/core/internal/logging"
	"github.com/discussions-app/core/internal/wallet"
)

type App struct {
	config *config.Config
	log    logging.Logger
	cache  localcache.Cache
	db     *sql.DB
	broker *authz.Broker

	// populated by login
	session  *loginState
	schedule wallet.Schedule

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(slogger)

	cache, db, err := localcache.Open(ctx, c.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	a := &App{
		config:   c,
		log:      logger,
		cache:    cache,
		db:       db,
		schedule: defaultSchedule(),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	a.broker = authz.NewBroker(
		authz.WithTimeout(c.AuthorizationTimeout),
		authz.WithNotify(func(r authz.Request) {
			fmt.Fprintf(a.out, "\nauthorization requested [%s]: %s\n", r.ID, r.Summary)
			fmt.Fprintln(a.out, "use 'pending' to list, 'approve <id>' or 'cancel <id>' to settle")
		}),
	)

	return a, nil
}

// defaultSchedule is the pricing applied to every packaged transfer: a
// three percent fee on ATMOS amounts with three fraction digits.
func defaultSchedule() wallet.Schedule {
	return wallet.Schedule{
		Percent:  big.NewRat(3, 100),
		Flat:     new(big.Rat),
		Decimals: 3,
		Symbol:   "ATMOS",
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.session != nil {
			a.session.close()
		}
		if err := a.db.Close(); err != nil {
			a.log.Error(ctx, err.Error())
		}
	}()

	a.Root(ctx)
}
