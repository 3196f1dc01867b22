package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"familystock/internal/config"
	"familystock/internal/dbx"
	"familystock/internal/filex"
	"familystock/internal/logging"
	"familystock/internal/remote"
	"familystock/internal/repositories/metadata"
	"familystock/internal/repositories/pending"
	"familystock/internal/repositories/receipts"
	"familystock/internal/repositories/shopping"
	"familystock/internal/repositories/stock"
	"familystock/internal/services"
	"familystock/internal/session"
	"familystock/internal/sync"

	_ "modernc.org/sqlite"
)

// Mode is the connectivity state shown in the prompt and maintained by the
// online status watcher.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config *config.Config
	log    logging.Logger

	db      *sql.DB
	account *session.Supabase // nil in offline-only mode
	creds   session.Credentials

	stockSvc    services.StockService
	shoppingSvc services.ShoppingService
	receiptSvc  services.ReceiptService
	syncer      *sync.Service
	queue       *sync.Queue
	pinger      remote.Pinger

	mode   Mode
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database, restores any persisted session, and wires
// the services, the sync orchestrator and the offline queue.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(cfg.DatabaseDSN); err != nil {
		return nil, err
	}

	db, err := dbx.OpenSQLite(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	meta := metadata.NewSQLiteRepository(db)

	a := &App{
		config: cfg,
		log:    log,
		db:     db,
		mode:   ModeOffline,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	var (
		stockRemote    remote.StockRepository
		shoppingRemote remote.ShoppingRepository
		receiptRemote  remote.ReceiptRepository
	)
	if cfg.OfflineOnly {
		a.creds = session.NewLocalCredentials(meta)
		stockRemote = remote.NewDisabled()
		shoppingRemote = remote.DisabledShopping{}
		receiptRemote = remote.DisabledReceipts{}
	} else {
		a.account = session.NewSupabase(cfg.SupabaseURL, cfg.AnonKey, meta, log)
		if err := a.account.Restore(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.creds = a.account

		client := remote.NewClient(cfg.SupabaseURL, cfg.AnonKey, a.account, log)
		a.pinger = client
		stockRemote = remote.NewStockRepository(client, a.account, log)
		shoppingRemote = remote.NewShoppingRepository(client, a.account, log)
		receiptRemote = remote.NewReceiptRepository(client, a.account, log)
	}

	a.syncer = sync.NewService(db, stockRemote, shoppingRemote, receiptRemote, log)
	a.queue = sync.NewQueue(pending.NewSQLiteRepository(db), a.syncer, log)
	a.syncer.AttachQueue(a.queue)

	a.stockSvc = services.NewStockService(stock.NewSQLiteRepository(db), a.creds, a.syncer)
	a.shoppingSvc = services.NewShoppingService(shopping.NewSQLiteRepository(db), a.creds, a.syncer)
	a.receiptSvc = services.NewReceiptService(receipts.NewSQLiteRepository(db), a.creds, a.syncer)

	return a, nil
}

// Run starts the connectivity watcher and the REPL, blocking until the user
// exits. A restored session syncs immediately, so the app comes up current.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	if a.pinger != nil {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	if a.isLoggedIn() {
		a.syncNow(ctx)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner, a.out)
}

func (a *App) isLoggedIn() bool {
	if a.config.OfflineOnly {
		return true
	}
	return a.account != nil && a.account.IsAuthenticated()
}

func (a *App) status() string {
	if a.config.OfflineOnly {
		return "(local)"
	}
	s := string(a.mode)
	if email := a.account.CurrentEmail(); email != "" {
		s = email + " " + s
	}
	return "(" + s + ")"
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.mode == mode {
		return
	}
	a.mode = mode
	a.log.Info(ctx, "connectivity changed", "mode", mode)

	// coming back online is a replay trigger: drain what piled up while
	// offline, then catch up on remote changes
	if mode == ModeOnline && a.isLoggedIn() {
		a.syncNow(ctx)
	}
}

// StartOnlineStatusWatcher periodically probes the remote endpoint and flips
// the connectivity mode on changes. Runs until ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.pinger.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) syncNow(ctx context.Context) {
	a.queue.Drain(ctx)
	a.syncer.PullAll(ctx)
}
