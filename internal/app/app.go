// Package app constructs and wires the service.
package app

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"pindrome/internal/arena"
	"pindrome/internal/catalog"
	"pindrome/internal/config"
	"pindrome/internal/rating"
	"pindrome/internal/refcache"
	"pindrome/internal/refdata"
	"pindrome/internal/store"
	"pindrome/internal/votequeue"
	"pindrome/internal/web"
)

type App struct {
	store *store.Store
	cache *badger.DB
	queue *votequeue.Queue

	adminToken string
	router     http.Handler

	closeOnce sync.Once
}

func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.CacheDir)
	opts.Logger = nil
	cacheDB, err := badger.Open(opts)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	cache := refcache.New(cacheDB, log)
	data := refdata.NewClient(refdata.Config{
		MachinesURL: cfg.MachinesURL,
		GroupsURL:   cfg.GroupsURL,
		TTL:         cfg.RefDataTTL,
	}, cache, log)

	queue := votequeue.New(log)
	status := arena.NewBroadcaster()
	ratings := rating.NewService(st)
	service := arena.New(data, st, ratings, queue, status, catalog.Overrides{}, log)

	token, err := loadOrInitAdminToken(cfg.DataDir)
	if err != nil {
		_ = st.Close()
		_ = cacheDB.Close()
		return nil, err
	}

	h := web.NewHandler(service, status, token, log)

	return &App{
		store:      st,
		cache:      cacheDB,
		queue:      queue,
		adminToken: token,
		router:     h.Routes(),
	}, nil
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) AdminToken() string {
	return a.adminToken
}

// Close drains the vote queue, then releases storage.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.queue.Wait()
		_ = a.cache.Close()
		_ = a.store.Close()
	})
}
