package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/core/domain"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

// RepoManager holds the badgerhold store of the swap archive and of the
// closed orders history.
type RepoManager struct {
	store *badgerhold.Store
	quit  chan struct{}

	swapRepository  domain.SwapRepository
	orderRepository domain.OrderRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. If the dir is empty, the
// store is kept in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "swaps")
	}

	quit := make(chan struct{})
	store, err := createDb(dbDir, logger, quit)
	if err != nil {
		return nil, fmt.Errorf("opening swaps db: %w", err)
	}

	return &RepoManager{
		store:           store,
		quit:            quit,
		swapRepository:  NewSwapRepositoryImpl(store),
		orderRepository: NewOrderRepositoryImpl(store),
	}, nil
}

func (d *RepoManager) SwapRepository() domain.SwapRepository {
	return d.swapRepository
}

func (d *RepoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *RepoManager) Close() {
	close(d.quit)
	if err := d.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close swaps db")
	}
}

func createDb(
	dbDir string, logger badger.Logger, quit chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil &&
						err != badger.ErrNoRewrite {
						log.Error(err)
					}
				case <-quit:
					return
				}
			}
		}()
	}

	return db, nil
}

func paginate[T any](list []T, page domain.Page) []T {
	if page.IsZero() {
		return list
	}
	start := page.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + page.Size
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
