// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/bistro/internal/adapters/repository"
	"github.com/okian/bistro/internal/domain/model"
	"github.com/okian/bistro/pkg/logger"
	"github.com/okian/bistro/pkg/metrics"
)

const (
	driverMemory         = "memory"
	defaultGaugeInterval = 10 * time.Second
	gaugeTimeout         = 5 * time.Second
)

// Service owns the restaurant store and exposes it to the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	injected repository.Store

	// Configuration
	driver        string
	dsn           string
	sqlOpts       []repository.SQLOption
	gaugeInterval time.Duration

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:        driverMemory,
		gaugeInterval: defaultGaugeInterval,
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the configured store and starts the gauge updater.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting restaurant service...", logger.String("driver", s.driverName()))

	store, err := s.openStore(ctx)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.store = store
	s.stopCh = make(chan struct{})
	s.started = true
	s.startedAt = time.Now()

	s.refreshGauges(ctx, store)
	s.startGaugeUpdater(store, s.stopCh)

	s.logger.Info(ctx, "restaurant service started",
		logger.String("driver", s.driverName()),
		logger.Duration("gaugeInterval", s.gaugeInterval),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.injected != nil {
		return s.injected, nil
	}
	switch s.driver {
	case driverMemory:
		return repository.NewMemoryStore(), nil
	case repository.DriverSQLite, repository.DriverMySQL:
		return repository.OpenSQL(ctx, s.driver, s.dsn, s.sqlOpts...)
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnsupportedDriver, s.driver)
	}
}

func (s *Service) driverName() string {
	if s.injected != nil {
		return "injected"
	}
	return s.driver
}

// startGaugeUpdater periodically publishes the restaurant count until stop closes.
func (s *Service) startGaugeUpdater(store repository.Store, stop <-chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.gaugeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), gaugeTimeout)
				s.refreshGauges(ctx, store)
				cancel()
			}
		}
	}()
}

func (s *Service) refreshGauges(ctx context.Context, store repository.Store) {
	n, err := store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "restaurant count failed", logger.Error(err))
		metrics.RecordErrorByComponent("service", "count_failed")
		return
	}
	metrics.UpdateRestaurantsTotal(n)
}

// Stop stops the gauge updater and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping restaurant service...")
	s.started = false
	stop, store := s.stopCh, s.store
	s.store = nil
	s.mu.Unlock()

	// The updater never takes mu.
	close(stop)
	s.wg.Wait()

	if err := store.Close(); err != nil {
		s.logger.Error(context.Background(), "closing store failed", logger.Error(err))
	}
	s.logger.Info(context.Background(), "restaurant service stopped")
}

// Store returns the active store, or nil when the service is not running.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

func (s *Service) active() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// FindAll returns every restaurant ordered by id.
func (s *Service) FindAll(ctx context.Context) ([]model.Restaurant, error) {
	store, err := s.active()
	if err != nil {
		return nil, err
	}
	return store.FindAll(ctx)
}

// FindByID returns the restaurant with id.
func (s *Service) FindByID(ctx context.Context, id int64) (model.Restaurant, error) {
	store, err := s.active()
	if err != nil {
		return model.Restaurant{}, err
	}
	return store.FindByID(ctx, id)
}

// Create stores a new restaurant.
func (s *Service) Create(ctx context.Context, fields model.Fields) (model.Restaurant, error) {
	store, err := s.active()
	if err != nil {
		return model.Restaurant{}, err
	}
	r, err := store.Create(ctx, fields)
	if err != nil {
		return model.Restaurant{}, err
	}
	s.logger.Debug(ctx, "restaurant created", logger.Int64("id", r.ID))
	return r, nil
}

// Update merges fields into the restaurant with id.
func (s *Service) Update(ctx context.Context, id int64, fields model.Fields, partial bool) (model.Restaurant, error) {
	store, err := s.active()
	if err != nil {
		return model.Restaurant{}, err
	}
	r, err := store.Update(ctx, id, fields, partial)
	if err != nil {
		return model.Restaurant{}, err
	}
	s.logger.Debug(ctx, "restaurant updated", logger.Int64("id", id), logger.Any("partial", partial))
	return r, nil
}

// Delete removes the restaurant with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	store, err := s.active()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug(ctx, "restaurant deleted", logger.Int64("id", id))
	return nil
}

// Ping reports whether the service is running and its store reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.active()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started, store, startedAt := s.started, s.store, s.startedAt
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       started,
		"storeDriver":   s.driverName(),
		"gaugeInterval": s.gaugeInterval.String(),
	}

	if started {
		ctx, cancel := context.WithTimeout(context.Background(), gaugeTimeout)
		defer cancel()
		stats["uptimeSeconds"] = int64(time.Since(startedAt).Seconds())
		if n, err := store.Count(ctx); err == nil {
			stats["totalRestaurants"] = n
			metrics.UpdateRestaurantsTotal(n)
		}
	}

	return stats
}
