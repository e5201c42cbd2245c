// Package sweeper periodically scans every live session for detergent stock
// at or below its threshold and raises one alert per low episode.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"campus-laundry-backend/config"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/model"
	"campus-laundry-backend/internal/notification"
)

// StockSource lists low stock across all sessions.
type StockSource interface {
	LowStock(ctx context.Context) ([]model.Stock, error)
}

// Dispatcher accepts alerts for delivery.
type Dispatcher interface {
	Dispatch(alert notification.Alert) bool
}

// Service runs the low-stock scan on an interval.
type Service struct {
	cfg     *config.SweeperConfig
	store   StockSource
	pool    Dispatcher
	metrics *metrics.Metrics
	log     zerolog.Logger

	// alerted holds the items already reported in their current low episode.
	// Only the Run goroutine touches it.
	alerted map[string]struct{}
}

// NewService creates the sweeper.
func NewService(cfg *config.SweeperConfig, store StockSource, pool Dispatcher, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		pool:    pool,
		metrics: m,
		log:     log.With().Str("component", "sweeper").Logger(),
		alerted: make(map[string]struct{}),
	}
}

// Run scans immediately and then on every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info().Msg("sweeper is disabled, not starting")
		return
	}
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("starting low stock sweeper")

	s.ScanOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper shutting down")
			return
		case <-timer.C:
			s.ScanOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// ScanOnce checks stock once and returns the number of alerts dispatched.
// Items that recover above their threshold are forgotten so a later drop
// alerts again.
func (s *Service) ScanOnce(ctx context.Context) int {
	items, err := s.store.LowStock(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("low stock scan failed")
		return 0
	}

	low := make(map[string]struct{}, len(items))
	dispatched := 0
	for _, item := range items {
		key := item.SessionID + "/" + item.ID
		low[key] = struct{}{}
		if _, done := s.alerted[key]; done {
			continue
		}

		ok := s.pool.Dispatch(notification.Alert{
			SessionID:     item.SessionID,
			StockID:       item.ID,
			DetergentType: item.DetergentType,
			CurrentStock:  item.CurrentStock,
			MinThreshold:  item.MinThreshold,
			Unit:          item.Unit,
		})
		if !ok {
			// Retried on the next scan.
			continue
		}
		s.alerted[key] = struct{}{}
		dispatched++
		if s.metrics != nil {
			s.metrics.LowStockAlerts.Inc()
		}
	}

	for key := range s.alerted {
		if _, still := low[key]; !still {
			delete(s.alerted, key)
		}
	}

	if dispatched > 0 {
		s.log.Info().Int("alerts", dispatched).Msg("dispatched low stock alerts")
	}
	return dispatched
}
