package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/crawler-console/internal/entity"
	"github.com/user/crawler-console/internal/repository"
	"github.com/user/crawler-console/pkg/metrics"
)

var errLoadFailed = errors.New("script failed to load")

// AssetSequencer loads script dependencies one at a time, strictly in order.
// It has no cancellation of its own: a cancelled context only surfaces as the error
// of the step in flight.
type AssetSequencer struct {
	loader  repository.AssetLoader
	idle    time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAssetSequencer creates a sequencer. idle is how long a step may go without any
// signal before the script is assumed loaded; zero waits indefinitely.
func NewAssetSequencer(loader repository.AssetLoader, idle time.Duration, logger *zap.Logger, m *metrics.Metrics) *AssetSequencer {
	if m == nil {
		m = metrics.NewNop()
	}
	return &AssetSequencer{loader: loader, idle: idle, logger: logger, metrics: m}
}

// Run loads every asset in order and returns after the last one completes, or with
// the first step's error. Assets after a failed one are never requested.
func (s *AssetSequencer) Run(ctx context.Context, assets entity.AssetDescriptor) error {
	for i, url := range assets {
		if err := s.await(ctx, url); err != nil {
			s.metrics.IncAssetLoad("failed")
			return fmt.Errorf("asset %d (%s): %w", i, url, err)
		}
		s.logger.Debug("asset loaded", zap.Int("index", i), zap.String("url", url))
	}
	return nil
}

// Start runs the sequence in the background and calls done exactly once with its
// outcome.
func (s *AssetSequencer) Start(ctx context.Context, assets entity.AssetDescriptor, done func(error)) {
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			if done != nil {
				done(err)
			}
		})
	}
	go func() {
		finish(s.Run(ctx, assets))
	}()
}

// await requests one script and blocks until it is ready or has failed.
func (s *AssetSequencer) await(ctx context.Context, url string) error {
	signals := s.loader.Load(ctx, url)

	if s.idle <= 0 {
		for {
			sig, ok := <-signals
			if done, err := s.handle(url, sig, ok); done {
				return err
			}
		}
	}

	timer := time.NewTimer(s.idle)
	defer timer.Stop()
	for {
		select {
		case sig, ok := <-signals:
			if done, err := s.handle(url, sig, ok); done {
				return err
			}
			timer.Reset(s.idle)
		case <-timer.C:
			s.logger.Warn("no readiness signal within idle window, assuming loaded",
				zap.String("url", url), zap.Duration("idle", s.idle))
			s.metrics.IncAssetLoad("idle")
			return nil
		}
	}
}

// handle interprets one receive from the signal channel.
func (s *AssetSequencer) handle(url string, sig entity.LoadSignal, ok bool) (bool, error) {
	if !ok {
		// The loader has nothing more to say and never reported an error.
		s.metrics.IncAssetLoad("loaded")
		return true, nil
	}
	if sig.Kind == entity.SignalError {
		if sig.Err == nil {
			return true, errLoadFailed
		}
		return true, sig.Err
	}
	if sig.Completes() {
		s.metrics.IncAssetLoad("loaded")
		return true, nil
	}
	s.logger.Debug("asset ready-state", zap.String("url", url), zap.String("state", sig.State))
	return false, nil
}
