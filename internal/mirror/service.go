package mirror

import (
	"context"
	"fmt"
	"time"

	"dmirror/internal/log"
	"dmirror/internal/settings"
	"dmirror/pkg/helpers/run"
	"dmirror/pkg/helpers/ut"
)

var generatePassID = ut.CreateUint64IDGenerator()

//Service drives the Engine, either for a single pass or on a fixed interval.
type Service struct {
	log      log.Logger
	settings settings.Settings
	engine   *Engine
}

func NewService(logger log.Logger, stg settings.Settings) *Service {
	return &Service{log: logger, settings: stg, engine: New(logger)}
}

//RunOnce performs one mirror pass. A panic escaping the engine surfaces as an
//ordinary error, so the caller can report it and exit non-zero.
func (s *Service) RunOnce() (*Stats, error) {
	var stats *Stats
	err := run.WithError(func() error {
		var passErr error
		stats, passErr = s.pass()
		return passErr
	})
	return stats, err
}

func (s *Service) pass() (*Stats, error) {
	id := generatePassID()
	s.log.Debug("mirror pass started", log.Uint64("pass", id))
	start := time.Now()
	stats, err := s.engine.Mirror(s.settings.SrcDir, s.settings.DstDir)
	if err != nil {
		return stats, fmt.Errorf("mirror pass %d failed: %w", id, err)
	}
	s.log.Info("mirror pass finished",
		log.Uint64("pass", id),
		log.Duration("took", time.Since(start)),
		log.String("stats", stats.Summary()),
	)
	return stats, nil
}

//Start runs a mirror pass immediately and then again on every tick of the
//settings.Every interval, until ctx is canceled. A failed pass is logged and
//does not stop the loop.
func (s *Service) Start(ctx context.Context, stop context.CancelFunc) error {
	if _, err := s.RunOnce(); err != nil {
		s.log.Error("mirror pass failed", log.Cause(err))
	}
	ticker := time.NewTicker(s.settings.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			stop() // stop receiving signal notifications as soon as possible
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(); err != nil {
				s.log.Error("mirror pass failed", log.Cause(err))
			}
		}
	}
}
