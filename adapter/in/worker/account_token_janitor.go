// Package worker hosts background jobs running alongside the API.
package worker

import (
	"context"
	"time"

	"account_server/core/port/out"
	"account_server/pkg/logger"
)

const (
	janitorInterval = 1 * time.Hour
	janitorTimeout  = 1 * time.Minute
)

// TokenJanitor periodically removes expired refresh tokens so the table
// does not grow unbounded.
type TokenJanitor struct {
	tokens   out.RefreshTokenRepository
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewTokenJanitor creates a new janitor.
func NewTokenJanitor(tokens out.RefreshTokenRepository) *TokenJanitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &TokenJanitor{
		tokens:   tokens,
		interval: janitorInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the cleanup loop.
func (j *TokenJanitor) Start() {
	logger.Info("[TokenJanitor] Starting...")
	go j.run()
}

// Stop stops the cleanup loop.
func (j *TokenJanitor) Stop() {
	logger.Info("[TokenJanitor] Stopping...")
	j.cancel()
}

func (j *TokenJanitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			logger.Info("[TokenJanitor] Stopped")
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *TokenJanitor) sweep() {
	ctx, cancel := context.WithTimeout(j.ctx, janitorTimeout)
	defer cancel()

	removed, err := j.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		logger.WithError(err).Warn("[TokenJanitor] sweep failed")
		return
	}
	if removed > 0 {
		logger.Info("[TokenJanitor] removed %d expired refresh tokens", removed)
	}
}
