// Package admission decides whether a registration may be written given the
// configured record limit.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"registro/pkg/requestcontext"
)

// Mode selects how the limit is enforced.
type Mode string

const (
	// ModeSoft checks the cached count and confirms after the insert. Two
	// requests racing just under the limit may both be admitted.
	ModeSoft Mode = "soft"
	// ModeStrict reserves a slot under the cache lock before the insert, so
	// the limit is never exceeded by this process.
	ModeStrict Mode = "strict"
)

// ParseMode accepts "soft" or "strict". An empty string means soft.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSoft:
		return ModeSoft, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown admission mode %q", s)
	}
}

// Cache is the count cache as seen by the controller.
type Cache interface {
	GetCount(ctx context.Context, now time.Time) (int, error)
	Increment()
	Reserve(ctx context.Context, now time.Time, maxRecords int) (int, bool, error)
	Commit()
	Release()
}

// Decision is the outcome of Admit. A rejected decision carries the count it
// was rejected on.
type Decision struct {
	Allowed      bool
	CurrentCount int
	MaxRecords   int

	reserved bool
}

// Controller applies the record limit.
type Controller struct {
	cache  Cache
	mode   Mode
	logger *slog.Logger
}

// New builds a controller. A nil logger discards refresh warnings.
func New(cache Cache, mode Mode, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if mode == "" {
		mode = ModeSoft
	}
	return &Controller{cache: cache, mode: mode, logger: logger}
}

// Mode reports the enforcement mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Admit rejects once the known count reaches maxRecords. A failed refresh
// does not block registrations; the last known count is used instead.
func (c *Controller) Admit(ctx context.Context, maxRecords int) Decision {
	now := requestcontext.Now(ctx)

	if c.mode == ModeStrict {
		count, ok, err := c.cache.Reserve(ctx, now, maxRecords)
		c.logRefreshError(ctx, err, count)
		return Decision{Allowed: ok, CurrentCount: count, MaxRecords: maxRecords, reserved: ok}
	}

	count, err := c.cache.GetCount(ctx, now)
	c.logRefreshError(ctx, err, count)
	return Decision{Allowed: count < maxRecords, CurrentCount: count, MaxRecords: maxRecords}
}

// Confirm records a verified insert for an allowed decision.
func (c *Controller) Confirm(d Decision) {
	if !d.Allowed {
		return
	}
	if d.reserved {
		c.cache.Commit()
		return
	}
	c.cache.Increment()
}

// Abandon undoes an allowed decision whose insert failed.
func (c *Controller) Abandon(d Decision) {
	if d.reserved {
		c.cache.Release()
	}
}

func (c *Controller) logRefreshError(ctx context.Context, err error, count int) {
	if err == nil {
		return
	}
	c.logger.WarnContext(ctx, "count refresh failed, admitting on cached count",
		"error", err,
		"cached_count", count,
		"request_id", requestcontext.RequestID(ctx),
	)
}
