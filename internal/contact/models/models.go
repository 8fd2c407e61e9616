package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Contact is a persisted registration. Records are write-once.
type Contact struct {
	ID        uuid.UUID
	Names     string
	Surname   string
	Email     string
	Phone     string
	Interest  string
	CreatedAt time.Time
}

// NewContact stamps a validated request with a fresh identifier and the
// server-side creation time, truncated to milliseconds in UTC.
func NewContact(id uuid.UUID, req *RegisterRequest, now time.Time) *Contact {
	return &Contact{
		ID:        id,
		Names:     req.Names,
		Surname:   req.Surname,
		Email:     req.Email,
		Phone:     req.Phone,
		Interest:  req.Interest,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}

// TimestampLayout is RFC 3339 with millisecond precision, e.g. 2026-01-02T15:04:05.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way records store their creation time.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Usage summarises capacity consumption against the admission limit.
type Usage struct {
	CurrentCount   int     `json:"currentCount"`
	MaxRecords     int     `json:"maxRecords"`
	RemainingSlots int     `json:"remainingSlots"`
	PercentUsed    float64 `json:"percentUsed"`
}

// NewUsage derives remaining slots (never negative) and the percentage used
// rounded to one decimal.
func NewUsage(count, maxRecords int) Usage {
	return Usage{
		CurrentCount:   count,
		MaxRecords:     maxRecords,
		RemainingSlots: max(0, maxRecords-count),
		PercentUsed:    percentUsed(count, maxRecords),
	}
}

func percentUsed(count, maxRecords int) float64 {
	if maxRecords <= 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(maxRecords)) / 10
}

// Stats is the capacity report served by GET /stats.
type Stats struct {
	Usage
	IsNearLimit bool `json:"isNearLimit"`
	IsFull      bool `json:"isFull"`
}

// NearLimitPercent is the share of capacity at which IsNearLimit turns on.
const NearLimitPercent = 80

func NewStats(count, maxRecords int) Stats {
	return Stats{
		Usage:       NewUsage(count, maxRecords),
		IsNearLimit: count*100 >= maxRecords*NearLimitPercent,
		IsFull:      count >= maxRecords,
	}
}

// CapacityExceededError is returned when admission rejects a registration.
type CapacityExceededError struct {
	CurrentCount int
	MaxRecords   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("registration limit reached (%d/%d)", e.CurrentCount, e.MaxRecords)
}

// RegisteredEvent announces a stored contact. Personal data stays out of it.
type RegisteredEvent struct {
	ID        string `json:"id"`
	Interest  string `json:"interest"`
	CreatedAt string `json:"createdAt"`
}

func NewRegisteredEvent(c *Contact) RegisteredEvent {
	return RegisteredEvent{
		ID:        c.ID.String(),
		Interest:  c.Interest,
		CreatedAt: FormatTimestamp(c.CreatedAt),
	}
}
