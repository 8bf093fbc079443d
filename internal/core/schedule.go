package core

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ComposeDeliveryInstant combines the separate date (YYYY-MM-DD) and time
// (HH:MM) fields of a draft into one local instant.
func ComposeDeliveryInstant(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("delivery date and time are both required, got date=%q time=%q", date, clock)
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", date+"T"+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid delivery date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// backendDateTimeLayouts are the formats order fetches have been observed to
// carry. Tried in order.
var backendDateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	"02/01/2006T15:04",
}

// ParseBackendDateTime parses a delivery instant as the backend sends it.
func ParseBackendDateTime(raw string) (time.Time, error) {
	for _, layout := range backendDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized backend datetime %q", raw)
}

// ValidateDeliverySlot checks the draft's delivery slot at save time. A slot
// strictly in the past blocks the save with a ValidationError. A slot that
// cannot be composed at all logs a warning and lets the save proceed:
// a parsing edge case must not strand an otherwise valid order.
func ValidateDeliverySlot(log *zap.Logger, date, clock string, now time.Time) error {
	instant, err := ComposeDeliveryInstant(date, clock)
	if err != nil {
		log.Warn("delivery slot could not be composed, allowing save",
			zap.String("date", date),
			zap.String("time", clock),
			zap.Error(err))
		return nil
	}
	// The slot has minute resolution, so "now" is compared at minute
	// resolution too; a draft scheduled for the current minute still saves.
	if instant.Before(now.Truncate(time.Minute)) {
		return NewValidationError("deliveryDate", "delivery slot is in the past")
	}
	return nil
}
