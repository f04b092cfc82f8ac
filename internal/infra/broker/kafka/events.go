package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Events publishes domain events for downstream consumers. A nil Events (or
// one built from a nil producer) is a no-op so callers never have to branch
// on whether Kafka is configured.
type Events struct {
	producer *Producer
	prefix   string
	logger   *slog.Logger
}

func NewEvents(producer *Producer, topicPrefix string, logger *slog.Logger) *Events {
	if producer == nil {
		return nil
	}
	return &Events{producer: producer, prefix: topicPrefix, logger: logger}
}

type bookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *Events) BookingCreated(ctx context.Context, bookingID, userID, listingID string, checkIn, checkOut time.Time, totalPrice float64) {
	if e == nil {
		return
	}
	e.publish(ctx, "booking.created", listingID, bookingCreatedEvent{
		BookingID:  bookingID,
		UserID:     userID,
		ListingID:  listingID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: totalPrice,
		OccurredAt: time.Now().UTC(),
	})
}

type listingEvent struct {
	ListingID  string    `json:"listing_id"`
	HostID     string    `json:"host_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *Events) ListingCreated(ctx context.Context, listingID, hostID string) {
	if e == nil {
		return
	}
	e.publish(ctx, "listing.created", listingID, listingEvent{
		ListingID:  listingID,
		HostID:     hostID,
		OccurredAt: time.Now().UTC(),
	})
}

func (e *Events) ListingDeleted(ctx context.Context, listingID, hostID string) {
	if e == nil {
		return
	}
	e.publish(ctx, "listing.deleted", listingID, listingEvent{
		ListingID:  listingID,
		HostID:     hostID,
		OccurredAt: time.Now().UTC(),
	})
}

func (e *Events) publish(ctx context.Context, topic, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("marshal event", "topic", topic, "error", err)
		}
		return
	}
	full := topic
	if e.prefix != "" {
		full = e.prefix + "." + topic
	}
	if err := e.producer.Publish(ctx, full, key, body, nil); err != nil {
		if e.logger != nil {
			e.logger.Error("publish event", "topic", full, "error", err)
		}
	}
}

func (e *Events) Close() error {
	if e == nil {
		return nil
	}
	return e.producer.Close()
}
