package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"campus-laundry-backend/internal/model"
)

// Alert reports a stock item that has fallen to or below its threshold.
type Alert struct {
	SessionID     string `json:"-"`
	StockID       string `json:"stockId"`
	DetergentType string `json:"detergentType"`
	CurrentStock  int    `json:"currentStock"`
	MinThreshold  int    `json:"minThreshold"`
	Unit          string `json:"unit"`
}

// Message is the human readable alert text.
func (a Alert) Message() string {
	return fmt.Sprintf("%s is running low: %d %s left (minimum %d %s)",
		a.DetergentType, a.CurrentStock, a.Unit, a.MinThreshold, a.Unit)
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Alert
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender sends notifications through the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	SubscriptionsFor(ctx context.Context, sessionID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// WorkerPool delivers low-stock alerts on a fixed number of goroutines.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     zerolog.Logger
}

// NewWorkerPool creates a new worker pool. With nil webpushOptions alerts are
// only logged.
func NewWorkerPool(size int, store SubscriptionStore, webpushOptions *webpush.Options, log zerolog.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*16),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log.With().Str("component", "notification").Logger(),
	}
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug().Int("worker", id).Msg("worker started")
	for {
		select {
		case alert := <-wp.jobs:
			wp.deliver(ctx, alert)
		case <-ctx.Done():
			wp.log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}
	}
}

// Dispatch queues an alert. It reports false and drops the alert when the
// queue is full.
func (wp *WorkerPool) Dispatch(alert Alert) bool {
	select {
	case wp.jobs <- alert:
		return true
	default:
		wp.log.Warn().Str("session", alert.SessionID).Str("stock", alert.StockID).Msg("notification queue full, dropping alert")
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

func (wp *WorkerPool) deliver(ctx context.Context, alert Alert) {
	event := wp.log.Info().
		Str("session", alert.SessionID).
		Str("stock", alert.StockID).
		Int("current", alert.CurrentStock).
		Int("min", alert.MinThreshold)

	if wp.webpush == nil {
		event.Msg(alert.Message())
		return
	}

	subs, err := wp.store.SubscriptionsFor(ctx, alert.SessionID)
	if err != nil {
		wp.log.Error().Err(err).Str("session", alert.SessionID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subs) == 0 {
		event.Msg(alert.Message())
		return
	}

	body, err := json.Marshal(payload{Title: "Low stock", Body: alert.Message(), Alert: alert})
	if err != nil {
		wp.log.Error().Err(err).Msg("failed to encode alert")
		return
	}

	event.Int("subscriptions", len(subs)).Msg("sending low stock notifications")
	for _, sub := range subs {
		wp.send(ctx, sub, body)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, body []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(body, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
