// Package notify hands customer notification intents to the collaborator
// that actually sends them. Nothing in this service sends SMS or push itself.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
)

// Sink transports an encoded intent keyed by delivery id.
type Sink interface {
	Send(ctx context.Context, key string, value []byte) error
}

// Message is the wire form of a notification intent. An intent may be sent
// more than once; receivers drop repeats by IntentID.
type Message struct {
	IntentID   string    `json:"intent_id"`
	DeliveryID int64     `json:"delivery_id"`
	Channel    string    `json:"channel"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Dispatcher validates and encodes intents before handing them to a Sink.
type Dispatcher struct {
	sink   Sink
	logger logx.Logger
	now    func() time.Time
}

// NewDispatcher returns a Dispatcher over sink.
func NewDispatcher(sink Sink, logger logx.Logger) *Dispatcher {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Dispatcher{
		sink:   sink,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Publish sends in through the sink.
func (d *Dispatcher) Publish(ctx context.Context, in domain.NotificationIntent) error {
	if err := validate(in); err != nil {
		return err
	}
	payload, err := json.Marshal(Message{
		IntentID:   in.ID,
		DeliveryID: in.DeliveryID,
		Channel:    string(in.Channel),
		Message:    in.Message,
		CreatedAt:  d.now(),
	})
	if err != nil {
		return fmt.Errorf("encode intent %s: %w", in.ID, err)
	}
	if err := d.sink.Send(ctx, strconv.FormatInt(in.DeliveryID, 10), payload); err != nil {
		return fmt.Errorf("send intent %s: %w", in.ID, err)
	}
	d.logger.Debug("notification intent dispatched", logx.String("intent_id", in.ID))
	return nil
}

func validate(in domain.NotificationIntent) error {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Message) == "" || in.DeliveryID <= 0 {
		return apperr.ErrInvalid
	}
	if in.Channel != domain.ChannelSMS && in.Channel != domain.ChannelPush {
		return apperr.ErrInvalid
	}
	return nil
}

// LogSink writes intents to the log. Used when no broker is configured.
type LogSink struct {
	logger logx.Logger
}

// NewLogSink returns a LogSink.
func NewLogSink(logger logx.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the intent.
func (s *LogSink) Send(_ context.Context, key string, value []byte) error {
	s.logger.Info("notification intent", logx.String("key", key), logx.String("payload", string(value)))
	return nil
}
