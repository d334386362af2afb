package source

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Veraticus/word-ntfy/pkg/types"
)

// CloudEvent types carried on the bus
const (
	CreatedEventType = "chat.message.created"
	UpdatedEventType = "chat.message.updated"
)

// DefaultSubject is the subject subscribed to when none is configured
const DefaultSubject = "chat.messages"

// SubscriberConfig holds the configuration for the NATS subscriber
type SubscriberConfig struct {
	URL        string // NATS server URL
	Subject    string // Subject to subscribe to
	QueueGroup string // Queue group name (optional)
}

// Subscriber receives CloudEvent encoded message events from NATS
type Subscriber struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	config  SubscriberConfig
	handler Handler
	logger  *zap.Logger
}

// NewSubscriber connects to NATS
func NewSubscriber(config SubscriberConfig, handler Handler, logger *zap.Logger) (*Subscriber, error) {
	if config.Subject == "" {
		config.Subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	nc, err := nats.Connect(config.URL,
		nats.Name("word-ntfy"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", config.URL, err)
	}

	return &Subscriber{
		conn:    nc,
		config:  config,
		handler: handler,
		logger:  logger,
	}, nil
}

// Subscribe registers the subscription with the server
func (s *Subscriber) Subscribe() error {
	var err error
	if s.config.QueueGroup != "" {
		s.sub, err = s.conn.QueueSubscribe(s.config.Subject, s.config.QueueGroup, s.handleMessage)
	} else {
		s.sub, err = s.conn.Subscribe(s.config.Subject, s.handleMessage)
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.config.Subject, err)
	}
	if err := s.conn.Flush(); err != nil {
		return fmt.Errorf("failed to flush subscription: %w", err)
	}
	s.logger.Info("subscribed to message events",
		zap.String("subject", s.config.Subject),
		zap.String("queue", s.config.QueueGroup))
	return nil
}

// Run subscribes and blocks until ctx is done
func (s *Subscriber) Run(ctx context.Context) error {
	if err := s.Subscribe(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop unsubscribes and closes the connection
func (s *Subscriber) Stop() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			s.logger.Warn("error unsubscribing", zap.Error(err))
		}
		s.sub = nil
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ev, err := DecodeCloudEvent(msg.Data)
	if err != nil {
		s.logger.Warn("skipping undecodable event",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}
	s.handler(ev)
}

// DecodeCloudEvent parses a structured-mode CloudEvent into a message event
func DecodeCloudEvent(data []byte) (types.MessageEvent, error) {
	ce := cloudevents.NewEvent()
	if err := ce.UnmarshalJSON(data); err != nil {
		return types.MessageEvent{}, fmt.Errorf("invalid CloudEvent: %w", err)
	}

	var kind types.EventType
	switch ce.Type() {
	case CreatedEventType:
		kind = types.EventCreated
	case UpdatedEventType:
		kind = types.EventUpdated
	default:
		return types.MessageEvent{}, fmt.Errorf("unsupported event type %q", ce.Type())
	}

	msg := &types.Message{}
	if err := ce.DataAs(msg); err != nil {
		return types.MessageEvent{}, fmt.Errorf("invalid message payload: %w", err)
	}
	return types.MessageEvent{Type: kind, Message: msg}, nil
}

// EncodeCloudEvent wraps a message event in a structured-mode CloudEvent
func EncodeCloudEvent(ev types.MessageEvent, source string) ([]byte, error) {
	if ev.Message == nil {
		return nil, fmt.Errorf("event has no message")
	}

	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(source)
	ce.SetTime(time.Now())
	if ev.Type == types.EventUpdated {
		ce.SetType(UpdatedEventType)
	} else {
		ce.SetType(CreatedEventType)
	}
	if err := ce.SetData(cloudevents.ApplicationJSON, ev.Message); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return nil, err
	}
	return ce.MarshalJSON()
}

// Publish sends one message event to subject
func Publish(nc *nats.Conn, subject string, ev types.MessageEvent) error {
	data, err := EncodeCloudEvent(ev, "word-ntfy")
	if err != nil {
		return err
	}
	if err := nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nc.Flush()
}
