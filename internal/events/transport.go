// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/toolhub/internal/config"
)

// Transport names accepted in EventsConfig.Transport.
const (
	TransportMemory   = "memory"
	TransportNATS     = "nats"
	TransportEmbedded = "embedded"
)

const (
	natsReconnectWait = 2 * time.Second
	natsAckWait       = 30 * time.Second
	natsMaxDeliver    = 5
	natsMaxAckPending = 256
)

// Transport bundles the publisher and subscriber of one event backend.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	kind   string
	server *EmbeddedServer
}

// Kind returns the transport name.
func (t *Transport) Kind() string {
	return t.kind
}

// NewTransport builds the backend selected by cfg.Transport.
func NewTransport(ctx context.Context, cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Transport {
	case TransportMemory, "":
		return NewMemoryTransport(logger), nil

	case TransportNATS:
		t, err := newNATSTransport(ctx, cfg, cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		return t, nil

	case TransportEmbedded:
		srv, err := NewEmbeddedServer(cfg.Host, cfg.Port, cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		t, err := newNATSTransport(ctx, cfg, srv.ClientURL(), logger)
		if err != nil {
			srv.Shutdown()
			return nil, err
		}
		t.kind = TransportEmbedded
		t.server = srv
		return t, nil

	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}
}

// NewMemoryTransport returns an in-process GoChannel transport. Messages
// published before a subscription exists are dropped.
func NewMemoryTransport(logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)
	return &Transport{
		Publisher:  pubSub,
		Subscriber: pubSub,
		kind:       TransportMemory,
	}
}

func newNATSTransport(ctx context.Context, cfg *config.EventsConfig, url string, logger watermill.LoggerAdapter) (*Transport, error) {
	if err := provisionStream(ctx, url, []string{cfg.CatalogTopic, cfg.InteractionTopic}); err != nil {
		return nil, err
	}

	natsOpts := connectionOptions(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.DurableName,
		SubscribersCount: 1,
		AckWaitTimeout:   natsAckWait,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(StreamName),
				natsgo.DeliverNew(),
				natsgo.MaxDeliver(natsMaxDeliver),
				natsgo.MaxAckPending(natsMaxAckPending),
				natsgo.AckWait(natsAckWait),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Transport{
		Publisher:  pub,
		Subscriber: sub,
		kind:       TransportNATS,
	}, nil
}

func connectionOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("toolhub"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(natsReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// provisionStream makes sure the event stream exists before the
// subscriber binds to it.
func provisionStream(ctx context.Context, url string, subjects []string) error {
	nc, err := natsgo.Connect(url, natsgo.Name("toolhub-provision"), natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	if _, err := EnsureStream(ctx, js, subjects); err != nil {
		return err
	}
	return nil
}

// Close shuts the publisher, the subscriber and, for the embedded
// transport, the server.
func (t *Transport) Close() error {
	var errs []error
	if t.Publisher != nil {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// GoChannel is both publisher and subscriber
	if t.Subscriber != nil && t.kind != TransportMemory {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if t.server != nil {
		t.server.Shutdown()
	}
	return errors.Join(errs...)
}
