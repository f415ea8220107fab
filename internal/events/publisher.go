// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// Notifier publishes toolhub events to the configured topics.
type Notifier struct {
	publisher        message.Publisher
	catalogTopic     string
	interactionTopic string
}

// NewNotifier creates a notifier. Empty topics fall back to the defaults.
func NewNotifier(pub message.Publisher, catalogTopic, interactionTopic string) *Notifier {
	if catalogTopic == "" {
		catalogTopic = DefaultCatalogTopic
	}
	if interactionTopic == "" {
		interactionTopic = DefaultInteractionTopic
	}
	return &Notifier{
		publisher:        pub,
		catalogTopic:     catalogTopic,
		interactionTopic: interactionTopic,
	}
}

// CatalogChanged publishes a catalog change.
func (n *Notifier) CatalogChanged(event *CatalogChanged) error {
	return n.publish(n.catalogTopic, event)
}

// InteractionRecorded publishes an interaction.
func (n *Notifier) InteractionRecorded(event *InteractionRecorded) error {
	return n.publish(n.interactionTopic, event)
}

func (n *Notifier) publish(topic string, event validatable) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	// JetStream deduplicates on this header within the stream window
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if err := n.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
