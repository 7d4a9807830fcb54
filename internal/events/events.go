// Package events publishes ledger activity to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mmynk/duesbook/internal/models"
)

// Publisher delivers activity entries. Publishing is best effort: the ledger
// logs a failed publish and carries on, since the entry is already stored.
type Publisher interface {
	Publish(ctx context.Context, activity *models.Activity) error
	Close() error
}

// Message is the wire form of an activity entry.
type Message struct {
	ID      string            `json:"id"`
	Action  models.Action     `json:"action"`
	ActorID string            `json:"actor_id"`
	At      int64             `json:"at"`
	Kind    models.DetailKind `json:"kind"`
	Detail  json.RawMessage   `json:"detail"`
}

// NewMessage converts an activity entry into its wire form.
func NewMessage(activity *models.Activity) (*Message, error) {
	kind, payload, err := models.EncodeDetail(activity.Detail)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:      activity.ID,
		Action:  activity.Action,
		ActorID: activity.ActorID,
		At:      activity.At,
		Kind:    kind,
		Detail:  payload,
	}, nil
}

// Activity restores the activity entry carried by the message.
func (m *Message) Activity() (*models.Activity, error) {
	detail, err := models.DecodeDetail(m.Kind, m.Detail)
	if err != nil {
		return nil, err
	}
	return &models.Activity{
		ID:      m.ID,
		Action:  m.Action,
		ActorID: m.ActorID,
		At:      m.At,
		Detail:  detail,
	}, nil
}

// ToJSON encodes the message body.
func (m *Message) ToJSON() ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity message: %w", err)
	}
	return body, nil
}

// NopPublisher drops every entry. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.Activity) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// MemoryPublisher keeps published entries in memory.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []*Message
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, activity *models.Activity) error {
	msg, err := NewMessage(activity)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Messages returns a copy of everything published so far, oldest first.
func (p *MemoryPublisher) Messages() []*Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Message, len(p.messages))
	copy(out, p.messages)
	return out
}
