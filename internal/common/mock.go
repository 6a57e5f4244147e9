package common

import (
	"context"
	"sync"
)

type PublishedMessage struct {
	Key      BindingKey
	Exchange Exchange
	Body     []byte
}

// MockMessageProducer records published messages in memory. Err, when set, is returned by every Publish call.
type MockMessageProducer struct {
	mu       sync.Mutex
	Messages []PublishedMessage
	Err      error
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.Messages = append(m.Messages, PublishedMessage{Key: key, Exchange: exchange, Body: msg})

	return nil
}

func (m *MockMessageProducer) Published(key BindingKey) []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PublishedMessage
	for _, msg := range m.Messages {
		if msg.Key == key {
			out = append(out, msg)
		}
	}

	return out
}
