package mailservice

import (
	"sync"

	"github.com/go-mail/mail/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/bloghub/internal/common"
)

type MockTemplate struct {
	mock.Mock
}

func (m *MockTemplate) Render(name string, data any) (*Rendered, error) {
	args := m.Called(name, data)
	rendered, _ := args.Get(0).(*Rendered)
	return rendered, args.Error(1)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

type sentMail struct {
	Recipient string
	Template  string
	Data      any
}

// MockMailer records every mail it is asked to send. The first FailTimes sends return Err.
type MockMailer struct {
	mu        sync.Mutex
	sent      []sentMail
	calls     int
	FailTimes int
	Err       error
}

func (m *MockMailer) send(recipient string, data any, templateFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.calls <= m.FailTimes {
		return m.Err
	}

	m.sent = append(m.sent, sentMail{Recipient: recipient, Template: templateFile, Data: data})

	return nil
}

func (m *MockMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentMail(nil), m.sent...)
}

func (m *MockMailer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// MockMessageConsumer delivers the bodies registered per binding key and then closes the channel.
type MockMessageConsumer struct {
	mock.Mock
	Bodies map[common.BindingKey][][]byte
}

func (m *MockMessageConsumer) Consume(key common.BindingKey, exchange common.Exchange, queue common.Queue) (<-chan amqp.Delivery, error) {
	args := m.Called(key, exchange, queue)
	if err := args.Error(0); err != nil {
		return nil, err
	}

	bodies := m.Bodies[key]
	msgs := make(chan amqp.Delivery, len(bodies))
	for _, b := range bodies {
		msgs <- amqp.Delivery{Body: b}
	}
	close(msgs)

	return msgs, nil
}
