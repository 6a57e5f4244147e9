package mailservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/sushihentaime/bloghub/internal/common"
)

const (
	welcomeTemplate = "welcome_email.html"
	commentTemplate = "comment_notification_email.html"
)

var defaultRetry = retryPolicy{attempts: 5, baseDelay: 500 * time.Millisecond}

// decodeFunc turns a message body into the recipient and template data of one mail.
type decodeFunc func(body []byte) (recipient string, data any, err error)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, metrics *common.Metrics, logger *slog.Logger) (*MailService, error) {
	tp, err := NewTemplate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:      mb,
		m:       NewMailer(host, port, username, password, sender, tp),
		logger:  logger,
		metrics: metrics,
		retry:   defaultRetry,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start consumes every queue the mail service is responsible for.
func (s *MailService) Start() error {
	if err := s.SendWelcomeEmail(); err != nil {
		return err
	}

	return s.SendCommentNotification()
}

// SendWelcomeEmail greets every newly signed up user.
func (s *MailService) SendWelcomeEmail() error {
	return s.consume(common.UserCreatedKey, common.UserCreatedQueue, welcomeTemplate, func(body []byte) (string, any, error) {
		var event common.UserCreatedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return "", nil, err
		}

		return event.Email, event, nil
	})
}

// SendCommentNotification tells blog owners about new reviews of their blogs.
func (s *MailService) SendCommentNotification() error {
	return s.consume(common.CommentCreatedKey, common.CommentCreatedQueue, commentTemplate, func(body []byte) (string, any, error) {
		var event common.CommentCreatedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return "", nil, err
		}

		return event.OwnerEmail, event, nil
	})
}

func (s *MailService) consume(key common.BindingKey, queue common.Queue, templateFile string, decode decodeFunc) error {
	msgs, err := s.mb.Consume(key, common.BlogExchange, queue)
	if err != nil {
		return fmt.Errorf("could not consume %s: %w", queue, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				s.handle(msg, templateFile, decode)

			case <-s.ctx.Done():
				s.logger.Info("stopping mail consumer", slog.String("queue", string(queue)))
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handle(msg amqp.Delivery, templateFile string, decode decodeFunc) {
	// a message is acknowledged in every case, a mail that cannot be sent is dropped after logging
	defer msg.Ack(false)

	recipient, data, err := decode(msg.Body)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("template", templateFile), slog.String("error", err.Error()))
		s.metrics.CounterMailsSent.WithLabelValues(templateFile, "invalid").Inc()
		return
	}

	if err := s.deliver(recipient, data, templateFile); err != nil {
		s.logger.Error("could not send email", slog.String("email", recipient), slog.String("template", templateFile), slog.String("error", err.Error()))
		s.metrics.CounterMailsSent.WithLabelValues(templateFile, "failed").Inc()
		return
	}

	s.logger.Info("email sent", slog.String("email", recipient), slog.String("template", templateFile))
	s.metrics.CounterMailsSent.WithLabelValues(templateFile, "sent").Inc()
}

// deliver sends one mail using exponential backoff with jitter between attempts.
func (s *MailService) deliver(recipient string, data any, templateFile string) error {
	var err error

	for attempt := 0; attempt < s.retry.attempts; attempt++ {
		err = s.m.send(recipient, data, templateFile)
		if err == nil {
			return nil
		}

		if attempt == s.retry.attempts-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.retry.baseDelay) << uint(attempt)))
		s.logger.Warn("delaying email", slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}

	return err
}

// Close stops the consumers and waits for the mail in flight.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
