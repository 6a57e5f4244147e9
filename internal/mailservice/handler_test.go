package mailservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/bloghub/internal/common"
)

func newTestService(mc common.MessageConsumer, m Mailer) (*MailService, *common.Metrics) {
	ctx, cancel := context.WithCancel(context.Background())
	metrics := common.NewTestMetrics()

	return &MailService{
		mb:      mc,
		m:       m,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics,
		retry:   retryPolicy{attempts: 3, baseDelay: time.Millisecond},
		ctx:     ctx,
		cancel:  cancel,
	}, metrics
}

func TestSendWelcomeEmail(t *testing.T) {
	mockMC := &MockMessageConsumer{Bodies: map[common.BindingKey][][]byte{
		common.UserCreatedKey: {
			[]byte(`{"name": "Jane", "email": "jane@example.com"}`),
			[]byte(`not json`),
		},
	}}
	mockMC.On("Consume", common.UserCreatedKey, common.BlogExchange, common.UserCreatedQueue).Return(nil)
	mockMailer := new(MockMailer)

	s, metrics := newTestService(mockMC, mockMailer)
	t.Cleanup(s.Close)

	require.NoError(t, s.SendWelcomeEmail())

	assert.Eventually(t, func() bool { return len(mockMailer.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.CounterMailsSent.WithLabelValues(welcomeTemplate, "invalid")) == 1
	}, time.Second, 10*time.Millisecond)

	sent := mockMailer.Sent()[0]
	assert.Equal(t, "jane@example.com", sent.Recipient)
	assert.Equal(t, welcomeTemplate, sent.Template)
	assert.Equal(t, common.UserCreatedEvent{Name: "Jane", Email: "jane@example.com"}, sent.Data)

	mockMC.AssertExpectations(t)
}

func TestSendCommentNotification(t *testing.T) {
	mockMC := &MockMessageConsumer{Bodies: map[common.BindingKey][][]byte{
		common.CommentCreatedKey: {
			[]byte(`{"owner_name": "Owner", "owner_email": "owner@example.com", "blog_title": "My Blog", "blog_slug": "my-blog", "comment_title": "Nice", "rating": 4}`),
		},
	}}
	mockMC.On("Consume", common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue).Return(nil)
	mockMailer := &MockMailer{FailTimes: 2, Err: errors.New("smtp down")}

	s, metrics := newTestService(mockMC, mockMailer)
	t.Cleanup(s.Close)

	require.NoError(t, s.SendCommentNotification())

	assert.Eventually(t, func() bool { return len(mockMailer.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, mockMailer.Calls())
	assert.Equal(t, "owner@example.com", mockMailer.Sent()[0].Recipient)
	assert.Equal(t, commentTemplate, mockMailer.Sent()[0].Template)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.CounterMailsSent.WithLabelValues(commentTemplate, "sent")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSendGivesUp(t *testing.T) {
	mockMC := &MockMessageConsumer{Bodies: map[common.BindingKey][][]byte{
		common.UserCreatedKey: {[]byte(`{"name": "Jane", "email": "jane@example.com"}`)},
	}}
	mockMC.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockMailer := &MockMailer{FailTimes: 100, Err: errors.New("smtp down")}

	s, metrics := newTestService(mockMC, mockMailer)
	t.Cleanup(s.Close)

	require.NoError(t, s.SendWelcomeEmail())

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.CounterMailsSent.WithLabelValues(welcomeTemplate, "failed")) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, mockMailer.Calls())
	assert.Empty(t, mockMailer.Sent())
}

func TestStartConsumeError(t *testing.T) {
	mockMC := &MockMessageConsumer{}
	mockMC.On("Consume", common.UserCreatedKey, common.BlogExchange, common.UserCreatedQueue).Return(errors.New("channel closed"))

	s, _ := newTestService(mockMC, new(MockMailer))
	t.Cleanup(s.Close)

	assert.ErrorContains(t, s.Start(), "channel closed")
}
