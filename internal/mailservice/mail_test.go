package mailservice

import (
	"errors"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	mockParser := new(MockTemplate)
	mockDialer := new(MockDialer)

	mailer := Mail{
		dialer: mockDialer,
		parser: mockParser,
		sender: "sender@example.com",
	}

	rendered := &Rendered{Subject: "  Test Subject\n", PlainBody: "Test Plain Body", HTMLBody: "<p>Test HTML Body</p>"}
	mockParser.On("Render", "template.html", mock.Anything).Return(rendered, nil)

	mockDialer.On("DialAndSend", mock.MatchedBy(func(msgs []*mail.Message) bool {
		return len(msgs) == 1 &&
			msgs[0].GetHeader("To")[0] == "test@example.com" &&
			msgs[0].GetHeader("From")[0] == "sender@example.com" &&
			msgs[0].GetHeader("Subject")[0] == "Test Subject"
	})).Return(nil)

	err := mailer.send("test@example.com", struct{ Name string }{"Jane"}, "template.html")
	assert.NoError(t, err)

	mockParser.AssertExpectations(t)
	mockDialer.AssertExpectations(t)
}

func TestSendEmailTemplateError(t *testing.T) {
	mockParser := new(MockTemplate)
	mockDialer := new(MockDialer)

	mailer := Mail{
		dialer: mockDialer,
		parser: mockParser,
		sender: "sender@example.com",
	}

	mockParser.On("Render", "missing.html", mock.Anything).Return(nil, errors.New("no such template"))

	err := mailer.send("test@example.com", nil, "missing.html")
	assert.Error(t, err)

	mockDialer.AssertNotCalled(t, "DialAndSend", mock.Anything)
}

func TestSendEmailDialError(t *testing.T) {
	mockParser := new(MockTemplate)
	mockDialer := new(MockDialer)

	mailer := Mail{
		dialer: mockDialer,
		parser: mockParser,
		sender: "sender@example.com",
	}

	mockParser.On("Render", "template.html", mock.Anything).Return(&Rendered{Subject: "s"}, nil)
	mockDialer.On("DialAndSend", mock.Anything).Return(errors.New("connection refused"))

	err := mailer.send("test@example.com", nil, "template.html")
	assert.EqualError(t, err, "connection refused")
}
