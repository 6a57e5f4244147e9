package mailservice

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/bloghub/internal/common"
)

type MailService struct {
	mb      common.MessageConsumer
	m       Mailer
	logger  MailLogger
	metrics *common.Metrics
	retry   retryPolicy
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type MailLogger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// retryPolicy controls the exponential backoff with jitter used between send attempts.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

// Template holds the parsed mail templates keyed by file name.
type Template struct {
	set map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	Render(name string, data any) (*Rendered, error)
}
