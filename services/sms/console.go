package smssvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/durusapp/durus/core"
)

// consoleProvider logs messages instead of sending them; used in DEV and TEST.
type consoleProvider struct {
	logger core.Logger

	mu   sync.Mutex
	sent []SentSMS
}

type SentSMS struct {
	To   string
	Body string
}

var _ Provider = (*consoleProvider)(nil)

func NewConsoleProvider(logger core.Logger) *consoleProvider {
	return &consoleProvider{logger: logger}
}

func (p *consoleProvider) Name() string { return "console" }

func (p *consoleProvider) Send(_ context.Context, to, body string) error {
	p.mu.Lock()
	p.sent = append(p.sent, SentSMS{To: to, Body: body})
	p.mu.Unlock()
	p.logger.Info(fmt.Sprintf("SMS to %s: %s", to, body))
	return nil
}

// Sent returns a copy of everything sent so far.
func (p *consoleProvider) Sent() []SentSMS {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SentSMS, len(p.sent))
	copy(out, p.sent)
	return out
}
