package smssvc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/durusapp/durus/core"
)

// Provider is one upstream SMS carrier API.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, body string) error
}

// Gateway fans a message out to the configured providers in order, stopping at
// the first success. A per-phone rate limiter protects parents from floods
// when a badge is swiped repeatedly.
type Gateway struct {
	providers []Provider
	logger    core.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

var _ core.SMSService = (*Gateway)(nil)

func NewGateway(logger core.Logger, providers ...Provider) *Gateway {
	conf := core.Conf.SMS
	limit := rate.Inf
	if conf.RatePeriod > 0 {
		limit = rate.Every(conf.RatePeriod)
	}
	return &Gateway{
		providers: providers,
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
		limit:     limit,
		burst:     conf.RateBurst,
	}
}

// NewGatewayFromConfig builds a Gateway with the providers named in
// core.Conf.SMS.Providers, in that order.
func NewGatewayFromConfig(logger core.Logger) (*Gateway, error) {
	conf := core.Conf.SMS
	providers := make([]Provider, 0, len(conf.Providers))
	for _, name := range conf.Providers {
		switch name {
		case "textbelt":
			providers = append(providers, NewTextBeltProvider())
		case "twilio":
			providers = append(providers, NewTwilioProvider())
		case "nexmo":
			providers = append(providers, NewNexmoProvider())
		case "console":
			providers = append(providers, NewConsoleProvider(logger))
		default:
			return nil, errors.Errorf("unknown SMS provider %q", name)
		}
	}
	return NewGateway(logger, providers...), nil
}

func (g *Gateway) limiter(phone string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	lim, ok := g.limiters[phone]
	if !ok {
		lim = rate.NewLimiter(g.limit, g.burst)
		g.limiters[phone] = lim
	}
	return lim
}

func (g *Gateway) Send(ctx context.Context, phone, body string) error {
	phone = CleanPhone(phone)
	if phone == "" {
		return errors.New("empty phone number")
	}
	if !g.limiter(phone).Allow() {
		return errors.Errorf("rate limit exceeded for %s", phone)
	}

	var lastErr error
	for _, p := range g.providers {
		if err := p.Send(ctx, phone, body); err != nil {
			g.logger.Warn(fmt.Sprintf("SMS via %s to %s failed: %v", p.Name(), phone, err), err)
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return errors.New("no SMS provider configured")
	}
	return errors.Wrap(lastErr, "all SMS providers failed")
}

// CleanPhone strips spaces, dashes and dots from a phone number.
func CleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
