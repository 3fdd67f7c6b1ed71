package smssvc

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logsvc "github.com/durusapp/durus/services/logger"
)

type fakeProvider struct {
	name string
	fail bool
	sent []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Send(_ context.Context, to, _ string) error {
	if p.fail {
		return errors.New(p.name + " is down")
	}
	p.sent = append(p.sent, to)
	return nil
}

func testLogger() *logsvc.StdLogger {
	return logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
}

func TestGatewayFallback(t *testing.T) {
	ctx := context.Background()
	primary := &fakeProvider{name: "primary", fail: true}
	backup := &fakeProvider{name: "backup"}
	gw := NewGateway(testLogger(), primary, backup)

	require.NoError(t, gw.Send(ctx, "+213 555 00 01 11", "hello"))
	assert.Empty(t, primary.sent)
	assert.Equal(t, []string{"+213555000111"}, backup.sent)
}

func TestGatewayAllProvidersFail(t *testing.T) {
	gw := NewGateway(testLogger(), &fakeProvider{name: "a", fail: true}, &fakeProvider{name: "b", fail: true})
	err := gw.Send(context.Background(), "+213555000111", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all SMS providers failed")
}

func TestGatewayNoProviders(t *testing.T) {
	gw := NewGateway(testLogger())
	err := gw.Send(context.Background(), "+213555000111", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SMS provider configured")
}

func TestGatewayEmptyPhone(t *testing.T) {
	gw := NewGateway(testLogger(), &fakeProvider{name: "a"})
	assert.Error(t, gw.Send(context.Background(), "  ", "hello"))
}

func TestGatewayRateLimit(t *testing.T) {
	p := &fakeProvider{name: "a"}
	gw := NewGateway(testLogger(), p)

	// default config allows a burst of 3 per phone
	ctx := context.Background()
	require.NoError(t, gw.Send(ctx, "+213555000111", "1"))
	require.NoError(t, gw.Send(ctx, "+213555000111", "2"))
	require.NoError(t, gw.Send(ctx, "+213555000111", "3"))

	err := gw.Send(ctx, "+213555000111", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")

	// other phones are unaffected
	assert.NoError(t, gw.Send(ctx, "+213555000222", "1"))
	assert.Len(t, p.sent, 4)
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "+213555000111", CleanPhone(" +213 555-000.111 "))
	assert.Equal(t, "+213555000111", CleanPhone("(+213) 555 000 111"))
	assert.Equal(t, "", CleanPhone("   "))
}

func TestNewGatewayFromConfig(t *testing.T) {
	gw, err := NewGatewayFromConfig(testLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}
