package smssvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/durusapp/durus/core"
)

const nexmoAPIURL = "https://rest.nexmo.com/sms/json"

type nexmoProvider struct {
	apiKey    string
	apiSecret string
	from      string
	client    *http.Client
}

var _ Provider = (*nexmoProvider)(nil)

func NewNexmoProvider() *nexmoProvider {
	conf := core.Conf.SMS
	return &nexmoProvider{
		apiKey:    conf.NexmoApiKey,
		apiSecret: conf.NexmoApiSecret,
		from:      conf.NexmoFrom,
		client:    http.DefaultClient,
	}
}

func (p *nexmoProvider) Name() string { return "nexmo" }

func (p *nexmoProvider) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("api_key", p.apiKey)
	form.Set("api_secret", p.apiSecret)
	form.Set("from", p.from)
	form.Set("to", strings.TrimPrefix(to, "+"))
	form.Set("text", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nexmoAPIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "building nexmo request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling nexmo")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("nexmo returned status %d", res.StatusCode)
	}

	// nexmo reports per-message status in the body even on HTTP 200
	var out struct {
		Messages []struct {
			Status    string `json:"status"`
			ErrorText string `json:"error-text"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return errors.Wrap(err, "decoding nexmo response")
	}
	for _, m := range out.Messages {
		if m.Status != "0" {
			return errors.Errorf("nexmo rejected message: %s", m.ErrorText)
		}
	}
	return nil
}
