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

const textBeltAPIURL = "https://textbelt.com/text"

type textBeltProvider struct {
	apiKey string
	client *http.Client
}

var _ Provider = (*textBeltProvider)(nil)

func NewTextBeltProvider() *textBeltProvider {
	return &textBeltProvider{
		apiKey: core.Conf.SMS.TextBeltApiKey,
		client: http.DefaultClient,
	}
}

func (p *textBeltProvider) Name() string { return "textbelt" }

func (p *textBeltProvider) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("phone", to)
	form.Set("message", body)
	form.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, textBeltAPIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "building textbelt request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling textbelt")
	}
	defer res.Body.Close()

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return errors.Wrap(err, "decoding textbelt response")
	}
	if !out.Success {
		return errors.Errorf("textbelt rejected message: %s", out.Error)
	}
	return nil
}
