package smssvc

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/durusapp/durus/core"
)

const twilioAPIFormat = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

type twilioProvider struct {
	accountSid string
	authToken  string
	from       string
	client     *http.Client
}

var _ Provider = (*twilioProvider)(nil)

func NewTwilioProvider() *twilioProvider {
	conf := core.Conf.SMS
	return &twilioProvider{
		accountSid: conf.TwilioAccountSid,
		authToken:  conf.TwilioAuthToken,
		from:       conf.TwilioFromNumber,
		client:     http.DefaultClient,
	}
}

func (p *twilioProvider) Name() string { return "twilio" }

func (p *twilioProvider) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", p.from)
	form.Set("Body", body)

	endpoint := strings.Replace(twilioAPIFormat, "%s", p.accountSid, 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "building twilio request")
	}
	req.SetBasicAuth(p.accountSid, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling twilio")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("twilio returned status %d", res.StatusCode)
	}
	return nil
}
