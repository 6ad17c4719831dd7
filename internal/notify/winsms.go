package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SMSSender delivers a single SMS. The body is plain text, the phone
// already normalized to 216XXXXXXXX form.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

// WinSMSClient talks to the WinSMS Pro HTTP gateway.
type WinSMSClient struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

func NewWinSMSClient(endpoint, apiKey, sender string) *WinSMSClient {
	return &WinSMSClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *WinSMSClient) Send(ctx context.Context, phone, body string) error {
	q := url.Values{}
	q.Set("action", "send-sms")
	q.Set("api_key", c.apiKey)
	q.Set("to", phone)
	q.Set("from", c.sender)
	q.Set("sms", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("notify: build sms request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send sms: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify: sms gateway returned %d", resp.StatusCode)
	}
	return nil
}
