package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"randevu.backend/internal/config"
	"randevu.backend/internal/domain/gateways"
	"randevu.backend/pkg/logger"
	"randevu.backend/pkg/phone"
)

const defaultEndpoint = "https://api.mobizon.kz/service/message/sendsmsmessage"

// Client dispatches SMS through the Mobizon HTTP API.
// It implements gateways.SMSGateway.
type Client struct {
	apiKey   string
	sender   string
	dryRun   bool
	endpoint string
	http     *http.Client
}

type apiResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// NewClient creates a gateway client from configuration.
// Without an API key the client always runs in dry-run mode.
func NewClient(cfg config.SMSConfig) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		sender:   cfg.Sender,
		dryRun:   cfg.DryRun || cfg.APIKey == "",
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send dispatches a message to an E.164 phone number. The gateway
// expects its local dialing format, so the leading "+" is stripped
// before the call.
func (c *Client) Send(ctx context.Context, phoneNumber, message string) (*gateways.SendResult, error) {
	recipient := toLocalFormat(phoneNumber)

	if c.dryRun {
		logger.Info(ctx, "SMS dry-run dispatch",
			zap.String("phone", phone.Mask(phoneNumber)),
			zap.Int("message_len", len(message)),
		)
		return &gateways.SendResult{Success: true, MessageID: "dry-run"}, nil
	}

	form := url.Values{
		"apiKey":    {c.apiKey},
		"recipient": {recipient},
		"text":      {message},
	}
	if c.sender != "" {
		form.Set("from", c.sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sms response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse sms response: %w", err)
	}
	if result.Code != 0 {
		return &gateways.SendResult{Success: false}, fmt.Errorf("sms gateway returned error code %d", result.Code)
	}

	return &gateways.SendResult{Success: true, MessageID: result.Data.MessageID}, nil
}

// toLocalFormat converts E.164 to the gateway's dialing format
func toLocalFormat(e164 string) string {
	return strings.TrimPrefix(e164, "+")
}
