// Package notify dispatches patient-facing notifications: SMS through the
// Telnyx V2 API and optional email confirmations through SES or SendGrid.
// Every send is best-effort from the caller's perspective; a failed dispatch
// never rolls back the state change that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carepulse/intake-platform/pkg/logging"
)

var smsTracer = otel.Tracer("carepulse.internal.notify.sms")

const defaultTelnyxBaseURL = "https://api.telnyx.com/v2"

// Receipt reports the provider's acknowledgement of a dispatched message.
type Receipt struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	To        string `json:"to"`
}

// SMSSender sends a single SMS message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (*Receipt, error)
}

// TelnyxConfig holds configuration for the Telnyx V2 messaging API.
type TelnyxConfig struct {
	APIKey             string
	MessagingProfileID string
	FromNumber         string
	// BaseURL overrides the production endpoint. Tests point it at a local
	// server.
	BaseURL string
}

// TelnyxSender posts SMS messages using Telnyx's V2 API.
type TelnyxSender struct {
	apiKey             string
	messagingProfileID string
	fromNumber         string
	baseURL            string
	httpClient         *http.Client
	logger             *logging.Logger
}

// NewTelnyxSender builds a sender for the Telnyx V2 API.
func NewTelnyxSender(cfg TelnyxConfig, logger *logging.Logger) *TelnyxSender {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultTelnyxBaseURL
	}
	return &TelnyxSender{
		apiKey:             cfg.APIKey,
		messagingProfileID: cfg.MessagingProfileID,
		fromNumber:         cfg.FromNumber,
		baseURL:            baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ SMSSender = (*TelnyxSender)(nil)

// SendSMS dispatches a single SMS, retrying transient failures up to three
// attempts. A 4xx response fails immediately.
func (s *TelnyxSender) SendSMS(ctx context.Context, to, body string) (*Receipt, error) {
	if s.apiKey == "" {
		return nil, errors.New("notify: telnyx api key missing")
	}
	if to == "" {
		return nil, errors.New("notify: recipient required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("notify: message body required")
	}

	ctx, span := smsTracer.Start(ctx, "notify.telnyx.send")
	defer span.End()
	span.SetAttributes(attribute.String("carepulse.sms_to", to))

	payload := map[string]interface{}{
		"from": s.fromNumber,
		"to":   to,
		"text": body,
	}
	if s.messagingProfileID != "" {
		payload["messaging_profile_id"] = s.messagingProfileID
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to marshal telnyx payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payloadBytes))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				receipt := &Receipt{Status: "queued", To: to}
				var parsed struct {
					Data struct {
						ID     string `json:"id"`
						Status string `json:"status"`
					} `json:"data"`
				}
				if len(respBody) > 0 && json.Unmarshal(respBody, &parsed) == nil {
					if parsed.Data.ID != "" {
						receipt.MessageID = parsed.Data.ID
					}
					if parsed.Data.Status != "" {
						receipt.Status = parsed.Data.Status
					}
				}
				s.logger.Info("telnyx sms sent", "to", to, "message_id", receipt.MessageID)
				return receipt, nil
			}

			var errorBody map[string]interface{}
			if len(respBody) > 0 && json.Unmarshal(respBody, &errorBody) == nil {
				lastErr = fmt.Errorf("notify: telnyx send failed: status %d, body: %v", resp.StatusCode, errorBody)
			} else {
				lastErr = fmt.Errorf("notify: telnyx send failed: status %d", resp.StatusCode)
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
		}

		if attempt < 3 {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			time.Sleep(sleep)
		}
	}

	span.RecordError(lastErr)
	s.logger.Error("failed to send telnyx sms", "error", lastErr, "to", to)
	return nil, lastErr
}
