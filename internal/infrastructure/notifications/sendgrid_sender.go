package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/careband/postop-triage/pkg/config"
)

// SendGridSender sends staff alerts via the SendGrid v3 mail API
type SendGridSender struct {
	apiKey     string
	from       string
	to         string
	httpClient *http.Client
	baseURL    string
}

// NewSendGridSender creates a new SendGrid sender
func NewSendGridSender(cfg *config.EmailConfig) (*SendGridSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("SENDGRID_API_KEY, ALERT_EMAIL_FROM and ALERT_EMAIL_TO must be set")
	}

	return &SendGridSender{
		apiKey: cfg.APIKey,
		from:   cfg.From,
		to:     cfg.To,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.sendgrid.com/v3",
	}, nil
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sendGridMail is the v3 mail/send request body
type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// SendAlert sends a plain-text alert email to the configured recipient
func (s *SendGridSender) SendAlert(ctx context.Context, subject, body string) error {
	mail := sendGridMail{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: s.to}}},
		},
		From:    sendGridAddress{Email: s.from},
		Subject: subject,
		Content: []sendGridContent{
			{Type: "text/plain", Value: body},
		},
	}

	jsonData, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}

	url := s.baseURL + "/mail/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
