package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const resendBaseURL = "https://api.resend.com"

// ResendMailer delivers through the Resend transactional email API
type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: resendBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (rm *ResendMailer) Send(email OutgoingEmail) (string, error) {
	payload := resendRequest{
		From:    rm.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    withPreheader(email.HTMLContent, email.PreviewText),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, rm.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+rm.apiKey)
	req.Header.Set("Content-Type", "application/json")
	// Guards against double delivery when a send is retried manually
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := rm.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	var result resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return "", nil
		}
		return "", fmt.Errorf("resend returned status %d", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Message != "" {
			return "", fmt.Errorf("resend returned status %d: %s", resp.StatusCode, result.Message)
		}
		return "", fmt.Errorf("resend returned status %d", resp.StatusCode)
	}

	return result.ID, nil
}
