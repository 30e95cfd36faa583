package webhook

import (
	"errors"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

// ErrInvalidSignature reports a callback whose signature headers do not match the secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier checks Standard Webhooks signatures (webhook-id, webhook-timestamp, webhook-signature).
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier parses a "whsec_" secret.
func NewVerifier(secret string) (*Verifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("parse webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify validates the raw payload against the request headers.
func (v *Verifier) Verify(payload []byte, headers http.Header) error {
	if err := v.wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
