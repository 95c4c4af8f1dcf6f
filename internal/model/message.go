package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxTextLength = 4096

// Message is the sole persisted entity. Timestamps are ISO-8601 UTC strings
// with a Z suffix, so lexical order equals chronological order.
type Message struct {
	MessageID string  `db:"message_id" json:"message_id"`
	From      string  `db:"from_msisdn" json:"from"`
	To        string  `db:"to_msisdn" json:"to"`
	Timestamp string  `db:"ts" json:"timestamp"`
	Text      *string `db:"text" json:"text"`
	CreatedAt string  `db:"created_at" json:"-"`
}

// WebhookPayload is the inbound message body posted to the webhook.
type WebhookPayload struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Timestamp string  `json:"timestamp"`
	Text      *string `json:"text"`
}

// Validate checks every field and aggregates the failures into a single
// *ValidationError.
func (p *WebhookPayload) Validate() error {
	failed := &ValidationError{}

	if p.MessageID == "" {
		failed.Add("message_id", "must not be empty")
	}
	if !isMSISDN(p.From) {
		failed.Add("from", "must start with + followed by digits")
	}
	if !isMSISDN(p.To) {
		failed.Add("to", "must start with + followed by digits")
	}
	if !isUTCTimestamp(p.Timestamp) {
		failed.Add("timestamp", "must be an ISO-8601 UTC timestamp ending in Z")
	}
	if p.Text != nil && utf8.RuneCountInString(*p.Text) > MaxTextLength {
		failed.Add("text", fmt.Sprintf("must be at most %d characters", MaxTextLength))
	}

	if len(failed.Fields) > 0 {
		return failed
	}
	return nil
}

func isMSISDN(v string) bool {
	if len(v) < 2 || v[0] != '+' {
		return false
	}
	for _, c := range v[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isUTCTimestamp(v string) bool {
	if !strings.HasSuffix(v, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339, v)
	return err == nil
}
