// Package ingest composes signature verification, payload validation and the
// message store into the webhook ingestion pipeline.
package ingest

import (
	"encoding/json"
	"fmt"

	"ai.lyftr.inbox/internal/metrics"
	"ai.lyftr.inbox/internal/model"
	"ai.lyftr.inbox/pkg/signature"
	"github.com/labstack/gommon/log"
)

type MessageStore interface {
	Insert(payload *model.WebhookPayload) (bool, error)
}

type ResultKind int

const (
	ResultStored ResultKind = iota
	ResultInvalidSignature
	ResultMalformedPayload
	ResultValidationFailed
	ResultStorageError
)

// Result is the outcome of one ingestion attempt. Exactly one pipeline stage
// decides the kind: Detail is set for caller errors, MessageID and Duplicate
// for stored messages.
type Result struct {
	Kind      ResultKind
	MessageID string
	Duplicate bool
	Detail    string
}

type service struct {
	secret []byte
	store  MessageStore
}

func New(secret string, store MessageStore) *service {
	return &service{[]byte(secret), store}
}

// Ingest runs verify, parse, validate and insert over a raw webhook body,
// short-circuiting at the first failing stage. Retries with the same
// message_id are safe: they land as stored duplicates.
func (s *service) Ingest(body []byte, providedSignature string) Result {
	if !signature.Verify(s.secret, body, providedSignature) {
		log.Error("invalid webhook signature")
		metrics.RecordWebhookResult("invalid_signature")
		return Result{Kind: ResultInvalidSignature}
	}

	payload := &model.WebhookPayload{}
	if err := json.Unmarshal(body, payload); err != nil {
		log.Errorf("unmarshalling webhook payload: %+v", err)
		metrics.RecordWebhookResult("validation_error")
		return Result{Kind: ResultMalformedPayload, Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := payload.Validate(); err != nil {
		log.Errorf("invalid webhook payload: %+v", err)
		metrics.RecordWebhookResult("validation_error")
		return Result{Kind: ResultValidationFailed, Detail: err.Error()}
	}

	duplicate, err := s.store.Insert(payload)
	if err != nil {
		log.Errorf("inserting message %s: %+v", payload.MessageID, err)
		metrics.RecordWebhookResult("insert_error")
		return Result{Kind: ResultStorageError}
	}

	result := "created"
	if duplicate {
		result = "duplicate"
	}
	log.Infof("webhook processed: message_id=%s dup=%t result=%s", payload.MessageID, duplicate, result)
	metrics.RecordWebhookResult(result)

	return Result{Kind: ResultStored, MessageID: payload.MessageID, Duplicate: duplicate}
}
