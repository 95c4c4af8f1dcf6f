package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai.lyftr.inbox/internal/boot"
	"ai.lyftr.inbox/internal/messagestore"
	"ai.lyftr.inbox/internal/model"
	"ai.lyftr.inbox/internal/service/ingest"
	"ai.lyftr.inbox/pkg/signature"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "testsecret"

type testStore interface {
	MessageStore
	Insert(payload *model.WebhookPayload) (bool, error)
	Close() error
}

var serverCounter int

func newTestServer(t *testing.T, secret string) (*echo.Echo, testStore) {
	t.Helper()

	serverCounter++
	store, err := messagestore.New(fmt.Sprintf("handlers%d.db?mode=memory&cache=shared", serverCounter))
	if err != nil {
		t.Fatalf("creating store: %+v", err)
	}
	t.Cleanup(func() { store.Close() })

	config := &boot.Config{WebhookSecret: secret}

	server := echo.New()
	server.POST("/webhook", Webhook(ingest.New(secret, store)))
	server.GET("/messages", ListMessages(store))
	server.GET("/stats", GetStats(store))
	server.GET("/health/live", HealthLive())
	server.GET("/health/ready", HealthReady(config, store))

	return server, store
}

func seed(t *testing.T, store testStore, id string, from string, ts string, text string) {
	t.Helper()

	duplicate, err := store.Insert(&model.WebhookPayload{
		MessageID: id,
		From:      from,
		To:        "+14155550100",
		Timestamp: ts,
		Text:      &text,
	})
	if err != nil || duplicate {
		t.Fatalf("seeding message %s: duplicate=%t err=%+v", id, duplicate, err)
	}
}

func postWebhook(server *echo.Echo, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sig != "" {
		req.Header.Set(SignatureHeader, sig)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func get(server *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestWebhookEndpoint(t *testing.T) {
	assert := assert.New(t)
	server, _ := newTestServer(t, testSecret)

	body, err := json.Marshal(map[string]interface{}{
		"message_id": "m1",
		"from":       "+919876543210",
		"to":         "+14155550100",
		"timestamp":  "2025-01-15T10:00:00Z",
		"text":       "Hello",
	})
	assert.Nil(err)
	sig := signature.Compute([]byte(testSecret), body)

	t.Run("stores a signed message", func(t *testing.T) {
		rec := postWebhook(server, body, sig)
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{"status":"ok"}`, rec.Body.String())
	})

	t.Run("duplicate delivery is still ok", func(t *testing.T) {
		rec := postWebhook(server, body, sig)
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{"status":"ok"}`, rec.Body.String())
	})

	t.Run("wrong signature", func(t *testing.T) {
		rec := postWebhook(server, body, "deadbeef")
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing signature header", func(t *testing.T) {
		rec := postWebhook(server, body, "")
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		malformed := []byte(`{not json`)
		rec := postWebhook(server, malformed, signature.Compute([]byte(testSecret), malformed))
		assert.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("invalid fields", func(t *testing.T) {
		invalid, err := json.Marshal(map[string]interface{}{
			"message_id": "m2",
			"from":       "919876543210",
			"to":         "+14155550100",
			"timestamp":  "2025-01-15T10:00:00Z",
		})
		assert.Nil(err)

		rec := postWebhook(server, invalid, signature.Compute([]byte(testSecret), invalid))
		assert.Equal(http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(rec.Body.String(), "from")
	})
}

func TestMessagesEndpoint(t *testing.T) {
	assert := assert.New(t)
	server, store := newTestServer(t, testSecret)

	for i := 0; i < 5; i++ {
		from := "+111"
		if i == 4 {
			from = "+222"
		}
		seed(t, store, fmt.Sprintf("m%d", i), from, fmt.Sprintf("2025-01-15T1%d:00:00Z", i), "Hello")
	}

	t.Run("defaults", func(t *testing.T) {
		rec := get(server, "/messages")
		assert.Equal(http.StatusOK, rec.Code)

		response := MessageListResponse{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(5, response.Total)
		assert.Equal(DefaultListLimit, response.Limit)
		assert.Equal(0, response.Offset)
		assert.Len(response.Data, 5)
	})

	t.Run("pagination keeps the full total", func(t *testing.T) {
		rec := get(server, "/messages?limit=2&offset=0")

		response := MessageListResponse{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(5, response.Total)
		if assert.Len(response.Data, 2) {
			assert.Equal("m0", response.Data[0].MessageID)
			assert.Equal("m1", response.Data[1].MessageID)
		}
	})

	t.Run("limit and offset are clamped", func(t *testing.T) {
		rec := get(server, "/messages?limit=500&offset=-3")

		response := MessageListResponse{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(MaxListLimit, response.Limit)
		assert.Equal(0, response.Offset)
	})

	t.Run("filters compose", func(t *testing.T) {
		rec := get(server, "/messages?from=%2B111&since=2025-01-15T12:00:00Z")

		response := MessageListResponse{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(2, response.Total)
		for _, item := range response.Data {
			assert.Equal("+111", item.From)
			assert.GreaterOrEqual(item.Timestamp, "2025-01-15T12:00:00Z")
		}
	})

	t.Run("created_at stays internal", func(t *testing.T) {
		rec := get(server, "/messages?limit=1")
		assert.NotContains(rec.Body.String(), "created_at")
	})
}

func TestStatsEndpoint(t *testing.T) {
	assert := assert.New(t)

	t.Run("empty store", func(t *testing.T) {
		server, _ := newTestServer(t, testSecret)

		rec := get(server, "/stats")
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{
			"total_messages": 0,
			"senders_count": 0,
			"messages_per_sender": [],
			"first_message_timestamp": null,
			"last_message_timestamp": null
		}`, rec.Body.String())
	})

	t.Run("aggregates", func(t *testing.T) {
		server, store := newTestServer(t, testSecret)
		for i, from := range []string{"+111", "+111", "+111", "+222"} {
			seed(t, store, fmt.Sprintf("m%d", i), from, fmt.Sprintf("2025-01-15T1%d:00:00Z", i), "Hello")
		}

		rec := get(server, "/stats")
		assert.Equal(http.StatusOK, rec.Code)

		stats := model.Stats{}
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(4, stats.TotalMessages)
		assert.Equal(2, stats.SendersCount)
		if assert.Len(stats.MessagesPerSender, 2) {
			assert.Equal("+111", stats.MessagesPerSender[0].From)
			assert.Equal(3, stats.MessagesPerSender[0].Count)
		}
		if assert.NotNil(stats.FirstMessageTimestamp) {
			assert.Equal("2025-01-15T10:00:00Z", *stats.FirstMessageTimestamp)
		}
		if assert.NotNil(stats.LastMessageTimestamp) {
			assert.Equal("2025-01-15T13:00:00Z", *stats.LastMessageTimestamp)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	assert := assert.New(t)

	t.Run("live", func(t *testing.T) {
		server, _ := newTestServer(t, testSecret)
		rec := get(server, "/health/live")
		assert.Equal(http.StatusOK, rec.Code)
	})

	t.Run("ready", func(t *testing.T) {
		server, _ := newTestServer(t, testSecret)
		rec := get(server, "/health/ready")
		assert.Equal(http.StatusOK, rec.Code)
	})

	t.Run("not ready without a secret", func(t *testing.T) {
		server, _ := newTestServer(t, "")
		rec := get(server, "/health/ready")
		assert.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("not ready when the store is gone", func(t *testing.T) {
		server, store := newTestServer(t, testSecret)
		store.Close()

		rec := get(server, "/health/ready")
		assert.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}
