package enqueue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staylink-admin/config"
	"staylink-admin/internal/app/drafts"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type queuedDraftWriterFunc func(ctx context.Context, in drafts.UpsertQueuedInput) (string, error)

func (f queuedDraftWriterFunc) UpsertQueued(ctx context.Context, in drafts.UpsertQueuedInput) (string, error) {
	return f(ctx, in)
}

func TestHandler_Handle_BadJSON(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: zap.NewNop().Sugar()}

	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader("{"))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHandler_Handle_MissingURL(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: zap.NewNop().Sugar()}

	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHandler_Handle_UnsupportedDomain(t *testing.T) {
	h := &Handler{cfg: &config.Config{}, logger: zap.NewNop().Sugar()}

	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader(`{"url":"https://example.com/x"}`))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHandler_Handle_RabbitMQDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.RabbitMQ.URL = ""
	h := &Handler{cfg: cfg, logger: zap.NewNop().Sugar()}

	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader(`{"url":"https://shopee.co.id/p-i.1.2"}`))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHandler_Handle_OK_PublishesDeterministicEventID(t *testing.T) {
	var gotExchange, gotKey string
	var gotPublishing amqp.Publishing
	var gotQueuedEventID, gotQueuedURL, gotQueuedSource string

	cfg := &config.Config{}
	cfg.RabbitMQ.URL = "amqp://example"
	cfg.RabbitMQ.Exchange = "events"
	cfg.RabbitMQ.RoutingKey = "affiliate.import.requested.v1"
	cfg.RabbitMQ.DeclareTopology = false

	h := &Handler{
		cfg:           cfg,
		logger:        zap.NewNop().Sugar(),
		sqliteEnabled: true,
		store: queuedDraftWriterFunc(func(ctx context.Context, in drafts.UpsertQueuedInput) (string, error) {
			_ = ctx
			gotQueuedEventID = in.EventID
			gotQueuedURL = in.URL
			gotQueuedSource = in.Source
			return "draft-1", nil
		}),
		publish: func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			_ = ctx
			_ = mandatory
			_ = immediate
			gotExchange = exchange
			gotKey = key
			gotPublishing = msg
			return nil
		},
	}

	url := "https://shopee.co.id/sepatu-i.111.222"
	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader(`{"url":"`+url+`"}`))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var gotResp struct {
		OK      bool   `json:"ok"`
		EventID string `json:"event_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &gotResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !gotResp.OK {
		t.Fatalf("expected ok=true, body=%s", w.Body.String())
	}
	if gotResp.ID != "draft-1" {
		t.Fatalf("expected draft id, got %q", gotResp.ID)
	}
	if !strings.HasPrefix(gotResp.EventID, "urlsha256:") {
		t.Fatalf("expected deterministic event id, got %q", gotResp.EventID)
	}
	if gotResp.EventID != eventIDFromURL(url) {
		t.Fatalf("event id mismatch: %q vs %q", gotResp.EventID, eventIDFromURL(url))
	}

	if gotExchange != "events" || gotKey != "affiliate.import.requested.v1" {
		t.Fatalf("published to exchange=%q key=%q", gotExchange, gotKey)
	}
	if gotPublishing.MessageId != gotResp.EventID {
		t.Fatalf("message id %q != event id %q", gotPublishing.MessageId, gotResp.EventID)
	}

	var env struct {
		EventName string `json:"event_name"`
		EventID   string `json:"event_id"`
		Data      struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(gotPublishing.Body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.EventName != "affiliate/import.requested" {
		t.Fatalf("event name %q", env.EventName)
	}
	if env.Data.URL != url {
		t.Fatalf("envelope url %q", env.Data.URL)
	}

	if gotQueuedEventID != gotResp.EventID || gotQueuedURL != url || gotQueuedSource != "shopee" {
		t.Fatalf("queued draft eventID=%q url=%q source=%q", gotQueuedEventID, gotQueuedURL, gotQueuedSource)
	}
}

func TestHandler_Handle_PersistFailureStillPublishes(t *testing.T) {
	var published bool

	cfg := &config.Config{}
	cfg.RabbitMQ.URL = "amqp://example"

	h := &Handler{
		cfg:           cfg,
		logger:        zap.NewNop().Sugar(),
		sqliteEnabled: true,
		store: queuedDraftWriterFunc(func(ctx context.Context, in drafts.UpsertQueuedInput) (string, error) {
			return "", context.DeadlineExceeded
		}),
		publish: func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
			published = true
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import/enqueue", strings.NewReader(`{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`))
	w := httptest.NewRecorder()

	h.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !published {
		t.Fatalf("expected message to be published despite persist failure")
	}
}
