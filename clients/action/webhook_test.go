package action

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhook_Dispatch(t *testing.T) {
	var got webhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, err := NewWebhook(&WebhookConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}

	if err := d.Dispatch(context.Background(), Action{Label: "fan_on", Distance: 12.5}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got.Label != "fan_on" || got.Distance != 12.5 {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d, err := NewWebhook(&WebhookConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}

	if err := d.Dispatch(context.Background(), Action{Label: "x"}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestNewWebhook_Validation(t *testing.T) {
	if _, err := NewWebhook(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewWebhook(&WebhookConfig{}); err == nil {
		t.Error("expected error for empty URL")
	}
}
