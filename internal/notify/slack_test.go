package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestSlackNotifier_Webhook(t *testing.T) {
	receivedMessage := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST request, got %s", r.Method)
		}

		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		receivedMessage, _ = payload["text"].(string)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackWebhookNotifier(server.URL)
	message := "BenchmarkA regressed by 2.50x"

	if err := notifier.Notify(context.Background(), message); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if receivedMessage != message {
		t.Errorf("expected message %q, got %q", message, receivedMessage)
	}
}

func TestSlackNotifier_Webhook_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewSlackWebhookNotifier(server.URL)

	if err := notifier.Notify(context.Background(), "test"); err == nil {
		t.Error("expected error for non-OK status code, got nil")
	}
}

func TestSlackNotifier_Bot(t *testing.T) {
	var gotChannel, gotText, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		values, _ := url.ParseQuery(string(body))
		if gotAuth == "" && values.Get("token") != "" {
			gotAuth = "Bearer " + values.Get("token")
		}
		gotChannel = values.Get("channel")
		gotText = values.Get("text")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	notifier := NewSlackBotNotifier("xoxb-test", "#benchmarks")
	notifier.APIURL = server.URL + "/"

	if err := notifier.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if gotChannel != "#benchmarks" {
		t.Errorf("expected channel #benchmarks, got %q", gotChannel)
	}
	if gotText != "hello" {
		t.Errorf("expected text hello, got %q", gotText)
	}
	if gotAuth != "Bearer xoxb-test" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
}

func TestSlackNotifier_Bot_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	notifier := NewSlackBotNotifier("xoxb-test", "#missing")
	notifier.APIURL = server.URL + "/"

	if err := notifier.Notify(context.Background(), "hello"); err == nil {
		t.Error("expected error for channel_not_found, got nil")
	}
}

func TestSlackNotifier_NotConfigured(t *testing.T) {
	notifier := &SlackNotifier{}

	if err := notifier.Notify(context.Background(), "test"); err == nil {
		t.Error("expected error for missing webhook and token, got nil")
	}
}

func TestSlackNotifier_ClientError(t *testing.T) {
	notifier := NewSlackWebhookNotifier("http://invalid-url")
	notifier.Client = &http.Client{Transport: &errorTransport{}}

	if err := notifier.Notify(context.Background(), "test"); err == nil {
		t.Error("expected error for client failure, got nil")
	}
}

type errorTransport struct{}

func (t *errorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("simulated network error")
}
