package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{FromEmail: "hola@example.com"}, nil); err == nil {
		t.Fatal("expected error when API key is empty")
	}
	if _, err := New(Config{APIKey: "key"}, nil); err == nil {
		t.Fatal("expected error when sender email is empty")
	}
}

func TestNewDefaults(t *testing.T) {
	mailer, err := New(Config{APIKey: "key", FromEmail: "hola@example.com"}, nil)
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if mailer.fromName != "Javier Virtual" {
		t.Errorf("expected default from name, got %q", mailer.fromName)
	}
	if mailer.bookingURL != "https://cal.com" {
		t.Errorf("expected default booking url, got %q", mailer.bookingURL)
	}
}

func TestSendWelcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Fatalf("missing auth header")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "ana@x.com") {
			t.Fatalf("expected recipient in body, got %s", string(body))
		}
		if !strings.Contains(string(body), "Consultoría") {
			t.Fatalf("expected service name in body")
		}
		w.Header().Set("X-Message-Id", "sg-msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	mailer, err := New(Config{APIKey: "key", FromEmail: "hola@example.com", Host: server.URL}, nil)
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	receipt, err := mailer.SendWelcome(context.Background(), "ana@x.com", "Ana", "Consultoría")
	if err != nil {
		t.Fatalf("send welcome: %v", err)
	}
	if receipt.Provider != "sendgrid" {
		t.Errorf("unexpected provider: %s", receipt.Provider)
	}
	if receipt.MessageID != "sg-msg-123" {
		t.Errorf("unexpected message id: %s", receipt.MessageID)
	}
}

func TestSendWelcomeProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":[{"message":"bad key"}]}`)
	}))
	defer server.Close()

	mailer, err := New(Config{APIKey: "key", FromEmail: "hola@example.com", Host: server.URL}, nil)
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	_, err = mailer.SendWelcome(context.Background(), "ana@x.com", "Ana", "")
	if err == nil {
		t.Fatal("expected error on provider rejection")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestWelcomeBodyDefaultsService(t *testing.T) {
	html := welcomeHTML("Ana", "", "https://cal.com/x")
	if !strings.Contains(html, "nuestros servicios") {
		t.Fatalf("expected generic service phrase, got %s", html)
	}
	if !strings.Contains(html, "https://cal.com/x") {
		t.Fatalf("expected booking url in body")
	}

	html = welcomeHTML("Ana", "Consultoría", "https://cal.com/x")
	if !strings.Contains(html, "Consultoría") {
		t.Fatalf("expected requested service in body")
	}
}
