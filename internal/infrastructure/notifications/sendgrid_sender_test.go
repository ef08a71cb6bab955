package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/careband/postop-triage/pkg/config"
)

func TestNewSendGridSender(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmailConfig
		wantErr bool
	}{
		{"valid credentials", config.EmailConfig{APIKey: "k", From: "a@x.io", To: "b@x.io"}, false},
		{"missing api key", config.EmailConfig{From: "a@x.io", To: "b@x.io"}, true},
		{"missing recipient", config.EmailConfig{APIKey: "k", From: "a@x.io"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := NewSendGridSender(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSendGridSender() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && sender == nil {
				t.Error("NewSendGridSender() returned nil sender")
			}
		})
	}
}

func TestSendGridSender_SendAlert(t *testing.T) {
	var gotAuth string
	var gotMail sendGridMail

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotMail); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender, err := NewSendGridSender(&config.EmailConfig{
		APIKey: "sg-key",
		From:   "alerts@clinic.example",
		To:     "oncall@clinic.example",
	})
	if err != nil {
		t.Fatalf("NewSendGridSender: %v", err)
	}
	sender.baseURL = server.URL

	if err := sender.SendAlert(context.Background(), "[urgent] triage alert", "patient needs review"); err != nil {
		t.Fatalf("SendAlert: %v", err)
	}

	if gotAuth != "Bearer sg-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotMail.Subject != "[urgent] triage alert" {
		t.Errorf("unexpected subject %q", gotMail.Subject)
	}
	if len(gotMail.Personalizations) != 1 || gotMail.Personalizations[0].To[0].Email != "oncall@clinic.example" {
		t.Errorf("unexpected personalizations %+v", gotMail.Personalizations)
	}
	if gotMail.From.Email != "alerts@clinic.example" {
		t.Errorf("unexpected from %q", gotMail.From.Email)
	}
}

func TestSendGridSender_SendAlert_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	sender, _ := NewSendGridSender(&config.EmailConfig{APIKey: "bad", From: "a@x.io", To: "b@x.io"})
	sender.baseURL = server.URL

	if err := sender.SendAlert(context.Background(), "s", "b"); err == nil {
		t.Error("expected an error for non-2xx status")
	}
}
