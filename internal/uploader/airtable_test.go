package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAirtableClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		baseID  string
		table   string
		wantErr bool
	}{
		{"valid", "key", "app123", "Events", false},
		{"missing key", "", "app123", "Events", true},
		{"missing base", "key", "", "Events", true},
		{"missing table", "key", "app123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAirtableClient(tt.apiKey, tt.baseID, tt.table)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAirtableClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAirtableClient_Upload(t *testing.T) {
	var got struct {
		Fields map[string]string `json:"fields"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.EscapedPath() != "/app123/Dance%20Events" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"rec1","fields":{}}`))
	}))
	defer server.Close()

	client, err := NewAirtableClient("secret", "app123", "Dance Events", WithAPIURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewAirtableClient() error = %v", err)
	}

	fields := map[string]string{"Event Name": "Giselle", "Date": "6 janvier 2025"}
	if err := client.Upload(context.Background(), fields); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if got.Fields["Event Name"] != "Giselle" || got.Fields["Date"] != "6 janvier 2025" {
		t.Errorf("server received %v", got.Fields)
	}
}

func TestAirtableClient_UploadCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, _ := NewAirtableClient("k", "b", "t", WithAPIURL(server.URL))
	if err := client.Upload(context.Background(), map[string]string{}); err != nil {
		t.Errorf("Upload() error = %v, want 201 accepted", err)
	}
}

func TestAirtableClient_UploadRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unprocessable", http.StatusUnprocessableEntity, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`},
		{"unauthorized", http.StatusUnauthorized, `{"error":"AUTHENTICATION_REQUIRED"}`},
		{"server error", http.StatusInternalServerError, "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewAirtableClient("k", "b", "t", WithAPIURL(server.URL))
			err := client.Upload(context.Background(), map[string]string{"Event Name": "x"})

			if !errors.Is(err, ErrRejected) {
				t.Fatalf("Upload() error = %v, want ErrRejected", err)
			}
			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("Upload() error is not a *RejectedError")
			}
			if rejected.Status != tt.status {
				t.Errorf("Status = %d, want %d", rejected.Status, tt.status)
			}
			if rejected.Body != tt.body {
				t.Errorf("Body = %q, want %q", rejected.Body, tt.body)
			}
		})
	}
}

func TestAirtableClient_UploadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, _ := NewAirtableClient("k", "b", "t",
		WithAPIURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	)

	err := client.Upload(context.Background(), map[string]string{})
	if err == nil {
		t.Fatal("Upload() expected timeout error")
	}
	if errors.Is(err, ErrRejected) {
		t.Errorf("transport failure reported as rejection: %v", err)
	}
}
