// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithLogging(t *testing.T) {
	// Create a simple server that returns OK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))
	defer srv.Close()

	client := &http.Client{Transport: WithLogging(http.DefaultTransport)}

	resp, err := client.Get(srv.URL + "/test-path")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "success" {
		t.Errorf("Expected body 'success', got '%s'", body)
	}
}

func TestWithLogging_PassesErrors(t *testing.T) {
	failing := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	rt := WithLogging(failing)
	req := httptest.NewRequest("GET", "http://example.invalid/polls/", nil)

	resp, err := rt.RoundTrip(req)
	if err == nil {
		t.Fatal("Expected error to pass through")
	}
	if resp != nil {
		t.Error("Expected nil response on error")
	}
}

func TestWithRequestID(t *testing.T) {
	var seen []string
	capture := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.Header.Get(RequestIDHeader))
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := WithRequestID(capture)

	req := httptest.NewRequest("GET", "http://example.invalid/", nil)
	rt.RoundTrip(req)
	rt.RoundTrip(req)

	if len(seen) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(seen))
	}
	for _, id := range seen {
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Expected uuid request id, got %q", id)
		}
	}
	if seen[0] == seen[1] {
		t.Error("Expected distinct request ids")
	}
	if req.Header.Get(RequestIDHeader) != "" {
		t.Error("Original request must not be mutated")
	}

	// Existing ids are kept
	seen = nil
	req.Header.Set(RequestIDHeader, "fixed")
	rt.RoundTrip(req)
	if seen[0] != "fixed" {
		t.Errorf("Expected existing id to be kept, got %q", seen[0])
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.RoundTripper) http.RoundTripper {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Chain(base, mw("first"), mw("second"))
	rt.RoundTrip(httptest.NewRequest("GET", "http://example.invalid/", nil))

	if strings.Join(order, ",") != "first,second,base" {
		t.Errorf("Unexpected order: %v", order)
	}
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"liked":true,"likes":3}`))}

	var v struct {
		Liked bool `json:"liked"`
		Likes int  `json:"likes"`
	}
	if err := DecodeJSON(resp, &v); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if !v.Liked || v.Likes != 3 {
		t.Errorf("Unexpected decoded value: %+v", v)
	}

	bad := &http.Response{Body: io.NopCloser(strings.NewReader(`{not json`))}
	if err := DecodeJSON(bad, &v); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestReadError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Invalid credentials"}`, "Invalid credentials"},
		{"detail field", `{"detail":"Not authenticated"}`, "Not authenticated"},
		{"plain text", `Internal Server Error`, "Internal Server Error"},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Body: io.NopCloser(strings.NewReader(tt.body))}
			if got := ReadError(resp).Text(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
