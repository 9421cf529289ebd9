package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestHeadersAndToken(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL + "/", AnonKey: "anon"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Request(context.Background(), http.MethodGet, "actions", nil, "userId=eq.u1"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if got.Get("apikey") != "anon" || got.Get("Authorization") != "Bearer anon" {
		t.Fatalf("anon request headers wrong: %v", got)
	}
	if got.Get("Prefer") != "return=representation" {
		t.Fatalf("missing representation preference: %v", got)
	}

	client.SetAccessToken("user-token")
	if _, err := client.Request(context.Background(), http.MethodGet, "actions", nil, ""); err != nil {
		t.Fatalf("request with token: %v", err)
	}
	if got.Get("Authorization") != "Bearer user-token" || got.Get("apikey") != "anon" {
		t.Fatalf("user request headers wrong: %v", got)
	}

	client.ClearAccessToken()
	if _, err := client.Request(context.Background(), http.MethodGet, "actions", nil, ""); err != nil {
		t.Fatalf("request after clear: %v", err)
	}
	if got.Get("Authorization") != "Bearer anon" {
		t.Fatalf("token not cleared: %v", got)
	}
}

func TestRequestErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, AnonKey: "anon"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Request(context.Background(), http.MethodGet, "actions", nil, "")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apiErr.StatusCode)
	}
}
