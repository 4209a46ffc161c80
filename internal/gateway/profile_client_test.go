package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"lingoclash/internal/models"
)

type failingTokenSource struct {
	err error
}

func (s failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, s.err
}

func testTokens() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
}

func TestFetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users/me" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q", got)
		}
		json.NewEncoder(w).Encode(models.Profile{TotalXP: 150, Level: 2, Streak: 4})
	}))
	defer server.Close()

	client := NewProfileClient(server.URL, testTokens())
	profile, err := client.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}

	if profile.TotalXP != 150 || profile.Level != 2 || profile.Streak != 4 {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestPostXPDelta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/xp" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var delta models.XPDelta
		if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
			t.Errorf("failed to decode delta: %v", err)
		}
		if delta.Delta != 90 || delta.AttemptID != "att_1" || delta.Source != "quiz" {
			t.Errorf("unexpected delta: %+v", delta)
		}

		json.NewEncoder(w).Encode(models.Profile{TotalXP: 240, Streak: 5})
	}))
	defer server.Close()

	client := NewProfileClient(server.URL, testTokens())
	profile, err := client.PostXPDelta(context.Background(), models.XPDelta{Delta: 90, AttemptID: "att_1", Source: "quiz"})
	if err != nil {
		t.Fatalf("PostXPDelta failed: %v", err)
	}

	if profile.TotalXP != 240 || profile.Streak != 5 {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestRequestFailsFastWithoutCredential(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	tokenErr := errors.New("not signed in")
	client := NewProfileClient(server.URL, failingTokenSource{err: tokenErr})

	_, err := client.FetchProfile(context.Background())
	if !errors.Is(err, tokenErr) {
		t.Errorf("error does not wrap the token source failure: %v", err)
	}
	if requests != 0 {
		t.Errorf("server received %d requests, expected 0", requests)
	}
}

func TestNonSuccessStatusBecomesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewProfileClient(server.URL, testTokens())

	_, err := client.FetchProfile(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, expected %d", statusErr.Status, http.StatusBadGateway)
	}
	if statusErr.Path != "/api/users/me" {
		t.Errorf("Path = %q, expected /api/users/me", statusErr.Path)
	}
}
