package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
)

// fakeBotAPI records setMyShortDescription calls and answers getMe.
type fakeBotAPI struct {
	mu           sync.Mutex
	descriptions []string
	languages    []string
	fail         bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/bot123:abc/getMe":
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Bio","username":"bio_bot"}}`))
	case "/bot123:abc/setMyShortDescription":
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.descriptions = append(f.descriptions, r.PostForm.Get("short_description"))
		f.languages = append(f.languages, r.PostForm.Get("language_code"))
		fail := f.fail
		f.mu.Unlock()
		if fail {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: description is too long"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}
}

func newTelegramBio(t *testing.T, api *fakeBotAPI, login models.TelegramLogin, interval time.Duration) (*TelegramBio, error) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	login.APIEndpoint = srv.URL + "/bot%s/%s"
	return NewTelegramBio(TelegramOpts{Login: login, HTTPClient: srv.Client(), MinInterval: interval})
}

func TestTelegramBio(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		bio, err := newTelegramBio(t, &fakeBotAPI{}, models.TelegramLogin{BotToken: "123:abc"}, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if bio.Username() != "bio_bot" {
			t.Errorf("expected username bio_bot, got %s", bio.Username())
		}
	})

	t.Run("Login With Bad Token", func(t *testing.T) {
		_, err := newTelegramBio(t, &fakeBotAPI{}, models.TelegramLogin{BotToken: "999:nope"}, 0)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		if _, err := NewTelegramBio(TelegramOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("SetBio", func(t *testing.T) {
		api := &fakeBotAPI{}
		bio, err := newTelegramBio(t, api, models.TelegramLogin{BotToken: "123:abc", LanguageCode: "ru"}, 0)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		for _, text := range []string{"🎶A - X🎶", ""} {
			if err := bio.SetBio(context.Background(), text); err != nil {
				t.Fatalf("SetBio(%q) failed: %v", text, err)
			}
		}

		if len(api.descriptions) != 2 || api.descriptions[0] != "🎶A - X🎶" || api.descriptions[1] != "" {
			t.Errorf("unexpected descriptions %q", api.descriptions)
		}
		if api.languages[0] != "ru" {
			t.Errorf("expected language_code ru, got %q", api.languages[0])
		}
	})

	t.Run("SetBio Rejected", func(t *testing.T) {
		bio, err := newTelegramBio(t, &fakeBotAPI{fail: true}, models.TelegramLogin{BotToken: "123:abc"}, 0)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if err := bio.SetBio(context.Background(), "x"); !errors.Is(err, shared.ErrBioUpdate) {
			t.Errorf("expected ErrBioUpdate, got %v", err)
		}
	})

	t.Run("Throttled Write Honors Context", func(t *testing.T) {
		bio, err := newTelegramBio(t, &fakeBotAPI{}, models.TelegramLogin{BotToken: "123:abc"}, time.Hour)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if err := bio.SetBio(context.Background(), "first"); err != nil {
			t.Fatalf("first write should pass the limiter: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := bio.SetBio(ctx, "second"); !errors.Is(err, shared.ErrBioUpdate) {
			t.Errorf("expected throttled write to fail with ErrBioUpdate, got %v", err)
		}
	})
}
