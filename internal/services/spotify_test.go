package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
)

var testApp = models.AppCredentials{
	ClientID:     "test_client_id",
	ClientSecret: "test_client_secret",
	RedirectURI:  "http://127.0.0.1:8888/callback",
}

// newTokenServer serves the token endpoint with handler and points a SpotifyAuth at it.
func newTokenServer(t *testing.T, handler http.HandlerFunc) *SpotifyAuth {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	auth, err := NewSpotifyAuth(testApp, srv.Client())
	if err != nil {
		t.Fatalf("failed to create auth: %v", err)
	}
	auth.config.Endpoint.TokenURL = srv.URL + "/api/token"
	return auth
}

func TestSpotifyAuth(t *testing.T) {
	t.Run("NewSpotifyAuth", func(t *testing.T) {
		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyAuth(models.AppCredentials{ClientSecret: "s"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyAuth(models.AppCredentials{ClientID: "c"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default HTTP Client", func(t *testing.T) {
			auth, err := NewSpotifyAuth(testApp, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if auth.httpClient == nil || auth.httpClient.Timeout == 0 {
				t.Error("expected a default client with a timeout")
			}
		})
	})

	t.Run("AuthorizationURL", func(t *testing.T) {
		auth, err := NewSpotifyAuth(testApp, nil)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		t.Run("Round Trips Parameters", func(t *testing.T) {
			raw := auth.AuthorizationURL("", []string{"user-read-playback-state", "user-read-private"})

			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("auth URL should parse: %v", err)
			}

			if u.Scheme+"://"+u.Host+u.Path != spotifyAuthURL {
				t.Errorf("expected %s, got %s", spotifyAuthURL, raw)
			}

			q := u.Query()
			want := map[string]string{
				"client_id":     testApp.ClientID,
				"response_type": "code",
				"redirect_uri":  testApp.RedirectURI,
				"scope":         "user-read-playback-state user-read-private",
			}
			for key, value := range want {
				if got := q.Get(key); got != value {
					t.Errorf("expected %s=%q, got %q", key, value, got)
				}
			}

			if q.Has("state") {
				t.Error("expected no state parameter when state is empty")
			}
		})

		t.Run("With State", func(t *testing.T) {
			u, err := url.Parse(auth.AuthorizationURL("xyz", DefaultScopes))
			if err != nil {
				t.Fatalf("auth URL should parse: %v", err)
			}
			if u.Query().Get("state") != "xyz" {
				t.Errorf("expected state xyz, got %s", u.Query().Get("state"))
			}
		})

		t.Run("Does Not Mutate Config", func(t *testing.T) {
			auth.AuthorizationURL("", []string{"a"})
			if len(auth.config.Scopes) != 0 {
				t.Errorf("expected shared config scopes untouched, got %v", auth.config.Scopes)
			}
		})
	})

	t.Run("ParseCallback", func(t *testing.T) {
		tc := []struct {
			name    string
			uri     string
			want    string
			wantErr error
		}{
			{name: "with code", uri: "https://x/cb?code=ABC123", want: "ABC123"},
			{name: "code and state", uri: "http://127.0.0.1:8888/callback?code=q%2Bw&state=s", want: "q+w"},
			{name: "no code", uri: "https://x/cb", wantErr: shared.ErrMalformedCallback},
			{name: "empty code", uri: "https://x/cb?code=", wantErr: shared.ErrMalformedCallback},
			{name: "unparseable", uri: "://bad", wantErr: shared.ErrMalformedCallback},
			{name: "denied", uri: "https://x/cb?error=access_denied", wantErr: shared.ErrAuthFailed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := ParseCallback(tt.uri)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("expected code %q, got %q", tt.want, got)
				}
			})
		}
	})

	t.Run("ExchangeCode", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}

				user, pass, ok := r.BasicAuth()
				if !ok || user != testApp.ClientID || pass != testApp.ClientSecret {
					t.Errorf("expected basic auth with client credentials, got %q %q", user, pass)
				}

				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("grant_type") != "authorization_code" {
					t.Errorf("unexpected grant_type %s", r.PostForm.Get("grant_type"))
				}
				if r.PostForm.Get("code") != "ABC123" {
					t.Errorf("unexpected code %s", r.PostForm.Get("code"))
				}
				if r.PostForm.Get("redirect_uri") != testApp.RedirectURI {
					t.Errorf("unexpected redirect_uri %s", r.PostForm.Get("redirect_uri"))
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","scope":"user-read-playback-state","expires_in":3600}`))
			})

			token, err := auth.ExchangeCode(context.Background(), "ABC123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := models.AccessToken{
				AccessToken:  "at",
				RefreshToken: "rt",
				TokenType:    "Bearer",
				Scope:        "user-read-playback-state",
				ExpiresIn:    3600,
			}
			if token != want {
				t.Errorf("expected %+v, got %+v", want, token)
			}
		})

		t.Run("Authorization Error", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
			})

			_, err := auth.ExchangeCode(context.Background(), "bad")

			var authErr *shared.AuthorizationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthorizationError, got %v", err)
			}
			if authErr.Code != "invalid_grant" || authErr.Description != "Invalid authorization code" {
				t.Errorf("unexpected error fields %+v", authErr)
			}
		})

		t.Run("Server Error Without Body", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			_, err := auth.ExchangeCode(context.Background(), "code")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Empty Code", func(t *testing.T) {
			auth, _ := NewSpotifyAuth(testApp, nil)
			if _, err := auth.ExchangeCode(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		original := models.AccessToken{
			AccessToken:  "old",
			RefreshToken: "keep-me",
			TokenType:    "Bearer",
			Scope:        "user-read-playback-state",
			ExpiresIn:    3600,
		}

		t.Run("Preserves Refresh Token", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("grant_type") != "refresh_token" {
					t.Errorf("unexpected grant_type %s", r.PostForm.Get("grant_type"))
				}
				if r.PostForm.Get("refresh_token") != "keep-me" {
					t.Errorf("unexpected refresh_token %s", r.PostForm.Get("refresh_token"))
				}
				if _, _, ok := r.BasicAuth(); !ok {
					t.Error("expected basic auth on refresh")
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"new","token_type":"Bearer","scope":"user-read-playback-state","expires_in":1800}`))
			})

			token, err := auth.Refresh(context.Background(), original)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token.AccessToken != "new" || token.ExpiresIn != 1800 {
				t.Errorf("expected refreshed access token, got %+v", token)
			}
			if token.RefreshToken != "keep-me" {
				t.Errorf("expected refresh token to be preserved, got %s", token.RefreshToken)
			}
		})

		t.Run("Rotated Refresh Token", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"new","refresh_token":"rotated","token_type":"Bearer","scope":"user-read-playback-state","expires_in":3600}`))
			})

			token, err := auth.Refresh(context.Background(), original)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token.RefreshToken != "rotated" {
				t.Errorf("expected rotated refresh token, got %s", token.RefreshToken)
			}
		})

		t.Run("Revoked", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh token revoked"}`))
			})

			_, err := auth.Refresh(context.Background(), original)
			var authErr *shared.AuthorizationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthorizationError, got %v", err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			auth := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})

			if _, err := auth.Refresh(context.Background(), original); !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})

		t.Run("No Refresh Token", func(t *testing.T) {
			auth, _ := NewSpotifyAuth(testApp, nil)
			if _, err := auth.Refresh(context.Background(), models.AccessToken{AccessToken: "x"}); !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrNoRefreshToken, got %v", err)
			}
		})
	})
}
