package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/server"
	"github.com/desertthunder/biosync/internal/services"
	"github.com/desertthunder/biosync/internal/shared"
	"github.com/desertthunder/biosync/internal/ui"
	"github.com/urfave/cli/v3"
)

const callbackTimeout = 2 * time.Minute

// Generate walks through Spotify authorization and the Telegram login, then saves the credentials document.
//
// Nothing is written unless every step succeeds.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("biosync setup")

	app, err := r.promptApp(ctx)
	if err != nil {
		return err
	}

	auth, err := r.services.Auth(app, r.httpClient)
	if err != nil {
		return err
	}

	token, err := r.authorize(ctx, cmd, auth)
	if err != nil {
		var authErr *shared.AuthorizationError
		if errors.As(err, &authErr) {
			r.writePlain("✗ Spotify refused authorization: %s\n", authErr.Code)
		}
		return fmt.Errorf("spotify authorization failed: %w", err)
	}
	r.writePlain("✓ Spotify authorized\n")

	login, err := r.promptTelegram(ctx)
	if err != nil {
		return err
	}

	if _, err := r.services.Bio(services.TelegramOpts{Login: login, HTTPClient: r.httpClient}); err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}
	r.writePlain("✓ Telegram bot token accepted\n")

	creds := &shared.Credentials{App: app, Token: token, Telegram: login}
	if err := r.store.Save(creds); err != nil {
		return err
	}

	r.logger.Info("credentials saved", "path", r.store.Path())
	r.writePlainln("✓ Credentials saved to %s", r.store.Path())
	return nil
}

func (r *Runner) promptApp(ctx context.Context) (models.AppCredentials, error) {
	redirect := (&url.URL{Scheme: "http", Host: r.config.Server.Addr(), Path: server.CallbackPath}).String()

	values, err := r.prompter.Prompt(ctx, "Spotify app", []ui.Field{
		{Label: "Client ID", Placeholder: "from developer.spotify.com/dashboard"},
		{Label: "Client secret", Secret: true},
		{Label: "Redirect URI", Value: redirect},
	})
	if err != nil {
		return models.AppCredentials{}, err
	}

	return models.AppCredentials{ClientID: values[0], ClientSecret: values[1], RedirectURI: values[2]}, nil
}

func (r *Runner) promptTelegram(ctx context.Context) (models.TelegramLogin, error) {
	values, err := r.prompter.Prompt(ctx, "Telegram", []ui.Field{
		{Label: "Bot token", Placeholder: "123456:ABC-DEF from @BotFather", Secret: true},
		{Label: "Language code", Placeholder: "empty applies to all languages", Optional: true},
	})
	if err != nil {
		return models.TelegramLogin{}, err
	}

	return models.TelegramLogin{BotToken: values[0], LanguageCode: values[1]}, nil
}

// authorize sends the user to the consent page and exchanges the code it redirects back with.
func (r *Runner) authorize(ctx context.Context, cmd *cli.Command, auth services.TokenService) (models.AccessToken, error) {
	state := shared.GenerateState()
	authURL := auth.AuthorizationURL(state, services.DefaultScopes)

	r.writePlain("→ Open this URL to grant access:\n%s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := r.openURL(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
		}
	}

	if cmd.Bool("listen") {
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", callbackTimeout)
		return server.CaptureCallback(ctx, server.NewOAuthHandler(auth, state), server.CaptureOpts{
			Addr:    r.config.Server.Addr(),
			Timeout: callbackTimeout,
			Logger:  r.logger,
		})
	}

	values, err := r.prompter.Prompt(ctx, "Paste the URL you were redirected to", []ui.Field{
		{Label: "Callback URL", Placeholder: "http://127.0.0.1:8888/callback?code=..."},
	})
	if err != nil {
		return models.AccessToken{}, err
	}

	if err := checkState(values[0], state); err != nil {
		return models.AccessToken{}, err
	}
	code, err := auth.ParseCallback(values[0])
	if err != nil {
		return models.AccessToken{}, err
	}
	return auth.ExchangeCode(ctx, code)
}

// checkState rejects a pasted callback carrying a different state. A callback without one is accepted.
func checkState(uri, state string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedCallback, err)
	}
	if got := u.Query().Get("state"); got != "" && got != state {
		return shared.ErrStateMismatch
	}
	return nil
}
