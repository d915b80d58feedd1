package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// setShortDescription is the Bot API method that replaces the profile "about" text.
const setShortDescription = "setMyShortDescription"

// TelegramBio implements [BioWriter] by updating the bot profile's short description.
type TelegramBio struct {
	bot          *tgbotapi.BotAPI
	languageCode string
	limiter      *rate.Limiter
}

// TelegramOpts configures [NewTelegramBio].
type TelegramOpts struct {
	Login      models.TelegramLogin
	HTTPClient *http.Client
	// MinInterval is the minimum spacing between two writes. Zero disables throttling.
	MinInterval time.Duration
}

// NewTelegramBio logs in with the bot token. The Bot API validates the token with getMe.
func NewTelegramBio(opts TelegramOpts) (*TelegramBio, error) {
	if opts.Login.BotToken == "" {
		return nil, fmt.Errorf("%w: telegram bot_token", shared.ErrMissingCredentials)
	}
	endpoint := opts.Login.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Login.BotToken, endpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram login: %v", shared.ErrAuthFailed, err)
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &TelegramBio{
		bot:          bot,
		languageCode: opts.Login.LanguageCode,
		limiter:      rate.NewLimiter(limit, 1),
	}, nil
}

// Username returns the logged-in bot's username.
func (t *TelegramBio) Username() string {
	return t.bot.Self.UserName
}

// SetBio replaces the short description with bio. An empty bio clears it.
func (t *TelegramBio) SetBio(ctx context.Context, bio string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBioUpdate, err)
	}

	params := tgbotapi.Params{"short_description": bio}
	params.AddNonEmpty("language_code", t.languageCode)

	resp, err := t.bot.MakeRequest(setShortDescription, params)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBioUpdate, err)
	}
	if !resp.Ok {
		return fmt.Errorf("%w: %s", shared.ErrBioUpdate, resp.Description)
	}
	return nil
}
