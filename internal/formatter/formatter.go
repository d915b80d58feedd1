// package formatter turns a playback state into the text shown in the profile bio
package formatter

import (
	"fmt"
	"strings"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
)

// Placeholders recognised in playing templates.
const (
	ArtistsPlaceholder = "{artists}"
	TrackPlaceholder   = "{track}"
)

// Template holds the presentation strings for one variant.
type Template struct {
	Idle    string
	Playing string
}

// Variants are the built-in presentation strings, selectable by name.
var Variants = map[string]Template{
	"ru": {
		Idle:    "Ку",
		Playing: "🎶{artists} - {track}🎶 ||| Сейчас слушаю в Spotify",
	},
	"en": {
		Idle:    "Not listening to anything right now",
		Playing: "🎶 {artists} - {track} 🎶 | Now playing on Spotify",
	},
}

// DefaultVariant is used when no variant is configured.
const DefaultVariant = "ru"

// Bio formats playback states with a fixed [Template].
type Bio struct {
	template  Template
	maxLength int
}

// NewBio creates a formatter. maxLength limits the output in runes, 0 disables the limit.
func NewBio(t Template, maxLength int) *Bio {
	return &Bio{template: t, maxLength: maxLength}
}

// FromConfig selects a built-in variant and applies the configured overrides.
func FromConfig(c shared.BioConfig) (*Bio, error) {
	name := c.Variant
	if name == "" {
		name = DefaultVariant
	}

	t, ok := Variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bio variant %q", shared.ErrInvalidConfig, name)
	}
	if c.Idle != "" {
		t.Idle = c.Idle
	}
	if c.Playing != "" {
		t.Playing = c.Playing
	}
	return NewBio(t, c.MaxLength), nil
}

// Idle returns the text shown when nothing is playing.
func (b *Bio) Idle() string {
	return b.Format(nil)
}

// Format returns the idle text for a nil or paused state, otherwise the playing template
// with the comma-joined artists and the track name.
func (b *Bio) Format(state *models.PlaybackState) string {
	if !state.Playing() {
		return b.truncate(b.template.Idle)
	}

	r := strings.NewReplacer(
		ArtistsPlaceholder, strings.Join(state.Item.ArtistNames(), ", "),
		TrackPlaceholder, state.Item.Name,
	)
	return b.truncate(r.Replace(b.template.Playing))
}

func (b *Bio) truncate(s string) string {
	if b.maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= b.maxLength {
		return s
	}
	if b.maxLength == 1 {
		return "…"
	}
	return string(runes[:b.maxLength-1]) + "…"
}
