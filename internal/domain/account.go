// Package domain defines the onboarding entities shared across layers.
package domain

import (
	"log/slog"
	"time"

	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

// Platform is the social network an account is onboarded for.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

// Platforms lists every supported platform in a stable order.
var Platforms = []Platform{
	PlatformTwitter,
	PlatformInstagram,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformTikTok,
	PlatformYouTube,
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// SentimentFilter controls downstream content filtering.
type SentimentFilter string

const (
	SentimentPositive SentimentFilter = "positive"
	SentimentNegative SentimentFilter = "negative"
	SentimentNeutral  SentimentFilter = "neutral"
	SentimentAll      SentimentFilter = "all"
)

// DefaultSentimentFilter is applied when a caller does not choose one.
const DefaultSentimentFilter = SentimentAll

// Valid reports whether f is a known sentiment filter.
func (f SentimentFilter) Valid() bool {
	switch f {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentAll:
		return true
	default:
		return false
	}
}

// Account is one onboarding subject.
type Account struct {
	ID              int64           `json:"id"`
	Username        string          `json:"username"`
	Credential      string          `json:"-"`
	Platform        Platform        `json:"platform"`
	Interests       []string        `json:"interests"`
	SentimentFilter SentimentFilter `json:"sentiment_filter"`
	NoiseBlocker    bool            `json:"noise_blocker_enabled"`
	Step            state.Step      `json:"onboarding_step"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}

	copied := *a
	if a.Interests != nil {
		copied.Interests = append([]string(nil), a.Interests...)
	}
	return &copied
}

// LogValue renders the account for structured logs. The credential is never included.
func (a *Account) LogValue() slog.Value {
	if a == nil {
		return slog.Value{}
	}

	return slog.GroupValue(
		slog.Int64("id", a.ID),
		slog.String("username", a.Username),
		slog.String("platform", string(a.Platform)),
		slog.Int("step", int(a.Step)),
		slog.Int64("version", a.Version),
	)
}
