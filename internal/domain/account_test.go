package domain

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

func TestAccount_LogValueOmitsCredential(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	account := &Account{
		ID:         7,
		Username:   "alice",
		Credential: "secret1",
		Platform:   PlatformTwitter,
		Step:       state.StepPreferences,
		Version:    3,
	}
	log.Info("account", slog.Any("account", account))

	out := buf.String()
	if strings.Contains(out, "secret1") {
		t.Fatalf("credential leaked into log output: %s", out)
	}
	for _, want := range []string{"account.id=7", "account.username=alice", "account.platform=twitter", "account.step=1", "account.version=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}
}

func TestAccount_Clone(t *testing.T) {
	original := &Account{ID: 1, Interests: []string{"sports"}}

	copied := original.Clone()
	copied.Interests[0] = "music"

	if original.Interests[0] != "sports" {
		t.Errorf("clone shares interests with original")
	}
	if (*Account)(nil).Clone() != nil {
		t.Errorf("clone of nil should be nil")
	}
}
