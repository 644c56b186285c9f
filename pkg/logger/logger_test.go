package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/socialpulse-onboarding/pkg/config"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.Info("account created", slog.String("username", "alice"), slog.String("credential", "secret1"), slog.String("Password", "hunter2"))

	out := buf.String()
	assert.Contains(t, out, "username=alice")
	assert.NotContains(t, out, "secret1")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, 2, strings.Count(out, "***"))
}

type loginValue struct {
	user     string
	password string
}

func (l loginValue) LogValue() slog.Value {
	return slog.GroupValue(slog.String("user", l.user), slog.String("password", l.password))
}

func TestMaskingHandler_MasksNestedValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil))).
		With(slog.String("token", "tok-123"))

	log.Info("login",
		slog.Group("request", slog.String("platform", "twitter"), slog.Group("auth", slog.String("credential", "secret1"))),
		slog.Any("login", loginValue{user: "alice", password: "hunter2"}),
	)

	out := buf.String()
	for _, leaked := range []string{"tok-123", "secret1", "hunter2"} {
		assert.NotContains(t, out, leaked)
	}
	assert.Contains(t, out, `"platform":"twitter"`)
	assert.Contains(t, out, `"user":"alice"`)
	assert.Equal(t, 3, strings.Count(out, "***"))
}

func TestNew_FansOutToSentry(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		SetLevel("info")
	})

	path := filepath.Join(t.TempDir(), "onboarding.log")
	cfg := config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{
			Level:  "info",
			Format: "json",
			File:   config.LogFileConfig{Path: path, MaxSizeMB: 1},
		},
		Sentry: config.SentryConfig{Enabled: true},
	}

	log := New(cfg)
	log.Error("store unavailable", slog.String("credential", "secret1"))
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store unavailable")
	assert.NotContains(t, string(data), "secret1")
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, Level())

	SetLevel("WARN")
	assert.Equal(t, slog.LevelWarn, Level())

	SetLevel("nonsense")
	assert.Equal(t, slog.LevelInfo, Level())
}

func TestNew_WritesRotatedFile(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		SetLevel("info")
	})

	path := filepath.Join(t.TempDir(), "onboarding.log")
	cfg := config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{
			Level:  "info",
			Format: "json",
			File:   config.LogFileConfig{Path: path, MaxSizeMB: 1},
		},
	}

	log := New(cfg)
	require.NotNil(t, log)
	log.Info("hello")

	require.NoError(t, Close())
	assert.FileExists(t, path)
}

func TestCorrelationIDFromContext(t *testing.T) {
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))

	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", CorrelationIDFromContext(ctx))
}
