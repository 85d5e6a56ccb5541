package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("BOOKER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DEPORTES_USER", "ana@example.com")
	t.Setenv("DEPORTES_PASS", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "error_screenshot.png", cfg.ArtifactPath)
	require.Equal(t, "Europe/Madrid", cfg.Location.String())
	require.Equal(t, 2, cfg.Booking.Schedule.LeadDays)
	require.Equal(t, "Faustina Valladolid", cfg.Booking.Target.Center)
	require.Equal(t, "ana@example.com", cfg.Credentials().Username)
	require.Equal(t, "s3cret", cfg.Credentials().Password)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booker.yaml")
	doc := `
schedule:
  run_days: [friday]
  target_days: [sunday]
  lead_days: 2
target:
  time_slot: "18:30"
credentials:
  username: file-user
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("BOOKER_CONFIG", path)
	t.Setenv("DEPORTES_USER", "env-user")
	t.Setenv("DEPORTES_PASS", "env-pass")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []time.Weekday{time.Friday}, []time.Weekday(cfg.Booking.Schedule.RunDays))
	require.Equal(t, "18:30", cfg.Booking.Target.TimeSlot)
	require.Equal(t, "Sala multitrabajo", cfg.Booking.Target.Activity)
	require.Equal(t, "file-user", cfg.Credentials().Username)
	require.Equal(t, "env-pass", cfg.Credentials().Password)
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  lead_days: 90\n"), 0o600))
	t.Setenv("BOOKER_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("BOOKER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BOOKER_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestSessionKeys(t *testing.T) {
	cfg := Config{Env: Env{
		SessionHashKey:  base64.StdEncoding.EncodeToString(make([]byte, 32)),
		SessionBlockKey: base64.RawStdEncoding.EncodeToString(make([]byte, 32)),
	}}
	hash, block, err := cfg.SessionKeys()
	require.NoError(t, err)
	require.Len(t, hash, 32)
	require.Len(t, block, 32)

	cfg.SessionBlockKey = base64.StdEncoding.EncodeToString(make([]byte, 10))
	_, _, err = cfg.SessionKeys()
	require.Error(t, err)

	cfg.SessionHashKey = ""
	_, _, err = cfg.SessionKeys()
	require.Error(t, err)
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	f, err := LoadFile(filepath.Join("..", "..", "..", "booker.example.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultFile(), f)
}
