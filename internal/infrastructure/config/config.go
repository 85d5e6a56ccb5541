package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/schedule"
)

// Env covers process level configuration read from environment variables.
type Env struct {
	Environment  string `env:"BOOKER_ENV" envDefault:"production"`
	File         string `env:"BOOKER_CONFIG" envDefault:"booker.yaml"`
	Timezone     string `env:"BOOKER_TIMEZONE" envDefault:"Europe/Madrid"`
	ArtifactPath string `env:"BOOKER_ARTIFACT_PATH" envDefault:"error_screenshot.png"`
	BrowserBin   string `env:"BOOKER_BROWSER_BIN"`

	Username string `env:"DEPORTES_USER"`
	Password string `env:"DEPORTES_PASS"`

	// history + dashboard
	DatabaseURL     string `env:"DATABASE_URL"`
	HTTPAddr        string `env:"HTTP_ADDR" envDefault:":8080"`
	SessionHashKey  string `env:"SESSION_HASH_KEY"`
	SessionBlockKey string `env:"SESSION_BLOCK_KEY"`
}

// File is the optional YAML document next to the binary.
type File struct {
	Schedule    schedule.Rule       `yaml:"schedule"`
	Target      booking.Target      `yaml:"target"`
	Site        booking.Site        `yaml:"site"`
	Credentials booking.Credentials `yaml:"credentials"`
}

type Config struct {
	Env
	Booking  File
	Location *time.Location
}

func DefaultFile() File {
	return File{
		Schedule: schedule.DefaultRule(),
		Target:   booking.DefaultTarget(),
		Site:     booking.DefaultSite(),
	}
}

// Load reads the environment, then overlays the YAML file on the defaults.
// A missing file is not an error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg.Env); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	f, err := LoadFile(cfg.File)
	if err != nil {
		return Config{}, err
	}
	cfg.Booking = f

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BOOKER_TIMEZONE: %w", err)
	}
	cfg.Location = loc
	return cfg, nil
}

func LoadFile(path string) (File, error) {
	f := DefaultFile()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.Schedule.Validate(); err != nil {
		return File{}, fmt.Errorf("%s: schedule: %w", path, err)
	}
	return f, nil
}

// Credentials prefers the file, falling back to the environment per field.
// Empty values are passed through; the login step is where they fail.
func (c Config) Credentials() booking.Credentials {
	cr := c.Booking.Credentials
	if cr.Username == "" {
		cr.Username = c.Username
	}
	if cr.Password == "" {
		cr.Password = c.Password
	}
	return cr
}

// SessionKeys decodes the dashboard cookie keys.
func (c Config) SessionKeys() (hash, block []byte, err error) {
	if hash, err = mustB64("SESSION_HASH_KEY", c.SessionHashKey); err != nil {
		return nil, nil, err
	}
	if block, err = mustB64("SESSION_BLOCK_KEY", c.SessionBlockKey); err != nil {
		return nil, nil, err
	}
	switch len(block) {
	case 16, 24, 32:
	default:
		return nil, nil, fmt.Errorf("SESSION_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(block))
	}
	return hash, block, nil
}

func mustB64(k, v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("%s is required (base64)", k)
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
