package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"github.com/example/rec-sniper/internal/booking"
	"github.com/example/rec-sniper/internal/catalog"
	"github.com/example/rec-sniper/internal/crypto"
)

// Config is the file-backed configuration. Secrets (credential key, cookie
// cache keys, password override) come from the environment, never from the
// file.
type Config struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	// Password may carry an enc: prefix; it is decrypted on load when
	// RECSNIPER_CRED_KEY is set.
	Password string `json:"password"`

	Headless *bool `json:"headless"`

	NavTimeoutSeconds    int `json:"nav_timeout_seconds"`
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`
	// Delay between independent requests in a book-all batch, to stay
	// under the site's abuse detection.
	InterRequestDelaySeconds int `json:"inter_request_delay_seconds"`

	Tolerances Tolerances `json:"tolerances"`

	HistoryPath   string `json:"history_path"`
	CookieCache   string `json:"cookie_cache"`
	ScreenshotDir string `json:"screenshot_dir"`

	Rules    []catalog.Spec `json:"rules"`
	Requests []RequestSpec  `json:"requests"`

	// env-sourced
	CookieHashKey  []byte `json:"-"`
	CookieBlockKey []byte `json:"-"`
	CredKey        []byte `json:"-"`
}

// Tolerances are the configurable matching/reporting policies.
type Tolerances struct {
	// LocationFirstWordOnly matches rows on just the first word of the
	// requested location, tolerating the site's formatting variance.
	LocationFirstWordOnly *bool `json:"location_first_word_only"`
	// AssumeUnverifiedSuccess reports success when an order placement was
	// attempted but no confirmation marker appeared.
	AssumeUnverifiedSuccess *bool `json:"assume_unverified_success"`
}

// RequestSpec is one manual acquisition request in the config file.
type RequestSpec struct {
	Activity       string `json:"activity"`
	Date           string `json:"date"` // DD-Mon-YYYY
	Time           string `json:"time"` // H:MM am|pm
	Location       string `json:"location"`
	AcceptWaitlist bool   `json:"accept_waitlist"`
}

// Load reads name plus an optional <name>.local.json5 overlay (higher
// priority), then applies environment overrides and decrypts credentials.
func Load(name string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(name)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json5.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", name, err)
	}

	localPath := localName(name)
	if localRaw, err := os.ReadFile(localPath); err == nil {
		var override Config
		if err := json5.Unmarshal(localRaw, &override); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("merge %s: %w", localPath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", localPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.fromEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.decryptPassword(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func (c *Config) applyDefaults() {
	if c.NavTimeoutSeconds <= 0 {
		c.NavTimeoutSeconds = 30
	}
	if c.ActionTimeoutSeconds <= 0 {
		c.ActionTimeoutSeconds = 10
	}
	if c.InterRequestDelaySeconds <= 0 {
		c.InterRequestDelaySeconds = 5
	}
	if c.HistoryPath == "" {
		c.HistoryPath = "recsniper.db"
	}
	if c.CookieCache == "" {
		c.CookieCache = "cookies.cache"
	}
}

func (c *Config) fromEnv() error {
	if pw := strings.TrimSpace(os.Getenv("RECSNIPER_PASSWORD")); pw != "" {
		c.Password = pw
	}
	var err error
	if c.CredKey, err = optionalB64("RECSNIPER_CRED_KEY"); err != nil {
		return err
	}
	if c.CookieHashKey, err = optionalB64("RECSNIPER_COOKIE_HASH_KEY"); err != nil {
		return err
	}
	if c.CookieBlockKey, err = optionalB64("RECSNIPER_COOKIE_BLOCK_KEY"); err != nil {
		return err
	}
	return nil
}

func (c *Config) decryptPassword() error {
	if !crypto.IsEncrypted(c.Password) {
		return nil
	}
	if len(c.CredKey) == 0 {
		return booking.ConfigError{Field: "password", Msg: "password is encrypted but RECSNIPER_CRED_KEY is not set"}
	}
	aead, err := crypto.New(c.CredKey)
	if err != nil {
		return booking.ConfigError{Field: "RECSNIPER_CRED_KEY", Msg: err.Error()}
	}
	pw, err := aead.Open(c.Password)
	if err != nil {
		return booking.ConfigError{Field: "password", Msg: err.Error()}
	}
	c.Password = pw
	return nil
}

// RequireSite validates the fields every browsing command needs.
func (c Config) RequireSite() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return booking.ConfigError{Field: "base_url", Msg: "required"}
	}
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return booking.ConfigError{Field: "username/password", Msg: "required"}
	}
	return nil
}

// HasCookieKeys reports whether the cookie cache can be used.
func (c Config) HasCookieKeys() bool {
	return len(c.CookieHashKey) > 0 && len(c.CookieBlockKey) > 0
}

func (c Config) IsHeadless() bool { return c.Headless == nil || *c.Headless }

func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

func (c Config) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSeconds) * time.Second
}

func (c Config) InterRequestDelay() time.Duration {
	return time.Duration(c.InterRequestDelaySeconds) * time.Second
}

func (t Tolerances) FirstWordLocation() bool {
	return t.LocationFirstWordOnly == nil || *t.LocationFirstWordOnly
}

func (t Tolerances) AssumeUnverified() bool {
	return t.AssumeUnverifiedSuccess == nil || *t.AssumeUnverifiedSuccess
}

// CompileRequests turns the manual request specs into validated booking
// requests with dates resolved in the reference timezone.
func (c Config) CompileRequests(loc *time.Location) ([]booking.Request, error) {
	out := make([]booking.Request, 0, len(c.Requests))
	for i, rs := range c.Requests {
		req, err := rs.Compile(loc)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}

func (rs RequestSpec) Compile(loc *time.Location) (booking.Request, error) {
	if strings.TrimSpace(rs.Activity) == "" {
		return booking.Request{}, booking.ConfigError{Field: "activity", Msg: "required"}
	}
	if strings.TrimSpace(rs.Location) == "" {
		return booking.Request{}, booking.ConfigError{Field: "location", Msg: "required"}
	}
	label := booking.NormalizeTimeLabel(rs.Time)
	if label == "" {
		return booking.Request{}, booking.ConfigError{Field: "time", Msg: "required"}
	}
	date, err := booking.ParseDate(rs.Date, loc)
	if err != nil {
		return booking.Request{}, booking.ConfigError{Field: "date", Msg: err.Error()}
	}
	return booking.Request{
		Activity:       rs.Activity,
		Location:       rs.Location,
		TimeLabel:      label,
		Date:           date,
		AcceptWaitlist: rs.AcceptWaitlist,
	}, nil
}

func optionalB64(key string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, booking.ConfigError{Field: key, Msg: "invalid base64"}
	}
	return b, nil
}
