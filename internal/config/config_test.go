package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/rec-sniper/internal/booking"
	"github.com/example/rec-sniper/internal/crypto"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "recsniper.json5", `{
		// comments are fine in json5
		base_url: "https://rec.example.com",
		username: "alice",
		password: "pw",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://rec.example.com", cfg.BaseURL)
	require.Equal(t, 30*time.Second, cfg.NavTimeout())
	require.Equal(t, 10*time.Second, cfg.ActionTimeout())
	require.Equal(t, 5*time.Second, cfg.InterRequestDelay())
	require.Equal(t, "recsniper.db", cfg.HistoryPath)
	require.Equal(t, "cookies.cache", cfg.CookieCache)
	require.True(t, cfg.IsHeadless())
	require.True(t, cfg.Tolerances.FirstWordLocation())
	require.True(t, cfg.Tolerances.AssumeUnverified())
	require.NoError(t, cfg.RequireSite())
}

func TestLoadLocalOverlayWins(t *testing.T) {
	path := writeConfig(t, "recsniper.json5", `{
		base_url: "https://rec.example.com",
		username: "alice",
		password: "pw",
		nav_timeout_seconds: 30,
	}`)
	local := localName(path)
	require.NoError(t, os.WriteFile(local, []byte(`{
		username: "bob",
		nav_timeout_seconds: 60,
		headless: false,
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.Username)
	require.Equal(t, 60*time.Second, cfg.NavTimeout())
	require.False(t, cfg.IsHeadless())
	// untouched by the overlay
	require.Equal(t, "https://rec.example.com", cfg.BaseURL)
}

func TestLoadEnvSecrets(t *testing.T) {
	hash := bytes.Repeat([]byte{0xaa}, 32)
	block := bytes.Repeat([]byte{0xbb}, 32)
	t.Setenv("RECSNIPER_PASSWORD", "env-password")
	t.Setenv("RECSNIPER_COOKIE_HASH_KEY", base64.StdEncoding.EncodeToString(hash))
	t.Setenv("RECSNIPER_COOKIE_BLOCK_KEY", base64.StdEncoding.EncodeToString(block))

	path := writeConfig(t, "recsniper.json5", `{
		base_url: "https://rec.example.com",
		username: "alice",
		password: "file-password",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-password", cfg.Password)
	require.True(t, cfg.HasCookieKeys())
	require.Equal(t, hash, cfg.CookieHashKey)
	require.Equal(t, block, cfg.CookieBlockKey)
}

func TestLoadDecryptsPassword(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	aead, err := crypto.New(key)
	require.NoError(t, err)
	sealed, err := aead.Seal("real-password")
	require.NoError(t, err)

	t.Setenv("RECSNIPER_CRED_KEY", base64.StdEncoding.EncodeToString(key))
	path := writeConfig(t, "recsniper.json5", `{
		base_url: "https://rec.example.com",
		username: "alice",
		password: "`+sealed+`",
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "real-password", cfg.Password)
}

func TestLoadEncryptedPasswordWithoutKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	aead, err := crypto.New(key)
	require.NoError(t, err)
	sealed, err := aead.Seal("real-password")
	require.NoError(t, err)

	path := writeConfig(t, "recsniper.json5", `{
		base_url: "https://rec.example.com",
		username: "alice",
		password: "`+sealed+`",
	}`)

	_, err = Load(path)
	var ce booking.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "password", ce.Field)
}

func TestLoadRejectsBadEnvKey(t *testing.T) {
	t.Setenv("RECSNIPER_CRED_KEY", "!!!not base64!!!")
	path := writeConfig(t, "recsniper.json5", `{base_url: "https://rec.example.com"}`)

	_, err := Load(path)
	var ce booking.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "RECSNIPER_CRED_KEY", ce.Field)
}

func TestRequireSiteMissingFields(t *testing.T) {
	cfg := Config{BaseURL: "https://rec.example.com"}
	require.Error(t, cfg.RequireSite())
	cfg.Username = "alice"
	require.Error(t, cfg.RequireSite())
	cfg.Password = "pw"
	require.NoError(t, cfg.RequireSite())
}

func TestRequestSpecCompile(t *testing.T) {
	loc, err := time.LoadLocation("America/Vancouver")
	require.NoError(t, err)

	rs := RequestSpec{
		Activity:       "Drop In Badminton - Adult",
		Date:           "2-Feb-2026",
		Time:           "08:15AM",
		Location:       "Cloverdale Recreation Centre",
		AcceptWaitlist: true,
	}
	req, err := rs.Compile(loc)
	require.NoError(t, err)
	require.Equal(t, "8:15 am", req.TimeLabel)
	require.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, loc), req.Date)
	require.True(t, req.AcceptWaitlist)

	rs.Date = "2026-02-02"
	_, err = rs.Compile(loc)
	var ce booking.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "date", ce.Field)

	rs.Date = "2-Feb-2026"
	rs.Activity = " "
	_, err = rs.Compile(loc)
	require.Error(t, err)
}

func TestCompileRequests(t *testing.T) {
	loc, err := time.LoadLocation("America/Vancouver")
	require.NoError(t, err)

	cfg := Config{Requests: []RequestSpec{
		{Activity: "Drop In Badminton - Adult", Date: "2-Feb-2026", Time: "8:15 am", Location: "Cloverdale Recreation Centre"},
		{Activity: "Lane Swim", Date: "3-Feb-2026", Time: "6:00 am", Location: "Grandview Heights Aquatic Centre"},
	}}
	reqs, err := cfg.CompileRequests(loc)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	cfg.Requests[1].Date = "bad"
	_, err = cfg.CompileRequests(loc)
	require.ErrorContains(t, err, "request 1")
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "recsniper.local.json5", localName("recsniper.json5"))
	require.Equal(t, filepath.Join("a", "b.local.json5"), localName(filepath.Join("a", "b.json5")))
}
