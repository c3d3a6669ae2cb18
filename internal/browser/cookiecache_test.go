package browser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *CookieCache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.cache")
	hash := bytes.Repeat([]byte{0xaa}, 32)
	block := bytes.Repeat([]byte{0xbb}, 32)
	return NewCookieCache(path, hash, block)
}

func TestCookieCacheRoundtrip(t *testing.T) {
	cache := testCache(t)

	cookies := []*proto.NetworkCookie{
		{Name: "session", Value: "abc123", Domain: "rec.example.com", Path: "/", Secure: true},
		{Name: "csrf", Value: "tok", Domain: "rec.example.com", Path: "/"},
	}
	require.NoError(t, cache.Save(cookies))

	loaded, ok := cache.Load()
	require.True(t, ok)
	require.Len(t, loaded, 2)
	require.Equal(t, "session", loaded[0].Name)
	require.Equal(t, "abc123", loaded[0].Value)
}

func TestCookieCacheMissingFile(t *testing.T) {
	cache := testCache(t)
	_, ok := cache.Load()
	require.False(t, ok)
}

func TestCookieCacheTamperedFile(t *testing.T) {
	cache := testCache(t)
	require.NoError(t, cache.Save([]*proto.NetworkCookie{{Name: "session", Value: "v"}}))

	require.NoError(t, os.WriteFile(cache.path, []byte("tampered"), 0o600))
	_, ok := cache.Load()
	require.False(t, ok)
}

func TestCookieCacheValueIsOpaque(t *testing.T) {
	cache := testCache(t)
	require.NoError(t, cache.Save([]*proto.NetworkCookie{{Name: "session", Value: "super-secret"}}))

	raw, err := os.ReadFile(cache.path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret")
}

func TestCookieCacheClear(t *testing.T) {
	cache := testCache(t)
	require.NoError(t, cache.Save([]*proto.NetworkCookie{{Name: "session", Value: "v"}}))
	cache.Clear()
	_, ok := cache.Load()
	require.False(t, ok)
}
