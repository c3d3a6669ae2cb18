package browser

import (
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/gorilla/securecookie"
)

const cacheName = "recsniper_session"

// CookieCache persists the authenticated cookie set between runs so a still
// valid login can be reused instead of re-submitting credentials inside the
// lead buffer. The file content is signed and encrypted; a tampered or
// unreadable cache is treated as absent.
type CookieCache struct {
	sc   *securecookie.SecureCookie
	path string
}

func NewCookieCache(path string, hashKey, blockKey []byte) *CookieCache {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxLength(0)
	sc.MaxAge(int((24 * time.Hour).Seconds()))
	return &CookieCache{sc: sc, path: path}
}

func (c *CookieCache) Save(cookies []*proto.NetworkCookie) error {
	encoded, err := c.sc.Encode(cacheName, cookies)
	if err != nil {
		return fmt.Errorf("encode cookie cache: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write cookie cache: %w", err)
	}
	return nil
}

// Load returns the cached cookies, or (nil, false) when the cache is
// missing, expired or invalid.
func (c *CookieCache) Load() ([]*proto.NetworkCookie, bool) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var cookies []*proto.NetworkCookie
	if err := c.sc.Decode(cacheName, string(raw), &cookies); err != nil {
		return nil, false
	}
	return cookies, len(cookies) > 0
}

func (c *CookieCache) Clear() {
	_ = os.Remove(c.path)
}
