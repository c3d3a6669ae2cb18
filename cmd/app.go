package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/rec-sniper/internal/acquire"
	"github.com/example/rec-sniper/internal/booking"
	"github.com/example/rec-sniper/internal/browser"
	"github.com/example/rec-sniper/internal/catalog"
	"github.com/example/rec-sniper/internal/clock"
	"github.com/example/rec-sniper/internal/config"
	"github.com/example/rec-sniper/internal/history"
)

// app wires the collaborators every command needs: config, reference clock
// and the compiled rule catalog.
type app struct {
	cfg   config.Config
	clk   clock.Clock
	rules []catalog.Rule
	log   *slog.Logger
}

func loadApp() (app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return app{}, err
	}
	clk, err := clock.New()
	if err != nil {
		return app{}, err
	}
	rules, err := catalog.Compile(cfg.Rules)
	if err != nil {
		return app{}, err
	}
	return app{cfg: cfg, clk: clk, rules: rules, log: slog.Default()}, nil
}

// machine builds the acquisition state machine. Each Run opens a fresh
// browser session, primed with cached cookies when the cache keys are set.
func (a app) machine() (*acquire.Machine, error) {
	if err := a.cfg.RequireSite(); err != nil {
		return nil, err
	}

	var cache *browser.CookieCache
	if a.cfg.HasCookieKeys() {
		cache = browser.NewCookieCache(a.cfg.CookieCache, a.cfg.CookieHashKey, a.cfg.CookieBlockKey)
	} else {
		a.log.Debug("cookie cache disabled (keys not set); every attempt logs in from scratch")
	}

	m := &acquire.Machine{
		NewSession: func() (browser.Session, error) {
			sess, err := browser.NewRod(browser.Options{
				Headless:      a.cfg.IsHeadless(),
				NavTimeout:    a.cfg.NavTimeout(),
				ActionTimeout: a.cfg.ActionTimeout(),
			})
			if err != nil {
				return nil, err
			}
			if cache != nil {
				if cookies, ok := cache.Load(); ok {
					if err := sess.SetCookies(cookies); err != nil {
						a.log.Warn("restoring cached cookies failed", "err", err)
					}
				}
			}
			return sess, nil
		},
		BaseURL:  a.cfg.BaseURL,
		Username: a.cfg.Username,
		Password: a.cfg.Password,
		Tol: acquire.Tolerances{
			FirstWordLocation: a.cfg.Tolerances.FirstWordLocation(),
			AssumeUnverified:  a.cfg.Tolerances.AssumeUnverified(),
		},
		Log:           a.log,
		Now:           a.clk.Now,
		ScreenshotDir: a.cfg.ScreenshotDir,
	}
	if cache != nil {
		m.OnAuthenticated = func(sess browser.Session) {
			rs, ok := sess.(*browser.RodSession)
			if !ok {
				return
			}
			cookies, err := rs.Cookies()
			if err != nil {
				a.log.Warn("reading cookies for cache failed", "err", err)
				return
			}
			if err := cache.Save(cookies); err != nil {
				a.log.Warn("saving cookie cache failed", "err", err)
			}
		}
	}
	return m, nil
}

// report logs the outcome line and records it in the attempt history. A
// history failure never masks the outcome itself.
func (a app) report(ctx context.Context, store *history.Store, ruleID string, o booking.Outcome) {
	fmt.Println(booking.Line(o))
	if store == nil {
		return
	}
	if err := store.Record(ctx, ruleID, o); err != nil {
		a.log.Warn("recording attempt failed", "err", err)
	}
}

func (a app) openHistory() *history.Store {
	store, err := history.Open(a.cfg.HistoryPath)
	if err != nil {
		a.log.Warn("attempt history unavailable", "err", err)
		return nil
	}
	return store
}
