package browser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type Options struct {
	Headless bool

	// NavTimeout bounds page loads; ActionTimeout bounds element lookups
	// and interactions. Exceeding either surfaces as a stage-local error,
	// never a hang.
	NavTimeout    time.Duration
	ActionTimeout time.Duration
}

// RodSession drives a real Chromium instance through go-rod, with the
// stealth patches applied so automation markers don't trip the site's bot
// detection.
type RodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	opts     Options
}

func NewRod(opts Options) (*RodSession, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 10 * time.Second
	}

	l := launcher.New().Headless(opts.Headless).Leakless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("open stealth page: %w", err)
	}
	return &RodSession{launcher: l, browser: b, page: page, opts: opts}, nil
}

func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.opts.NavTimeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (s *RodSession) Find(ctx context.Context, selector string) (Element, error) {
	el, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	return rodElement{el: el, timeout: s.opts.ActionTimeout}, nil
}

func (s *RodSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find all %q: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el, timeout: s.opts.ActionTimeout})
	}
	return out, nil
}

func (s *RodSession) FindByText(ctx context.Context, selector, text string) (Element, error) {
	el, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).ElementR(selector, textPattern(text))
	if err != nil {
		return nil, fmt.Errorf("find %q with text %q: %w", selector, text, err)
	}
	return rodElement{el: el, timeout: s.opts.ActionTimeout}, nil
}

func (s *RodSession) FindByRole(ctx context.Context, role, name string) (Element, error) {
	sel := fmt.Sprintf("[role=%q]", role)
	el, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).ElementR(sel, textPattern(name))
	if err != nil {
		return nil, fmt.Errorf("find role %q named %q: %w", role, name, err)
	}
	return rodElement{el: el, timeout: s.opts.ActionTimeout}, nil
}

func (s *RodSession) Fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %q: %w", selector, err)
	}
	return nil
}

func (s *RodSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.opts.ActionTimeout
	}
	_, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (s *RodSession) Frame(ctx context.Context, selector string) (Session, error) {
	el, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("frame %q: %w", selector, err)
	}
	fp, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("frame %q: %w", selector, err)
	}
	return &framePage{page: fp, opts: s.opts}, nil
}

func (s *RodSession) Screenshot(ctx context.Context, path string) error {
	data, err := s.page.Context(ctx).Timeout(s.opts.ActionTimeout).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *RodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	return err
}

// Cookies exposes the browser cookie set for the cookie cache.
func (s *RodSession) Cookies() ([]*proto.NetworkCookie, error) {
	return s.browser.GetCookies()
}

// SetCookies restores a previously cached cookie set before navigation.
func (s *RodSession) SetCookies(cookies []*proto.NetworkCookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  c.Expires,
		})
	}
	return s.browser.SetCookies(params)
}

// framePage adapts a nested frame to the Session contract. Close is a no-op:
// the owning RodSession tears the browser down.
type framePage struct {
	page *rod.Page
	opts Options
}

func (f *framePage) Navigate(ctx context.Context, url string) error {
	return fmt.Errorf("navigate inside frame not supported")
}

func (f *framePage) Find(ctx context.Context, selector string) (Element, error) {
	el, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("frame find %q: %w", selector, err)
	}
	return rodElement{el: el, timeout: f.opts.ActionTimeout}, nil
}

func (f *framePage) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el, timeout: f.opts.ActionTimeout})
	}
	return out, nil
}

func (f *framePage) FindByText(ctx context.Context, selector, text string) (Element, error) {
	el, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).ElementR(selector, textPattern(text))
	if err != nil {
		return nil, fmt.Errorf("frame find %q with text %q: %w", selector, text, err)
	}
	return rodElement{el: el, timeout: f.opts.ActionTimeout}, nil
}

func (f *framePage) FindByRole(ctx context.Context, role, name string) (Element, error) {
	el, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).ElementR(fmt.Sprintf("[role=%q]", role), textPattern(name))
	if err != nil {
		return nil, fmt.Errorf("frame find role %q named %q: %w", role, name, err)
	}
	return rodElement{el: el, timeout: f.opts.ActionTimeout}, nil
}

func (f *framePage) Fill(ctx context.Context, selector, value string) error {
	el, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Input(value)
}

func (f *framePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = f.opts.ActionTimeout
	}
	_, err := f.page.Context(ctx).Timeout(timeout).Element(selector)
	return err
}

func (f *framePage) Frame(ctx context.Context, selector string) (Session, error) {
	el, err := f.page.Context(ctx).Timeout(f.opts.ActionTimeout).Element(selector)
	if err != nil {
		return nil, err
	}
	fp, err := el.Frame()
	if err != nil {
		return nil, err
	}
	return &framePage{page: fp, opts: f.opts}, nil
}

func (f *framePage) Screenshot(ctx context.Context, path string) error {
	data, err := f.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (f *framePage) Close() error { return nil }

type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

func (e rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Timeout(e.timeout).Text()
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Timeout(e.timeout).Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) Find(ctx context.Context, selector string) (Element, error) {
	el, err := e.el.Context(ctx).Timeout(e.timeout).Element(selector)
	if err != nil {
		return nil, err
	}
	return rodElement{el: el, timeout: e.timeout}, nil
}

func (e rodElement) FindByText(ctx context.Context, selector, text string) (Element, error) {
	el, err := e.el.Context(ctx).Timeout(e.timeout).ElementR(selector, textPattern(text))
	if err != nil {
		return nil, err
	}
	return rodElement{el: el, timeout: e.timeout}, nil
}

// textPattern builds the case-insensitive literal-text regex rod's ElementR
// expects.
func textPattern(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}
