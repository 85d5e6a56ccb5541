// Package browser is the go-rod backed sequencer.Session.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/example/classbooker/internal/application/sequencer"
)

const (
	windowSize        = "1920,1080"
	screenshotTimeout = 15 * time.Second
)

// Launcher provisions a headless Chromium. When Bin is empty the launcher
// downloads a matching revision on first use.
type Launcher struct {
	Bin string
	Log zerolog.Logger
}

// Open starts the browser with fixed launch flags and a single blank page.
// The process is not tied to ctx: an interrupted run still needs the page
// for its screenshot, and Close always reaps it.
func (l Launcher) Open(ctx context.Context) (sequencer.Session, error) {
	ln := launcher.New().
		Context(context.WithoutCancel(ctx)).
		Headless(true).
		NoSandbox(true).
		Set("window-size", windowSize).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if l.Bin != "" {
		ln = ln.Bin(l.Bin)
	}

	controlURL, err := ln.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	l.Log.Debug().Str("control_url", controlURL).Msg("browser launched")

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		ln.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		ln.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}
	return &Session{launcher: ln, browser: b, page: page, log: l.Log}, nil
}

type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	log      zerolog.Logger
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

// Find polls the DOM until loc matches and the element meets ready. The
// returned element is bound to ctx, not to the per-call deadline.
func (s *Session) Find(ctx context.Context, loc sequencer.Locator, ready sequencer.Readiness, timeout time.Duration) (sequencer.Element, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	p := s.page.Context(tctx)

	var (
		el  *rod.Element
		err error
	)
	switch loc.Kind {
	case sequencer.ByID:
		el, err = p.Element(`[id="` + loc.Value + `"]`)
	case sequencer.ByXPath:
		el, err = p.ElementX(loc.Value)
	default:
		return nil, fmt.Errorf("unsupported locator kind %s", loc.Kind)
	}
	if err != nil {
		return nil, err
	}

	switch ready {
	case sequencer.Visible:
		err = el.WaitVisible()
	case sequencer.Clickable:
		if err = el.WaitVisible(); err == nil {
			_, err = el.WaitInteractable()
		}
	}
	if err != nil {
		return nil, err
	}
	return &element{el: el.Context(ctx)}, nil
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	tctx, cancel := context.WithTimeout(ctx, screenshotTimeout)
	defer cancel()
	img, err := s.page.Context(tctx).Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return os.WriteFile(path, img, 0o644)
}

// Close shuts the browser down and removes its profile directory.
func (s *Session) Close() error {
	err := s.browser.Close()
	if err != nil {
		s.launcher.Kill()
	}
	s.launcher.Cleanup()
	s.log.Debug().Msg("browser closed")
	return err
}

type element struct {
	el *rod.Element
}

func (e *element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) Input(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`() => this.scrollIntoView({block: 'center'})`)
	return err
}

func (e *element) Selected(ctx context.Context) (bool, error) {
	v, err := e.el.Context(ctx).Property("checked")
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}
