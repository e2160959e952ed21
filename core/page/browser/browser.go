// Package browser implements page.Page on a Chromium tab driven by go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/koscakluka/ema-walkthrough/core/page"
)

type Options struct {
	Headless   bool
	Width      int
	Height     int
	Timeout    time.Duration
	ProfileDir string
	Style      page.HighlightStyle
}

type Option func(*Options)

func WithHeadless(headless bool) Option {
	return func(o *Options) { o.Headless = headless }
}

func WithViewport(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.Timeout = timeout }
}

func WithProfileDir(dir string) Option {
	return func(o *Options) { o.ProfileDir = dir }
}

func WithHighlightStyle(style page.HighlightStyle) Option {
	return func(o *Options) { o.Style = style }
}

// Page is a browser tab. It is safe to use from a single goroutine at a
// time, which is how the walkthrough loop drives it.
type Page struct {
	browser *rod.Browser
	page    *rod.Page
	style   page.HighlightStyle
}

var _ page.Page = (*Page)(nil)

// Open launches a browser and navigates to url.
func Open(ctx context.Context, url string, opts ...Option) (*Page, error) {
	options := Options{
		Headless: true,
		Width:    1280,
		Height:   800,
		Timeout:  30 * time.Second,
		Style:    page.DefaultHighlightStyle,
	}
	for _, opt := range opts {
		opt(&options)
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(options.Headless)
	if options.ProfileDir != "" {
		l = l.UserDataDir(options.ProfileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	p, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             options.Width,
		Height:            options.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if err := p.Timeout(options.Timeout).WaitLoad(); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	return &Page{browser: b, page: p, style: options.Style}, nil
}

func (p *Page) Close() error {
	var errs []error
	if p.page != nil {
		errs = append(errs, p.page.Close())
	}
	if p.browser != nil {
		errs = append(errs, p.browser.Close())
	}
	return errors.Join(errs...)
}

func selector(id string) string {
	return "[id=" + strconv.Quote(id) + "]"
}

func (p *Page) element(ctx context.Context, id string) (*rod.Element, error) {
	found, el, err := p.page.Context(ctx).Has(selector(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query element %q: %w", id, err)
	}
	if !found {
		return nil, &page.MissingElementError{ID: id}
	}
	return el, nil
}

func (p *Page) Click(ctx context.Context, id string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", id, err)
	}
	return nil
}

func (p *Page) Focus(ctx context.Context, id string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("failed to focus %q: %w", id, err)
	}
	return nil
}

func (p *Page) Value(ctx context.Context, id string) (string, error) {
	el, err := p.element(ctx, id)
	if err != nil {
		return "", err
	}
	value, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("failed to read value of %q: %w", id, err)
	}
	if value.Nil() {
		return "", nil
	}
	return value.Str(), nil
}

const setValueJS = `(v) => {
	this.value = v
	this.dispatchEvent(new Event("input", { bubbles: true }))
	this.dispatchEvent(new Event("change", { bubbles: true }))
}`

func (p *Page) SetValue(ctx context.Context, id, value string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	if _, err := el.Eval(setValueJS, value); err != nil {
		return fmt.Errorf("failed to set value of %q: %w", id, err)
	}
	return nil
}

const highlightJS = `(id, wrapperId, css) => {
	const el = document.getElementById(id)
	if (!el || document.getElementById(wrapperId)) return
	const wrapper = document.createElement("span")
	wrapper.id = wrapperId
	wrapper.style.cssText = css
	wrapper.style.display = "inline-block"
	el.parentNode.insertBefore(wrapper, el)
	wrapper.appendChild(el)
	el.scrollIntoView({ block: "center", behavior: "smooth" })
}`

const removeHighlightJS = `(wrapperId) => {
	const wrapper = document.getElementById(wrapperId)
	if (!wrapper) return
	while (wrapper.firstChild) wrapper.parentNode.insertBefore(wrapper.firstChild, wrapper)
	wrapper.remove()
}`

func (p *Page) Highlight(ctx context.Context, id string) error {
	if _, err := p.element(ctx, id); err != nil {
		return err
	}
	if _, err := p.page.Context(ctx).Eval(highlightJS, id, page.HighlightID(id), p.style.CSS()); err != nil {
		return fmt.Errorf("failed to highlight %q: %w", id, err)
	}
	return nil
}

func (p *Page) RemoveHighlight(ctx context.Context, id string) error {
	if _, err := p.element(ctx, id); err != nil {
		return err
	}
	if _, err := p.page.Context(ctx).Eval(removeHighlightJS, page.HighlightID(id)); err != nil {
		return fmt.Errorf("failed to remove highlight from %q: %w", id, err)
	}
	return nil
}
