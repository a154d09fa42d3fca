package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Config controls the chromedp-backed session.
type Config struct {
	UserAgent         string
	Headless          bool
	NavigationTimeout time.Duration
	ElementTimeout    time.Duration
}

// Chrome implements Session on a single headless Chrome tab via chromedp.
// One Chrome owns one tab; its navigation state is the crawl cursor.
type Chrome struct {
	allocCancel context.CancelFunc
	tab         context.Context
	tabCancel   context.CancelFunc
	cfg         Config
	logger      *zap.Logger
}

// NewChrome launches a browser, opens the session tab, and warms it up.
func NewChrome(cfg Config, logger *zap.Logger) (*Chrome, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tab, networkSetup(cfg.UserAgent)); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Chrome{
		allocCancel: allocCancel,
		tab:         tab,
		tabCancel:   tabCancel,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Close tears down the tab and the browser process.
func (c *Chrome) Close() {
	if c == nil {
		return
	}
	c.tabCancel()
	c.allocCancel()
}

func networkSetup(userAgent string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if userAgent != "" {
			if err := emulation.SetUserAgentOverride(userAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// Navigate implements Session.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	err := c.run(ctx, c.cfg.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Find implements Session.
func (c *Chrome) Find(ctx context.Context, loc Locator) (Element, error) {
	nodes, err := c.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("find %q: %w", loc.Query, ErrNotFound)
	}
	return nodes[0], nil
}

// FindAll implements Session.
func (c *Chrome) FindAll(ctx context.Context, loc Locator) ([]Element, error) {
	nodes, err := c.nodes(ctx, loc)
	if err != nil {
		return nil, err
	}
	els := make([]Element, len(nodes))
	for i, n := range nodes {
		els[i] = n
	}
	return els, nil
}

// Click implements Session.
func (c *Chrome) Click(ctx context.Context, el Element) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}
	if err := c.run(ctx, c.cfg.ElementTimeout, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("click node %d: %w", n.NodeID, err)
	}
	return nil
}

// Type implements Session.
func (c *Chrome) Type(ctx context.Context, el Element, text string) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{n.NodeID}
	err = c.run(ctx, c.cfg.ElementTimeout,
		chromedp.Clear(ids, chromedp.ByNodeID),
		chromedp.SendKeys(ids, text, chromedp.ByNodeID),
	)
	if err != nil {
		return fmt.Errorf("type into node %d: %w", n.NodeID, err)
	}
	return nil
}

// Submit implements Session.
func (c *Chrome) Submit(ctx context.Context, el Element) error {
	n, err := asNode(el)
	if err != nil {
		return err
	}
	err = c.run(ctx, c.cfg.NavigationTimeout,
		chromedp.Submit([]cdp.NodeID{n.NodeID}, chromedp.ByNodeID),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("submit node %d: %w", n.NodeID, err)
	}
	return nil
}

// Text implements Session.
func (c *Chrome) Text(ctx context.Context, el Element) (string, error) {
	n, err := asNode(el)
	if err != nil {
		return "", err
	}
	var text string
	err = c.run(ctx, c.cfg.ElementTimeout,
		chromedp.Text([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID),
	)
	if err != nil {
		return "", fmt.Errorf("read text of node %d: %w", n.NodeID, err)
	}
	return strings.TrimSpace(text), nil
}

// Back implements Session.
func (c *Chrome) Back(ctx context.Context) error {
	err := c.run(ctx, c.cfg.NavigationTimeout,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate back: %w", err)
	}
	return nil
}

// WaitVisible implements Session.
func (c *Chrome) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.cfg.ElementTimeout
	}
	err := c.run(ctx, timeout, chromedp.WaitVisible(loc.Query, queryOption(loc.By)))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("wait for %q: %w", loc.Query, ErrTimeout)
		}
		return fmt.Errorf("wait for %q: %w", loc.Query, err)
	}
	return nil
}

// ContentHeight implements Session.
func (c *Chrome) ContentHeight(ctx context.Context) (float64, error) {
	var height float64
	err := c.run(ctx, c.cfg.ElementTimeout,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	)
	if err != nil {
		return 0, fmt.Errorf("read content height: %w", err)
	}
	return height, nil
}

// ScrollToBottom implements Session.
func (c *Chrome) ScrollToBottom(ctx context.Context) error {
	err := c.run(ctx, c.cfg.ElementTimeout,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
	)
	if err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

// HTML implements Session.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, c.cfg.ElementTimeout,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("serialize dom: %w", err)
	}
	return html, nil
}

func (c *Chrome) nodes(ctx context.Context, loc Locator) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, c.cfg.ElementTimeout,
		chromedp.Nodes(loc.Query, &nodes, queryOption(loc.By), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("locate %q: %w", loc.Query, err)
	}
	return nodes, nil
}

// run executes actions on the session tab with a bounded deadline, forwarding
// cancellation from the caller's context into the chromedp task.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	taskCtx, cancel := context.WithTimeout(c.tab, timeout)
	defer cancel()

	stop := forwardCancel(ctx, cancel)
	defer stop()

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func queryOption(by By) chromedp.QueryOption {
	if by == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func asNode(el Element) (*cdp.Node, error) {
	n, ok := el.(*cdp.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("element handle %T is not a chromedp node", el)
	}
	return n, nil
}
