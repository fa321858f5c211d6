package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// By selects the lookup strategy for a page element.
type By int

const (
	ByCSS By = iota
	ByXPath
)

// Lookup is one structural hint for locating a semantic element. Candidate
// lists hold several structurally different lookups per field because target
// markup varies and changes over time.
type Lookup struct {
	By    By
	Query string
}

func CSS(q string) Lookup   { return Lookup{By: ByCSS, Query: q} }
func XPath(q string) Lookup { return Lookup{By: ByXPath, Query: q} }

func (l Lookup) String() string {
	if l.By == ByXPath {
		return "xpath:" + l.Query
	}
	return "css:" + l.Query
}

// Options controls how a browser session is launched.
type Options struct {
	Headless        bool
	UserAgent       string
	PageLoadTimeout time.Duration
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Session owns one Chrome tab for the duration of a single extraction or
// automation attempt. It is not safe for concurrent use and must be closed on
// every exit path.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	loadTimeout time.Duration
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	loadTimeout := opts.PageLoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.UserAgent(ua),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		loadTimeout: loadTimeout,
	}

	// Start the browser eagerly so launch failures surface here rather than
	// on the first navigation.
	startCtx, cancel := context.WithTimeout(tabCtx, loadTimeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}
	return s, nil
}

func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

// run executes actions against the tab under a local deadline. Expiry cancels
// only the actions, not the tab.
func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func queryOpts(l Lookup) chromedp.QueryOption {
	if l.By == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s *Session) Navigate(url string) error {
	return s.run(s.loadTimeout, chromedp.Navigate(url))
}

// WaitVisible blocks until the lookup resolves to a visible element or the
// timeout elapses.
func (s *Session) WaitVisible(l Lookup, timeout time.Duration) error {
	return s.run(timeout, chromedp.WaitVisible(l.Query, queryOpts(l)))
}

// Text returns the trimmed text content of the first visible element matching
// the lookup.
func (s *Session) Text(l Lookup, timeout time.Duration) (string, error) {
	var out string
	err := s.run(timeout,
		chromedp.WaitVisible(l.Query, queryOpts(l)),
		chromedp.Text(l.Query, &out, queryOpts(l)),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *Session) Click(l Lookup, timeout time.Duration) error {
	return s.run(timeout,
		chromedp.WaitVisible(l.Query, queryOpts(l)),
		chromedp.Click(l.Query, queryOpts(l)),
	)
}

// Fill clears the matched input and types the value, then settles briefly so
// page-side validation can run.
func (s *Session) Fill(l Lookup, value string, timeout time.Duration) error {
	return s.run(timeout,
		chromedp.WaitVisible(l.Query, queryOpts(l)),
		chromedp.Clear(l.Query, queryOpts(l)),
		chromedp.SendKeys(l.Query, value, queryOpts(l)),
		chromedp.Sleep(500*time.Millisecond),
	)
}

// Upload attaches a file (by absolute path) to the matched file input. File
// inputs are frequently hidden, so visibility is not required.
func (s *Session) Upload(l Lookup, path string, timeout time.Duration) error {
	if l.By != ByCSS {
		return errors.New("upload requires a css lookup")
	}
	return s.run(timeout,
		chromedp.SetUploadFiles(l.Query, []string{path}, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
	)
}

// CollectText evaluates a selector against all matching elements and joins
// their trimmed text with "; ". Missing elements yield an empty string.
func (s *Session) CollectText(cssSelector string, timeout time.Duration) (string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.textContent.trim()).filter(t => t.length > 0).join("; ")`,
		cssSelector,
	)
	var out string
	if err := s.run(timeout, chromedp.Evaluate(expr, &out)); err != nil {
		return "", err
	}
	return out, nil
}

// ScriptContents returns the raw text of every <script> tag with the given
// type attribute, most commonly "application/ld+json".
func (s *Session) ScriptContents(scriptType string, timeout time.Duration) ([]string, error) {
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll('script[type=%q]')).map(e => e.textContent)`,
		scriptType,
	)
	var out []string
	if err := s.run(timeout, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Sleep pauses on the page, used to let dynamically injected forms settle.
func (s *Session) Sleep(d time.Duration) error {
	return s.run(0, chromedp.Sleep(d))
}

// IsTimeout reports whether an action failed because its local deadline
// elapsed.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
