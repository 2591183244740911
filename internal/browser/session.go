package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/internal/humanize"
	"github.com/yunseokse0/viewtest/pkg/models"
)

// Visitor opens one browser per call to Visit and walks it through a page
// visit: load, wait for the DOM, scroll, dwell, close.
type Visitor struct {
	Config *config.AppConfig
	Rand   *humanize.Rand
	Logger *zap.Logger
}

// NewVisitor creates a new visitor
func NewVisitor(cfg *config.AppConfig, rng *humanize.Rand, logger *zap.Logger) *Visitor {
	return &Visitor{
		Config: cfg,
		Rand:   rng,
		Logger: logger,
	}
}

// session is the randomized shape of one visit, drawn before the browser starts.
type session struct {
	size   config.WindowSize
	scroll []humanize.ScrollStep
	dwell  time.Duration
}

func (v *Visitor) plan() session {
	sizes := v.Config.Browser.WindowSizes
	return session{
		size:   sizes[v.Rand.Index(len(sizes))],
		scroll: v.Rand.ScrollPlan(v.Config.Visit.ScrollBounds()),
		dwell:  v.Rand.Duration(v.Config.Visit.MinDwell, v.Config.Visit.MaxDwell),
	}
}

// Visit runs one session. Failures are recorded on the returned result and
// logged; the browser is closed on every path.
func (v *Visitor) Visit(ctx context.Context, workerID int) models.Result {
	start := time.Now()
	url := v.Config.Target.URL
	log := v.Logger.With(zap.Int("worker", workerID))

	s := v.plan()
	result := models.Result{
		WorkerID:   workerID,
		URL:        url,
		WindowSize: s.size.String(),
	}

	err := v.run(ctx, log, s, &result)
	if err != nil {
		result.Err = err.Error()
		log.Error("session failed", zap.String("url", url), zap.Error(err))
	} else {
		log.Info("session finished",
			zap.Int("scrolls", result.Scrolls),
			zap.Duration("dwell", result.Dwell),
		)
	}

	result.Duration = time.Since(start)
	result.Timestamp = time.Now()
	return result
}

func (v *Visitor) run(ctx context.Context, log *zap.Logger, s session, result *models.Result) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, Options(&v.Config.Browser, s.size)...)
	defer cancelAlloc()

	sugar := log.Sugar()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)
	defer cancelBrowser()

	log.Info("starting browser", zap.String("window", s.size.String()))

	// Start the browser on the undecorated context so the load timeout
	// below only bounds navigation and not the browser's lifetime.
	if err := chromedp.Run(browserCtx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := chromedp.Cancel(browserCtx); err != nil {
			log.Debug("close browser", zap.Error(err))
		}
		log.Info("browser closed")
	}()

	log.Info("loading page", zap.String("url", result.URL))
	if err := v.load(browserCtx, result); err != nil {
		return err
	}
	log.Info("page loaded", zap.Int("status", result.StatusCode), zap.String("title", result.Title))

	for i, step := range s.scroll {
		if err := chromedp.Run(browserCtx,
			chromedp.Evaluate(scrollScript(step.Pixels), nil),
			chromedp.Sleep(step.Pause),
		); err != nil {
			return fmt.Errorf("scroll %d: %w", i+1, err)
		}
		result.Scrolls++
		result.ScrolledPixels += step.Pixels
	}

	log.Info("dwelling on page", zap.Duration("dwell", s.dwell))
	if err := chromedp.Run(browserCtx, chromedp.Sleep(s.dwell)); err != nil {
		return fmt.Errorf("dwell: %w", err)
	}
	result.Dwell = s.dwell

	return nil
}

// load navigates and waits for the configured selector within LoadTimeout,
// then records the response status and page title.
func (v *Visitor) load(ctx context.Context, result *models.Result) error {
	loadCtx, cancel := context.WithTimeout(ctx, v.Config.Visit.LoadTimeout)
	defer cancel()

	resp, err := chromedp.RunResponse(loadCtx, chromedp.Navigate(result.URL))
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	result.StatusCode = statusCode(resp)

	var html string
	if err := chromedp.Run(loadCtx,
		chromedp.WaitReady(v.Config.Visit.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("wait for %q: %w", v.Config.Visit.WaitSelector, err)
	}

	result.Title = pageTitle(html)
	return nil
}

func scrollScript(pixels int) string {
	return fmt.Sprintf("window.scrollBy(0, %d);", pixels)
}

func statusCode(resp *network.Response) int {
	if resp == nil {
		return 0
	}
	return int(resp.Status)
}

// pageTitle extracts the document title from rendered HTML
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
