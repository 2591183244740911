// Package browser launches Chrome sessions through chromedp and drives a
// single page visit in each of them.
package browser

import (
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/yunseokse0/viewtest/internal/config"
)

// Flags returns the command line switches layered on top of
// chromedp.DefaultExecAllocatorOptions for one session.
func Flags(cfg *config.BrowserConfig, size config.WindowSize) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":    cfg.Headless,
		"window-size": fmt.Sprintf("%d,%d", size.Width, size.Height),
	}

	// The default allocator options assume headless; undo its extras for a
	// visible window.
	flags["hide-scrollbars"] = cfg.Headless
	flags["mute-audio"] = cfg.Headless
	if cfg.Headless {
		flags["disable-gpu"] = true
	}

	if cfg.NoSandbox {
		flags["no-sandbox"] = true
	}
	if cfg.DisableDevShm {
		flags["disable-dev-shm-usage"] = true
	}
	if cfg.UserAgent != "" {
		flags["user-agent"] = cfg.UserAgent
	}

	return flags
}

// Options returns chromedp allocator options for one session.
func Options(cfg *config.BrowserConfig, size config.WindowSize) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	for name, value := range Flags(cfg, size) {
		opts = append(opts, chromedp.Flag(name, value))
	}

	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	return opts
}
