package shopee

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"staylink-admin/config"
	"staylink-admin/internal/affiliate"
)

// The storefront blocks default automation signatures, so the page is rendered
// with a mobile profile and the automation fingerprint suppressed.
const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"

type Scraper struct {
	cfg    config.ShopeeConfig
	logger *zap.SugaredLogger

	clock      Clock
	navTimeout time.Duration
}

func NewScraper(cfg *config.Config, logger *zap.SugaredLogger) *Scraper {
	return &Scraper{
		cfg:        cfg.Shopee,
		logger:     logger,
		clock:      realClock{},
		navTimeout: 30 * time.Second,
	}
}

// Fetch renders the product page in an isolated browser context, observes
// network traffic for the internal item-detail API, and recovers a product
// payload. The browser, page, and launched process are torn down on every
// exit path.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*ItemPayload, error) {
	page, cleanup, err := s.openPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", affiliate.ErrExtractionFailed, err)
	}
	defer cleanup()

	// First qualifying response wins; later matches are dropped.
	captured := make(chan *ItemPayload, 1)
	var once sync.Once
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if !IsItemDetailURL(e.Response.URL) {
			return
		}
		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(page)
		if err != nil {
			return
		}
		raw := []byte(body.Body)
		if body.Base64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(body.Body)
			if err != nil {
				return
			}
			raw = decoded
		}
		payload, ok := ParseItemDetail(raw)
		if !ok {
			return
		}
		once.Do(func() {
			s.logger.Infow("shopee_item_api_captured", "api_url", e.Response.URL)
			captured <- &payload
		})
	})()

	// Navigation failures are tolerated: a soft-block redirect aborts the
	// navigation while the item API may already have fired.
	if err := page.Timeout(s.navTimeout).Navigate(rawURL); err != nil {
		s.logger.Warnw("shopee_navigation_error", "url", rawURL, "err", err)
	}

	strategies := []Strategy{
		&CaptureStrategy{
			Captured: captured,
			Grace:    time.Duration(s.cfg.GraceMs) * time.Millisecond,
			Clock:    s.clock,
		},
		&TitleProbeStrategy{
			Title: func() (string, error) {
				info, err := page.Info()
				if err != nil {
					return "", err
				}
				return info.Title, nil
			},
		},
	}

	payload, strategy, err := RunStrategies(ctx, strategies)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("shopee_extraction_ok", "url", rawURL, "strategy", strategy)
	return payload, nil
}

func (s *Scraper) openPage() (*rod.Page, func(), error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Logger(io.Discard)
	if s.cfg.BrowserBin != "" {
		l = l.Bin(s.cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	cleanup := func() {
		_ = page.Close()
		_ = browser.Close()
		l.Cleanup()
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: mobileUserAgent}); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             375,
		Height:            812,
		DeviceScaleFactor: 3,
		Mobile:            true,
	}); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := (proto.EmulationSetTouchEmulationEnabled{Enabled: true}).Call(page); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("enable touch: %w", err)
	}

	return page, cleanup, nil
}
