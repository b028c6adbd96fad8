package shopee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staylink-admin/internal/affiliate"
)

// blockedTitleMarker is the storefront's generic landing-page title, the known
// soft-block signature: a blocked request gets redirected to the homepage.
const blockedTitleMarker = "Shopee"

// Clock abstracts time for the capture grace period so the race between
// navigation and interception is testable.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Strategy is one ordered extraction attempt. A nil payload with a nil error
// means "nothing here, try the next one"; an error is terminal.
type Strategy interface {
	Name() string
	Extract(ctx context.Context) (*ItemPayload, error)
}

// RunStrategies evaluates strategies in order and returns the first payload.
// When every strategy passes without producing one, extraction has failed.
func RunStrategies(ctx context.Context, strategies []Strategy) (*ItemPayload, string, error) {
	for _, s := range strategies {
		p, err := s.Extract(ctx)
		if err != nil {
			return nil, s.Name(), err
		}
		if p != nil {
			return p, s.Name(), nil
		}
	}
	return nil, "", affiliate.ErrExtractionFailed
}

// CaptureStrategy waits up to the grace period for the first qualifying
// intercepted item-detail response. The channel is resolved by the network
// event handler; the timeout leg makes the race explicit.
type CaptureStrategy struct {
	Captured <-chan *ItemPayload
	Grace    time.Duration
	Clock    Clock
}

func (s *CaptureStrategy) Name() string { return "network-capture" }

func (s *CaptureStrategy) Extract(ctx context.Context) (*ItemPayload, error) {
	clock := s.Clock
	if clock == nil {
		clock = realClock{}
	}
	select {
	case p := <-s.Captured:
		return p, nil
	case <-clock.After(s.Grace):
		return nil, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", affiliate.ErrExtractionFailed, ctx.Err())
	}
}

// TitleProbeStrategy inspects the rendered page title after the capture window
// closed. The generic landing title means the request was soft-blocked.
type TitleProbeStrategy struct {
	Title func() (string, error)
}

func (s *TitleProbeStrategy) Name() string { return "title-probe" }

func (s *TitleProbeStrategy) Extract(ctx context.Context) (*ItemPayload, error) {
	title, err := s.Title()
	if err != nil {
		return nil, fmt.Errorf("%w: read page title: %v", affiliate.ErrExtractionFailed, err)
	}
	if strings.Contains(title, blockedTitleMarker) {
		return nil, fmt.Errorf("%w: redirected to landing page (title %q)", affiliate.ErrUpstreamBlocked, title)
	}
	return nil, fmt.Errorf("%w: no item-detail response captured and no DOM signal", affiliate.ErrExtractionFailed)
}
