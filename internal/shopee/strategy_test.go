package shopee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staylink-admin/internal/affiliate"
)

// stubClock fires the grace-period timer immediately.
type stubClock struct{}

func (stubClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// idleClock never fires, so a ready capture always wins the select.
type idleClock struct{}

func (idleClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func TestRunStrategies_CaptureWins(t *testing.T) {
	t.Parallel()

	captured := make(chan *ItemPayload, 1)
	captured <- &ItemPayload{Title: "Kaos Polos"}

	payload, strategy, err := RunStrategies(context.Background(), []Strategy{
		&CaptureStrategy{Captured: captured, Grace: 5 * time.Second, Clock: idleClock{}},
		&TitleProbeStrategy{Title: func() (string, error) {
			t.Fatal("title probe must not run when capture succeeded")
			return "", nil
		}},
	})
	require.NoError(t, err)
	require.Equal(t, "network-capture", strategy)
	require.Equal(t, "Kaos Polos", payload.Title)
}

func TestRunStrategies_TimeoutThenBlockedTitle(t *testing.T) {
	t.Parallel()

	_, _, err := RunStrategies(context.Background(), []Strategy{
		&CaptureStrategy{Captured: make(chan *ItemPayload), Grace: 5 * time.Second, Clock: stubClock{}},
		&TitleProbeStrategy{Title: func() (string, error) {
			return "Shopee Indonesia | Gratis Ongkir", nil
		}},
	})
	require.ErrorIs(t, err, affiliate.ErrUpstreamBlocked)
}

func TestRunStrategies_TimeoutThenUnknownTitle(t *testing.T) {
	t.Parallel()

	_, _, err := RunStrategies(context.Background(), []Strategy{
		&CaptureStrategy{Captured: make(chan *ItemPayload), Grace: 5 * time.Second, Clock: stubClock{}},
		&TitleProbeStrategy{Title: func() (string, error) {
			return "Some unrelated page", nil
		}},
	})
	require.ErrorIs(t, err, affiliate.ErrExtractionFailed)
	require.NotErrorIs(t, err, affiliate.ErrUpstreamBlocked)
}

func TestRunStrategies_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := RunStrategies(ctx, []Strategy{
		&CaptureStrategy{Captured: make(chan *ItemPayload), Grace: time.Hour},
	})
	require.ErrorIs(t, err, affiliate.ErrExtractionFailed)
}

func TestRunStrategies_EmptyList(t *testing.T) {
	t.Parallel()

	_, _, err := RunStrategies(context.Background(), nil)
	require.ErrorIs(t, err, affiliate.ErrExtractionFailed)
}
