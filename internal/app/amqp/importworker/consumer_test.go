package importworker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staylink-admin/config"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []ImportRequestedEnvelope
}

func (h *recordingHandler) Handle(ctx context.Context, msg ImportRequestedEnvelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, msg)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func (h *recordingHandler) first() ImportRequestedEnvelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seen[0]
}

func delivery(t *testing.T, eventID, url string) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(ImportRequestedEnvelope{
		EventName: EventName,
		EventID:   eventID,
		TS:        time.Now().UTC(),
		Data:      ImportRequestedEventData{URL: url},
	})
	require.NoError(t, err)
	return amqp.Delivery{Body: body, MessageId: eventID}
}

// The lifecycle OnStart context is deadline-bound to app startup; the delivery
// loop must keep consuming long after it has expired.
func TestDeliveryLoopOutlivesStartContext(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	c := &Consumer{
		cfg:         &config.Config{},
		handler:     h,
		logger:      zap.NewNop().Sugar(),
		consumerTag: "importworker",
	}

	startCtx, cancel := context.WithCancel(context.Background())
	cancel() // app start window already over
	<-startCtx.Done()

	deliveries := make(chan amqp.Delivery, 1)
	c.runLoop(deliveries)

	deliveries <- delivery(t, "evt-late", "https://shopee.co.id/product-i.1.2")

	require.Eventually(t, func() bool { return h.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "evt-late", h.first().EventID)

	require.NoError(t, c.Stop(context.Background()))
}

func TestStopCancelsDeliveryLoop(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	c := &Consumer{
		cfg:         &config.Config{},
		handler:     h,
		logger:      zap.NewNop().Sugar(),
		consumerTag: "importworker",
	}

	deliveries := make(chan amqp.Delivery, 2)
	c.runLoop(deliveries)

	deliveries <- delivery(t, "evt-1", "https://shopee.co.id/product-i.1.2")
	require.Eventually(t, func() bool { return h.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Stop(context.Background()))

	// After Stop the loop no longer drains the channel.
	deliveries <- delivery(t, "evt-2", "https://shopee.co.id/product-i.3.4")
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, h.count())
}
