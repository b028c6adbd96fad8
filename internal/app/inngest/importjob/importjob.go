package importjob

import (
	"context"
	"fmt"
	"strings"

	"staylink-admin/config"
	"staylink-admin/internal/app/drafts"
	"staylink-admin/internal/importer"
	"staylink-admin/internal/platform"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ImportRequestedEventName is the trigger for the background import job. It is
// the same logical event the RabbitMQ worker consumes; deployments pick one
// transport (or both, since draft writes key on event id).
const ImportRequestedEventName = "affiliate/import.requested"

type ImportRequestedEventData struct {
	URL string `json:"url"`
}

type ImportFunction struct {
	cfg      *config.Config
	importer *importer.Importer
	store    *drafts.Store
	logger   *zap.SugaredLogger
}

type NewImportFunctionParams struct {
	fx.In

	Cfg      *config.Config
	Importer *importer.Importer
	Store    *drafts.Store
	Logger   *zap.SugaredLogger
}

func NewImportFunction(p NewImportFunctionParams) *ImportFunction {
	return &ImportFunction{
		cfg:      p.Cfg,
		importer: p.Importer,
		store:    p.Store,
		logger:   p.Logger,
	}
}

type runOutcome struct {
	Result *importer.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (f *ImportFunction) Handle(ctx context.Context, input inngestgo.Input[ImportRequestedEventData]) (any, error) {
	url := strings.TrimSpace(input.Event.Data.URL)
	if url == "" {
		return nil, inngestgo.NoRetryError(fmt.Errorf("missing url"))
	}

	eventID := ""
	if input.Event.ID != nil {
		eventID = *input.Event.ID
	}
	if eventID == "" {
		return nil, inngestgo.NoRetryError(fmt.Errorf("missing event id"))
	}

	_, err := step.Run(ctx, "persist-queued", func(ctx context.Context) (string, error) {
		source := ""
		if p, err := platform.Detect(url); err == nil {
			source = string(p)
		}
		return f.store.UpsertQueued(ctx, drafts.UpsertQueuedInput{
			EventID:   eventID,
			CreatedBy: "inngest",
			URL:       url,
			Source:    source,
		})
	})
	if err != nil {
		return nil, err
	}

	outcome, err := step.Run(ctx, "run-import", func(ctx context.Context) (runOutcome, error) {
		res, err := f.importer.Import(ctx, url)
		if err != nil {
			f.logger.Errorw("inngest_import_failed", "url", url, "event_id", eventID, "err", err)
			// Persist the failure on the draft instead of failing the step.
			return runOutcome{Error: err.Error()}, nil
		}
		return runOutcome{Result: res}, nil
	})
	if err != nil {
		return nil, inngestgo.NoRetryError(err)
	}

	_, err = step.Run(ctx, "persist-draft", func(ctx context.Context) (any, error) {
		if outcome.Error != "" {
			return nil, f.store.MarkFailed(ctx, eventID, outcome.Error)
		}
		return nil, f.store.MarkReady(ctx, eventID, outcome.Result)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Infow("inngest_import_finished", "url", url, "event_id", eventID, "failed", outcome.Error != "")
	return map[string]any{"event_id": eventID, "failed": outcome.Error != ""}, nil
}
