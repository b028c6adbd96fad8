package importworker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/app/drafts"
	"staylink-admin/internal/importer"
	"staylink-admin/internal/platform"
)

type urlImporter interface {
	Import(ctx context.Context, rawURL string) (*importer.Result, error)
}

// ImportHandler resolves a queued product URL and persists the outcome as an
// import draft. Resolution failures are recorded on the draft, not retried.
type ImportHandler struct {
	importer urlImporter
	store    *drafts.Store
	logger   *zap.SugaredLogger
}

type NewImportHandlerParams struct {
	fx.In

	Importer *importer.Importer
	Store    *drafts.Store
	Logger   *zap.SugaredLogger
}

func NewImportHandler(p NewImportHandlerParams) *ImportHandler {
	return &ImportHandler{
		importer: p.Importer,
		store:    p.Store,
		logger:   p.Logger,
	}
}

func (h *ImportHandler) Handle(ctx context.Context, msg ImportRequestedEnvelope) error {
	url := strings.TrimSpace(msg.Data.URL)
	if url == "" {
		return fmt.Errorf("missing url")
	}
	if strings.TrimSpace(msg.EventID) == "" {
		return fmt.Errorf("missing event_id")
	}
	if strings.TrimSpace(msg.EventName) != "" && msg.EventName != EventName {
		return fmt.Errorf("unexpected event_name: %s", msg.EventName)
	}

	source := ""
	if p, err := platform.Detect(url); err == nil {
		source = string(p)
	}

	if _, err := h.store.UpsertQueued(ctx, drafts.UpsertQueuedInput{
		EventID:   msg.EventID,
		CreatedBy: "rabbitmq",
		URL:       url,
		Source:    source,
	}); err != nil {
		h.logger.Errorw("importworker_persist_queued_failed",
			"event_id", msg.EventID,
			"url", url,
			"err", err,
		)
		return err
	}

	res, err := h.importer.Import(ctx, url)
	if err != nil {
		h.logger.Errorw("importworker_import_failed",
			"event_id", msg.EventID,
			"url", url,
			"err", err,
		)
		if markErr := h.store.MarkFailed(ctx, msg.EventID, err.Error()); markErr != nil {
			h.logger.Errorw("importworker_mark_failed_failed",
				"event_id", msg.EventID,
				"err", markErr,
			)
			return markErr
		}
		// Failure is persisted on the draft; ack the message.
		return nil
	}

	if err := h.store.MarkReady(ctx, msg.EventID, res); err != nil {
		h.logger.Errorw("importworker_persist_draft_failed",
			"event_id", msg.EventID,
			"url", url,
			"err", err,
		)
		return err
	}

	h.logger.Infow("importworker_finished",
		"event_id", msg.EventID,
		"url", url,
		"title", res.Title,
	)

	return nil
}
