package fx

import (
	"staylink-admin/config"
	"staylink-admin/internal/app/inngest"
	"staylink-admin/internal/app/inngest/importjob"
	pkginngest "staylink-admin/internal/pkg/inngest"
	"staylink-admin/internal/router"

	"github.com/inngest/inngestgo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(
		pkginngest.NewInngestClient,
		importjob.NewImportFunction,
		router.AsRoute(inngest.NewInngestHandler),
	),
	fx.Invoke(registerFunctions),
)

func registerFunctions(
	cfg *config.Config,
	client inngestgo.Client,
	importFunc *importjob.ImportFunction,
	logger *zap.SugaredLogger,
) error {
	if cfg != nil && cfg.Inngest.AppID == "" {
		logger.Infow("inngest_disabled", "reason", "missing INNGEST_APP_ID")
		return nil
	}

	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{
			ID:      "import-url",
			Retries: inngestgo.IntPtr(0),
		},
		inngestgo.EventTrigger(importjob.ImportRequestedEventName, nil),
		importFunc.Handle,
	)
	if err != nil {
		logger.Errorw("inngest_create_function_failed", "err", err)
		return err
	}

	logger.Infow("inngest_enabled",
		"path", cfg.Inngest.ServePath,
		"event", importjob.ImportRequestedEventName,
	)
	return nil
}
