package fx

import (
	"context"

	"staylink-admin/internal/app/amqp/importworker"
	"staylink-admin/internal/pkg/amqpclient"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module(
	"amqp-importworker",
	fx.Provide(
		amqpclient.NewAMQP,
		fx.Annotate(
			importworker.NewImportHandler,
			fx.As(new(importworker.Handler)),
		),
		importworker.NewConsumer,
	),
	fx.Invoke(registerLifecycleHooks),
)

type hooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *importworker.Consumer
	Logger    *zap.SugaredLogger
}

func registerLifecycleHooks(p hooksParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Infow("importworker_starting")
			return p.Consumer.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Infow("importworker_stopping")
			return p.Consumer.Stop(ctx)
		},
	})
}
