package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	cachefx "staylink-admin/cache/fx"
	dbfx "staylink-admin/db/fx"
	importworkerfx "staylink-admin/internal/app/amqp/importworker/fx"
	"staylink-admin/internal/app/drafts"
	appfx "staylink-admin/internal/app/fx"
	importerfx "staylink-admin/internal/importer/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.CoreAppOptions,
		dbfx.SQLiteModule,
		cachefx.Module,
		importerfx.Module,
		fx.Provide(
			fx.Annotate(
				drafts.NewStore,
				fx.ParamTags(`name:"sqlite"`),
			),
		),
		importworkerfx.Module,
	)

	app.Run()
}
