package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	dbfx "staylink-admin/db/fx"
	enqueuefx "staylink-admin/internal/app/amqp/enqueue/fx"
	analyticsfx "staylink-admin/internal/app/analytics/fx"
	clientsfx "staylink-admin/internal/app/clients/fx"
	draftsfx "staylink-admin/internal/app/drafts/fx"
	appfx "staylink-admin/internal/app/fx"
	healthfx "staylink-admin/internal/app/health/fx"
	importapifx "staylink-admin/internal/app/importapi/fx"
	inngestfx "staylink-admin/internal/app/inngest/fx"
	linksfx "staylink-admin/internal/app/links/fx"
	parsetextfx "staylink-admin/internal/app/parsetextapi/fx"
	productsfx "staylink-admin/internal/app/products/fx"
	statsfx "staylink-admin/internal/app/stats/fx"
	translationsfx "staylink-admin/internal/app/translations/fx"
	importerfx "staylink-admin/internal/importer/fx"
	routerfx "staylink-admin/internal/router/fx"
	serverfx "staylink-admin/internal/server/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.Module,
		dbfx.SQLiteModule,
		routerfx.CoreRouterOptions,
		serverfx.Module,
		healthfx.Module,
		importerfx.Module,
		importapifx.Module,
		linksfx.Module,
		parsetextfx.Module,
		productsfx.Module,
		translationsfx.Module,
		statsfx.Module,
		clientsfx.Module,
		analyticsfx.Module,
		draftsfx.Module,
		inngestfx.Module,
		enqueuefx.Module,
	)

	app.Run()
}
