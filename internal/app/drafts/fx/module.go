package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/app/drafts"
	"staylink-admin/internal/router"
)

var Module = fx.Options(
	fx.Provide(
		// Standalone store for the queue worker and background jobs.
		fx.Annotate(
			drafts.NewStore,
			fx.ParamTags(`name:"sqlite"`),
		),
		router.AsRoute(drafts.NewHandler),
	),
)
