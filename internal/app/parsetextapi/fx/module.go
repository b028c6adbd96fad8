package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/app/parsetextapi"
	"staylink-admin/internal/parsetext"
	"staylink-admin/internal/router"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(parsetext.NewHTTPCompleter, fx.As(new(parsetext.Completer))),
		parsetext.NewService,
		router.AsRoute(parsetextapi.NewHandler),
	),
)
