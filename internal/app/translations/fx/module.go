package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/app/translations"
	"staylink-admin/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(translations.NewHandler)),
)
