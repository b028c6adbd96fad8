package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/app/links"
	"staylink-admin/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(links.NewHandler)),
)
