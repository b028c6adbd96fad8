package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/app/clients"
	"staylink-admin/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(clients.NewHandler)),
)
