package fx

import (
	"staylink-admin/internal/app/amqp/enqueue"
	"staylink-admin/internal/pkg/amqpclient"
	"staylink-admin/internal/router"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		amqpclient.NewAMQP,
		router.AsRoute(enqueue.NewHandler),
	),
)
