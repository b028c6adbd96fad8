package fx

import (
	"go.uber.org/fx"

	"staylink-admin/cache"
	"staylink-admin/config"
	"staylink-admin/db"
	"staylink-admin/internal/logs"
)

var Module = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		db.NewSQLXPostgresDB,
		cache.NewRedis,
	),
	fx.Invoke(logs.RegisterLifecycle),
)
