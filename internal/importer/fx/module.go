package fx

import (
	"go.uber.org/fx"

	"staylink-admin/internal/amazon"
	"staylink-admin/internal/importer"
	"staylink-admin/internal/shopee"
)

var Module = fx.Module(
	"importer",
	fx.Provide(
		fx.Annotate(amazon.NewClient, fx.As(new(importer.AmazonLookup))),
		fx.Annotate(shopee.NewScraper, fx.As(new(importer.ShopeeFetcher))),
		importer.NewImporter,
	),
)
