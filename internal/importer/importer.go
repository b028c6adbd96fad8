package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"staylink-admin/config"
	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/platform"
	"staylink-admin/internal/shopee"
)

// AmazonLookup is the signed item-lookup client.
type AmazonLookup interface {
	GetItem(ctx context.Context, creds config.AmazonConfig, asin string) (affiliate.Upstream, error)
}

// ShopeeFetcher is the browser-automation fallback.
type ShopeeFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*shopee.ItemPayload, error)
}

// Result is what one import hands back: the canonical record plus the
// assembled outbound link (empty when no tag is configured for the platform).
type Result struct {
	affiliate.Record
	Link string `json:"link,omitempty"`
}

type Importer struct {
	cfg    *config.Config
	amazon AmazonLookup
	shopee ShopeeFetcher
	cache  *redis.Client
	logger *zap.SugaredLogger

	group   singleflight.Group
	limiter *rate.Limiter

	// Shopee price-encoding heuristic knobs; see shopee.NormalizePrice.
	priceScaleThreshold float64
	priceScaleFactor    float64
}

type NewImporterParams struct {
	fx.In

	Cfg    *config.Config
	Amazon AmazonLookup
	Shopee ShopeeFetcher
	Cache  *redis.Client `optional:"true"`
	Logger *zap.SugaredLogger
}

func NewImporter(p NewImporterParams) *Importer {
	return &Importer{
		cfg:    p.Cfg,
		amazon: p.Amazon,
		shopee: p.Shopee,
		cache:  p.Cache,
		logger: p.Logger,
		// One browser launch at a time with short bursts; scraping is the
		// expensive path and the storefront rate-limits aggressively.
		limiter:             rate.NewLimiter(rate.Every(2*time.Second), 2),
		priceScaleThreshold: shopee.DefaultPriceScaleThreshold,
		priceScaleFactor:    shopee.DefaultPriceScaleFactor,
	}
}

// Import resolves a raw product URL into a canonical record and an assembled
// affiliate link. Concurrent imports of the same URL are collapsed into one
// in-flight call; fresh results are cached in Redis for the configured TTL.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Result, error) {
	p, err := platform.Detect(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", affiliate.ErrIdentifierNotFound, err)
	}

	if cached := i.fromCache(ctx, rawURL); cached != nil {
		return cached, nil
	}

	v, err, _ := i.group.Do(rawURL, func() (any, error) {
		switch p {
		case platform.Amazon:
			return i.importAmazon(ctx, rawURL)
		case platform.Shopee:
			return i.importShopee(ctx, rawURL)
		default:
			return nil, fmt.Errorf("%w: platform %q", affiliate.ErrIdentifierNotFound, p)
		}
	})
	if err != nil {
		return nil, err
	}

	res := v.(*Result)
	i.toCache(ctx, rawURL, res)
	return res, nil
}

func (i *Importer) importAmazon(ctx context.Context, rawURL string) (*Result, error) {
	asin, err := affiliate.ExtractASIN(rawURL)
	if err != nil {
		return nil, err
	}

	up, err := i.amazon.GetItem(ctx, i.cfg.Amazon, asin)
	if err != nil {
		return nil, err
	}

	rec, err := affiliate.Normalize(up)
	if err != nil {
		return nil, err
	}

	res := &Result{Record: rec}
	if tag := i.cfg.Amazon.PartnerTag; tag != "" {
		link, err := affiliate.AssembleLink(platform.Amazon, rec.URL, tag, "")
		if err != nil {
			return nil, err
		}
		res.Link = link
	}

	i.logger.Infow("import_ok", "platform", platform.Amazon, "asin", asin, "title", rec.Title)
	return res, nil
}

func (i *Importer) importShopee(ctx context.Context, rawURL string) (*Result, error) {
	shopID, itemID, err := affiliate.ExtractShopeeIDs(rawURL)
	if err != nil {
		return nil, err
	}

	if err := i.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", affiliate.ErrExtractionFailed, err)
	}

	payload, err := i.shopee.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	up := affiliate.Upstream{
		Platform:    platform.Shopee,
		Title:       payload.Title,
		Image:       payload.ImageURL(),
		Description: payload.Description,
		Currency:    payload.Currency,
		URL:         affiliate.ShopeeDetailURL(i.cfg.Shopee.Region, shopID, itemID),
	}
	if payload.HasPrice {
		display, scaled := shopee.NormalizePrice(payload.Price, i.priceScaleThreshold, i.priceScaleFactor)
		if scaled {
			i.logger.Warnw("shopee_price_rescaled",
				"raw", payload.Price,
				"display", display,
				"threshold", i.priceScaleThreshold,
				"factor", i.priceScaleFactor,
			)
		}
		up.Price = display
	}

	rec, err := affiliate.Normalize(up)
	if err != nil {
		return nil, err
	}

	res := &Result{Record: rec}
	if id := i.cfg.Shopee.AffiliateID; id != "" {
		link, err := affiliate.AssembleLink(platform.Shopee, rec.URL, id, i.cfg.Shopee.Region)
		if err != nil {
			return nil, err
		}
		res.Link = link
	}

	i.logger.Infow("import_ok", "platform", platform.Shopee, "shop_id", shopID, "item_id", itemID, "title", rec.Title)
	return res, nil
}

func cacheKey(rawURL string) string { return "import:url:" + rawURL }

func (i *Importer) fromCache(ctx context.Context, rawURL string) *Result {
	if i.cache == nil || i.cfg.ImportCacheTTLSec <= 0 {
		return nil
	}
	raw, err := i.cache.Get(ctx, cacheKey(rawURL)).Bytes()
	if err != nil {
		return nil
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	i.logger.Infow("import_cache_hit", "url", rawURL)
	return &res
}

func (i *Importer) toCache(ctx context.Context, rawURL string, res *Result) {
	if i.cache == nil || i.cfg.ImportCacheTTLSec <= 0 {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := time.Duration(i.cfg.ImportCacheTTLSec) * time.Second
	if err := i.cache.Set(ctx, cacheKey(rawURL), raw, ttl).Err(); err != nil {
		i.logger.Warnw("import_cache_set_failed", "url", rawURL, "err", err)
	}
}
