package affiliate

import (
	"fmt"
	"strings"

	"staylink-admin/internal/platform"
)

// Upstream is the raw, platform-specific product payload after field mapping
// but before normalization. It lives only for the duration of one import.
type Upstream struct {
	Platform    platform.Platform
	Title       string
	Image       string
	Price       string
	URL         string
	Description string
	Currency    string

	// Amazon only; used to synthesize a detail-page URL when the upstream
	// response carries none.
	ASIN       string
	PartnerTag string
}

// Record is the canonical product shape handed to the catalog. Price, when
// present, is in whole currency units.
type Record struct {
	Title       string            `json:"title"`
	Image       string            `json:"image"`
	Price       string            `json:"price"`
	URL         string            `json:"url"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Platform    platform.Platform `json:"platform"`
}

// Normalize maps an upstream payload into a canonical record. Optional fields
// (image, description, price, currency) map to empty strings when absent.
// Title and a resolvable detail-page URL are mandatory.
func Normalize(u Upstream) (Record, error) {
	title := strings.TrimSpace(u.Title)
	if title == "" {
		return Record{}, fmt.Errorf("%w: missing title", ErrIncompleteUpstreamData)
	}

	detailURL := strings.TrimSpace(u.URL)
	if detailURL == "" {
		if u.Platform == platform.Amazon && u.ASIN != "" {
			detailURL = AmazonDetailURL(u.ASIN, u.PartnerTag)
		} else {
			return Record{}, fmt.Errorf("%w: missing detail-page URL", ErrIncompleteUpstreamData)
		}
	}

	return Record{
		Title:       title,
		Image:       strings.TrimSpace(u.Image),
		Price:       strings.TrimSpace(u.Price),
		URL:         detailURL,
		Description: strings.TrimSpace(u.Description),
		Currency:    strings.TrimSpace(u.Currency),
		Platform:    u.Platform,
	}, nil
}

// AmazonDetailURL synthesizes the canonical detail-page URL for an ASIN.
func AmazonDetailURL(asin, partnerTag string) string {
	if strings.TrimSpace(partnerTag) == "" {
		return fmt.Sprintf("https://www.amazon.com/dp/%s", asin)
	}
	return fmt.Sprintf("https://www.amazon.com/dp/%s?tag=%s", asin, partnerTag)
}

// ShopeeDetailURL synthesizes the canonical detail-page URL for a shop/item
// pair on a regional storefront (region like "co.id" or "tw").
func ShopeeDetailURL(region string, shopID, itemID int64) string {
	region = strings.TrimSpace(region)
	if region == "" {
		region = "co.id"
	}
	return fmt.Sprintf("https://shopee.%s/product/%d/%d", region, shopID, itemID)
}
