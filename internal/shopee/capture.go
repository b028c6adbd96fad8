package shopee

import (
	"encoding/json"
	"strconv"
	"strings"
)

const imageCDNPrefix = "https://down-id.img.susercontent.com/file/"

// Price-encoding quirk: the item API sometimes reports price pre-multiplied.
// Values above the threshold are assumed to be stored at factor× true value.
// This is a guessed heuristic, not a confirmed upstream contract; a warning is
// logged whenever it fires. Both knobs are overridable on the Scraper.
const (
	DefaultPriceScaleThreshold = 1_000_000
	DefaultPriceScaleFactor    = 100_000
)

// ItemPayload is the working record recovered from an intercepted item-detail
// response. Price is kept raw; normalization happens in NormalizePrice.
type ItemPayload struct {
	Title       string
	Price       float64
	HasPrice    bool
	ImagePath   string
	Description string
	Currency    string
}

// IsItemDetailURL reports whether a response URL belongs to the internal
// item-detail API worth intercepting.
func IsItemDetailURL(u string) bool {
	return strings.Contains(u, "/api/v4/item/get") || strings.Contains(u, "get_item_detail")
}

type itemDetailBody struct {
	Data *itemDetailData `json:"data"`
}

type itemDetailData struct {
	Name        string          `json:"name"`
	Price       json.Number     `json:"price"`
	PriceMin    json.Number     `json:"price_min"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Item        *itemDetailData `json:"item"`
}

// ParseItemDetail attempts to recover a product payload from an intercepted
// response body. Returns false when the body is not JSON or carries no
// recognizable product shape.
func ParseItemDetail(body []byte) (ItemPayload, bool) {
	var parsed itemDetailBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Data == nil {
		return ItemPayload{}, false
	}

	d := parsed.Data
	nested := d.Item

	p := ItemPayload{
		Title:       firstNonEmpty(d.Name, nestedName(nested)),
		ImagePath:   d.Image,
		Description: firstNonEmpty(d.Description, nestedDescription(nested)),
		Currency:    d.Currency,
	}
	if p.Currency == "" {
		p.Currency = "IDR"
	}

	for _, n := range []json.Number{d.PriceMin, nestedPriceMin(nested), d.Price} {
		if v, err := strconv.ParseFloat(string(n), 64); err == nil && v > 0 {
			p.Price = v
			p.HasPrice = true
			break
		}
	}

	if p.Title == "" {
		return ItemPayload{}, false
	}
	return p, true
}

// ImageURL resolves the API's image path against the CDN convention.
func (p ItemPayload) ImageURL() string {
	if p.ImagePath == "" {
		return ""
	}
	return imageCDNPrefix + p.ImagePath
}

// NormalizePrice renders a raw intercepted price in whole currency units.
// scaled is true when the pre-multiplication heuristic fired.
func NormalizePrice(v float64, threshold, factor float64) (display string, scaled bool) {
	if threshold > 0 && factor > 0 && v > threshold {
		return strconv.FormatFloat(v/factor, 'f', 2, 64), true
	}
	return strconv.FormatFloat(v, 'f', -1, 64), false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nestedName(d *itemDetailData) string {
	if d == nil {
		return ""
	}
	return d.Name
}

func nestedDescription(d *itemDetailData) string {
	if d == nil {
		return ""
	}
	return d.Description
}

func nestedPriceMin(d *itemDetailData) json.Number {
	if d == nil {
		return ""
	}
	return d.PriceMin
}
