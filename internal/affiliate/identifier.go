package affiliate

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	asinRE      = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?#]|$)`)
	shopeeIDsRE = regexp.MustCompile(`i\.([0-9]+)\.([0-9]+)`)
)

// ExtractASIN returns the first ASIN found in a /dp/ or /gp/product/ path
// segment. The first left-to-right occurrence is authoritative.
func ExtractASIN(rawURL string) (string, error) {
	m := asinRE.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("%w: no ASIN in %q", ErrIdentifierNotFound, rawURL)
	}
	return m[1], nil
}

// ExtractShopeeIDs returns the shop-id and item-id from the first
// i.<digits>.<digits> fragment anywhere in the URL.
func ExtractShopeeIDs(rawURL string) (shopID, itemID int64, err error) {
	m := shopeeIDsRE.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: no shop/item ids in %q", ErrIdentifierNotFound, rawURL)
	}
	shopID, err = strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: shop id %q: %v", ErrIdentifierNotFound, m[1], err)
	}
	itemID, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: item id %q: %v", ErrIdentifierNotFound, m[2], err)
	}
	return shopID, itemID, nil
}
