package affiliate

import (
	"fmt"
	"net/url"
	"strings"

	"staylink-admin/internal/platform"
)

// AssembleLink appends the platform's tracking query parameter to a canonical
// detail-page URL. Pure and deterministic: identical inputs always produce an
// identical string, and re-assembling an already-tagged URL is a fixed point.
func AssembleLink(p platform.Platform, detailURL, tag, region string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(detailURL))
	if err != nil {
		return "", fmt.Errorf("parse detail URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("detail URL missing scheme/host: %q", detailURL)
	}
	if strings.TrimSpace(tag) == "" {
		return "", fmt.Errorf("missing affiliate tag")
	}

	q := u.Query()
	switch p {
	case platform.Amazon:
		q.Set("tag", tag)
	case platform.Shopee:
		q.Set("af_id", tag)
		if strings.TrimSpace(region) != "" {
			q.Set("region", region)
		}
	default:
		return "", fmt.Errorf("unsupported platform %q", p)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
