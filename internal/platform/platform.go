package platform

import (
	"fmt"
	"net/url"
	"strings"
)

type Platform string

const (
	Amazon Platform = "amazon"
	Shopee Platform = "shopee"
)

func Detect(rawURL string) (Platform, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL (missing scheme/host): %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "amazon.com" || strings.HasSuffix(host, ".amazon.com"):
		return Amazon, nil
	case host == "amzn.to" || strings.HasSuffix(host, ".amzn.to"):
		return Amazon, nil
	case isShopeeHost(host):
		return Shopee, nil
	default:
		return "", fmt.Errorf("unsupported URL host %q (only Amazon/Shopee are supported)", host)
	}
}

func isShopeeHost(host string) bool {
	if host == "shopee.com" || strings.HasSuffix(host, ".shopee.com") {
		return true
	}
	// Regional storefronts: shopee.co.id, shopee.tw, shopee.sg, s.shopee.co.id, ...
	if strings.HasPrefix(host, "shopee.") {
		return true
	}
	return strings.Contains(host, ".shopee.")
}
