package amazon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"go.uber.org/zap"

	"staylink-admin/config"
	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/platform"
)

const (
	apiHost     = "webservices.amazon.com"
	apiPath     = "/paapi5/getitems"
	apiTarget   = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.GetItems"
	serviceName = "ProductAdvertisingAPI"
	marketplace = "www.amazon.com"
)

type Client struct {
	http   *http.Client
	signer *v4.Signer
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewClient(logger *zap.SugaredLogger) *Client {
	return &Client{
		http:   &http.Client{Timeout: 15 * time.Second},
		signer: v4.NewSigner(),
		logger: logger,
		now:    time.Now,
	}
}

type getItemsRequest struct {
	ItemIds     []string `json:"ItemIds"`
	ItemIdType  string   `json:"ItemIdType"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
	Resources   []string `json:"Resources"`
}

type getItemsResponse struct {
	ItemsResult struct {
		Items []responseItem `json:"Items"`
	} `json:"ItemsResult"`
	Errors []struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Errors"`
}

type responseItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []struct {
			Price struct {
				DisplayAmount string `json:"DisplayAmount"`
				Currency      string `json:"Currency"`
			} `json:"Price"`
		} `json:"Listings"`
	} `json:"Offers"`
}

// GetItem looks up one ASIN through the PA-API item-lookup endpoint.
// Credentials are threaded explicitly and checked before any network I/O.
func (c *Client) GetItem(ctx context.Context, creds config.AmazonConfig, asin string) (affiliate.Upstream, error) {
	if !creds.Configured() {
		return affiliate.Upstream{}, affiliate.ErrMissingCredentials
	}

	body, err := json.Marshal(getItemsRequest{
		ItemIds:     []string{asin},
		ItemIdType:  "ASIN",
		PartnerTag:  creds.PartnerTag,
		PartnerType: "Associates",
		Marketplace: marketplace,
		Resources: []string{
			"ItemInfo.Title",
			"Images.Primary.Large",
			"Offers.Listings.Price",
		},
	})
	if err != nil {
		return affiliate.Upstream{}, fmt.Errorf("marshal getitems payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+apiHost+apiPath, bytes.NewReader(body))
	if err != nil {
		return affiliate.Upstream{}, fmt.Errorf("build getitems request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", apiTarget)

	// The upstream verifies the signature byte-exactly; any deviation comes
	// back as an authentication error, surfaced below as a rejection.
	payloadHash := sha256.Sum256(body)
	region := creds.Region
	if region == "" {
		region = "us-east-1"
	}
	err = c.signer.SignHTTP(ctx,
		aws.Credentials{AccessKeyID: creds.AccessKey, SecretAccessKey: creds.SecretKey},
		req, hex.EncodeToString(payloadHash[:]), serviceName, region, c.now().UTC(),
	)
	if err != nil {
		return affiliate.Upstream{}, fmt.Errorf("sign getitems request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return affiliate.Upstream{}, fmt.Errorf("%w: %v", affiliate.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return affiliate.Upstream{}, fmt.Errorf("%w: read response: %v", affiliate.ErrTransport, err)
	}

	var parsed getItemsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return affiliate.Upstream{}, fmt.Errorf("%w: status %s", affiliate.ErrTransport, resp.Status)
		}
		return affiliate.Upstream{}, fmt.Errorf("%w: malformed response: %v", affiliate.ErrUpstreamRejected, err)
	}

	switch {
	case len(parsed.ItemsResult.Items) > 0:
		return mapItem(parsed.ItemsResult.Items[0], asin, creds.PartnerTag), nil
	case len(parsed.Errors) > 0:
		c.logger.Warnw("amazon_getitems_rejected",
			"asin", asin,
			"code", parsed.Errors[0].Code,
			"message", parsed.Errors[0].Message,
		)
		return affiliate.Upstream{}, fmt.Errorf("%w: %s", affiliate.ErrUpstreamRejected, parsed.Errors[0].Message)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return affiliate.Upstream{}, fmt.Errorf("%w: status %s", affiliate.ErrTransport, resp.Status)
	default:
		return affiliate.Upstream{}, fmt.Errorf("%w: asin %s", affiliate.ErrProductNotFound, asin)
	}
}

func mapItem(item responseItem, asin, partnerTag string) affiliate.Upstream {
	u := affiliate.Upstream{
		Platform:   platform.Amazon,
		Title:      item.ItemInfo.Title.DisplayValue,
		Image:      item.Images.Primary.Large.URL,
		URL:        item.DetailPageURL,
		ASIN:       asin,
		PartnerTag: partnerTag,
	}
	if len(item.Offers.Listings) > 0 {
		u.Price = item.Offers.Listings[0].Price.DisplayAmount
		u.Currency = item.Offers.Listings[0].Price.Currency
	}
	return u
}

// SetTransport swaps the underlying RoundTripper. Tests use it to stub the
// upstream and count network calls.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http = &http.Client{Transport: rt, Timeout: 15 * time.Second}
}
