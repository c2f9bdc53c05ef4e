package drom

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"autoreviews-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/drom")

const DefaultBaseURL = "https://www.drom.ru"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	retry retryPolicy
	cache *pageCache
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	// how many times a retryable fetch failure is retried before the
	// unit of work is given up on
	MaxRetries uint64
	// optional badger handle for the listing-page cache; nil disables it
	Cache *badger.DB
	// lifetime of cached listing pages
	CacheTTL time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Hour * 24
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/drom/http")

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		retry:   retryPolicy{maxRetries: opts.MaxRetries},
	}
	if opts.Cache != nil {
		c.cache = &pageCache{
			db:      opts.Cache,
			baseUrl: baseUrl,
			ttl:     opts.CacheTTL,
		}
	}
	return c, nil
}

// BrandListPath is the catalog root.
const BrandListPath = "/reviews/"

func BrandPath(brandSlug string) string {
	return "/reviews/" + brandSlug + "/"
}

func ModelPath(brandSlug, modelSlug string) string {
	return "/reviews/" + brandSlug + "/" + modelSlug + "/"
}

// ModelPagePath returns the listing path for the given 1-based page.
func ModelPagePath(brandSlug, modelSlug string, page int) string {
	base := ModelPath(brandSlug, modelSlug)
	if page <= 1 {
		return base
	}
	return base + "page" + strconv.Itoa(page) + "/"
}
