package drom

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNotFound marks a terminal fetch failure: the page does not exist and
// retrying will not help. Walkers treat it on listing pages as "no more
// pages".
var ErrNotFound = errors.New("page not found")

// Fetcher returns raw markup for a path relative to the catalog base URL.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

type retryPolicy struct {
	maxRetries uint64
}

// Fetch retrieves a page, retrying transient failures (network errors,
// 5xx, 429) with exponential backoff. 404-equivalents come back as
// ErrNotFound without retrying.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	var body []byte
	operation := func() error {
		res, err := c.Http.R().
			SetContext(ctx).
			Get(path)
		if err != nil {
			return err
		}

		status := res.StatusCode()
		switch {
		case status == http.StatusNotFound || status == http.StatusGone:
			return backoff.Permanent(fmt.Errorf("%s: %w", path, ErrNotFound))
		case status >= 500 || status == http.StatusTooManyRequests:
			return fmt.Errorf("fetch %s: status %d", path, status)
		case status >= 400:
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d", path, status))
		}

		body = res.Body()
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retry.maxRetries),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	return body, nil
}

// FetchCached consults the listing-page cache before going to the remote
// site. Fetched pages are stored with the client's TTL. Without a cache it
// is a plain Fetch.
func (c *Client) FetchCached(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCached")
	defer span.End()

	if c.cache == nil {
		return c.Fetch(ctx, path)
	}

	cached, err := c.cache.get(ctx, path)
	if err == nil {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return cached, nil
	}
	if err != errPageNotCached {
		span.RecordError(err)
	}

	body, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	err = c.cache.set(ctx, path, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to cache page")
	}
	return body, nil
}
