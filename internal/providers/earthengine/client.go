package earthengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/ratelimit"
)

const (
	DEFAULT_BASE_URL  = "https://earthengine.googleapis.com"
	DEFAULT_PAGE_SIZE = 1000
	// PUBLIC_CATALOG_PREFIX is the resource prefix of the public data catalog
	PUBLIC_CATALOG_PREFIX = "projects/earthengine-public/assets/"
	// maxPages bounds pagination in case the server keeps returning the same token
	maxPages = 10000
)

// Image is an entry of an image collection listing
type Image struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Feature is a GeoJSON feature returned by table computations
type Feature struct {
	Type       string                     `json:"type"`
	ID         string                     `json:"id,omitempty"`
	Geometry   json.RawMessage            `json:"geometry"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// ListImagesRequest filters an image collection listing.
// Start is inclusive and End exclusive.
type ListImagesRequest struct {
	Collection string
	Start      time.Time
	End        time.Time
	// Region is a GeoJSON geometry; images must intersect it
	Region json.RawMessage
}

// Client defines the Earth Engine REST operations used by the indexer
//
//go:generate mockgen -source=client.go -destination=../../mocks/earthengine_client.go -package=mocks -mock_names=Client=MockEarthEngineClient
type Client interface {
	// ListImages returns all images of a collection matching the request, following pagination
	ListImages(ctx context.Context, req ListImagesRequest) ([]Image, error)

	// ComputeFeatures evaluates a FeatureCollection expression and returns all features
	ComputeFeatures(ctx context.Context, expr Expression) ([]Feature, error)
}

// TokenSource supplies the OAuth2 bearer token for each request
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

// Token returns the fixed token
func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("earth engine access token is not configured")
	}
	return string(t), nil
}

// Config holds the Earth Engine client configuration
type Config struct {
	BaseURL  string
	Project  string
	PageSize int
}

type client struct {
	cfg     Config
	http    adapter.HTTPClient
	tokens  TokenSource
	limiter ratelimit.Limiter
}

// NewClient creates an Earth Engine REST client. The limiter is shared by every request.
func NewClient(cfg Config, httpClient adapter.HTTPClient, tokens TokenSource, limiter ratelimit.Limiter) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DEFAULT_BASE_URL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DEFAULT_PAGE_SIZE
	}
	if limiter == nil {
		limiter = ratelimit.NewLimiter(0, 0)
	}

	return &client{
		cfg:     cfg,
		http:    httpClient,
		tokens:  tokens,
		limiter: limiter,
	}
}

type listImagesResponse struct {
	Images        []Image `json:"images"`
	NextPageToken string  `json:"nextPageToken"`
}

// ListImages returns all images of a collection matching the request
func (c *client) ListImages(ctx context.Context, req ListImagesRequest) ([]Image, error) {
	endpoint := fmt.Sprintf("%s/v1/%s:listImages", c.cfg.BaseURL, escapeAssetPath(assetName(req.Collection)))

	var images []Image
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("startTime", req.Start.UTC().Format(time.RFC3339))
		query.Set("endTime", req.End.UTC().Format(time.RFC3339))
		query.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
		if len(req.Region) > 0 {
			query.Set("region", string(req.Region))
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		headers, err := c.headers(ctx)
		if err != nil {
			return nil, err
		}

		var resp listImagesResponse
		if err := c.http.GetJSON(ctx, endpoint+"?"+query.Encode(), headers, &resp); err != nil {
			return nil, c.wrap("list images", err)
		}

		images = append(images, resp.Images...)
		logger.DebugCtx(ctx, "Listed image page",
			zap.String("collection", req.Collection),
			zap.Int("page", page),
			zap.Int("images", len(resp.Images)),
		)

		if resp.NextPageToken == "" || resp.NextPageToken == pageToken {
			return images, nil
		}
		pageToken = resp.NextPageToken
	}

	return nil, fmt.Errorf("%w: list images exceeded %d pages", domain.ErrRemoteSource, maxPages)
}

type computeFeaturesRequest struct {
	Expression Expression `json:"expression"`
	PageSize   int        `json:"pageSize,omitempty"`
	PageToken  string     `json:"pageToken,omitempty"`
}

type computeFeaturesResponse struct {
	Type          string    `json:"type"`
	Features      []Feature `json:"features"`
	NextPageToken string    `json:"nextPageToken"`
}

// ComputeFeatures evaluates a FeatureCollection expression and returns all features
func (c *client) ComputeFeatures(ctx context.Context, expr Expression) ([]Feature, error) {
	endpoint := fmt.Sprintf("%s/v1/projects/%s/table:computeFeatures",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Project))

	var features []Feature
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		headers, err := c.headers(ctx)
		if err != nil {
			return nil, err
		}

		var resp computeFeaturesResponse
		payload := computeFeaturesRequest{Expression: expr, PageSize: c.cfg.PageSize, PageToken: pageToken}
		if err := c.http.PostJSON(ctx, endpoint, headers, payload, &resp); err != nil {
			return nil, c.wrap("compute features", err)
		}

		features = append(features, resp.Features...)

		if resp.NextPageToken == "" || resp.NextPageToken == pageToken {
			return features, nil
		}
		pageToken = resp.NextPageToken
	}

	return nil, fmt.Errorf("%w: compute features exceeded %d pages", domain.ErrRemoteSource, maxPages)
}

// headers waits for a rate limit token and returns the request headers
func (c *client) headers(ctx context.Context) (map[string]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	if c.cfg.Project != "" {
		headers["X-Goog-User-Project"] = c.cfg.Project
	}
	return headers, nil
}

func (c *client) wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRemoteSource, op, err)
}

// assetName expands a legacy asset id such as "MODIS/061/MOD17A2H" into its public catalog resource name
func assetName(asset string) string {
	if strings.HasPrefix(asset, "projects/") {
		return asset
	}
	return PUBLIC_CATALOG_PREFIX + asset
}

// escapeAssetPath escapes each segment of an asset id while keeping the separators
func escapeAssetPath(asset string) string {
	segments := strings.Split(asset, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
