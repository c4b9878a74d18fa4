// Package rest reads a property server over HTTP and serves any property server
// over HTTP.
//
// Routes, relative to the base URL:
//
//	GET /health
//	GET /assets/{guid}
//	GET /owners/{guid}/{kind}/count
//	GET /owners/{guid}/{kind}?startFrom=0&pageSize=100
//
// Errors are returned as plain text with a status that preserves the error type:
// 400 validation, 404 not found, 429 rate limit, 503 connection, 504 timeout.
package rest

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/clients"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Name is the registered backend name.
const Name = "rest"

func init() {
	propertyserver.Register(propertyserver.Info{
		Name:         Name,
		Description:  "Remote property server reached over HTTP, with retries, circuit breaking and OAuth2",
		Capabilities: []string{"read", "oauth2", "rate_limit"},
	}, func(_ context.Context, cfg *config.Config, log *zap.Logger) (propertyserver.PropertyServer, error) {
		return New(cfg.PropertyServer.URL, clients.HTTPConfigFrom(cfg), log)
	})
}

type countResponse struct {
	Count int `json:"count"`
}

type pageResponse struct {
	Elements []propertyserver.RawElement `json:"elements"`
}

// Client is a read-only property server backed by a remote HTTP endpoint.
type Client struct {
	baseURL string
	http    *clients.HTTPClient
	logger  *zap.Logger
}

var _ propertyserver.PropertyServer = (*Client)(nil)

// New creates a client for the server at baseURL.
func New(baseURL string, httpCfg *clients.HTTPConfig, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "property server url must be an absolute http(s) url").
			WithDetail("url", baseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "rest_property_server"))

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    clients.NewHTTPClient(httpCfg, log),
		logger:  log,
	}, nil
}

func (c *Client) collectionURL(ownerGUID string, kind beans.Kind) string {
	return c.baseURL + "/owners/" + url.PathEscape(ownerGUID) + "/" + url.PathEscape(string(kind))
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	body, err := c.http.Get(ctx, u, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, "invalid response body").WithDetail("url", u)
	}
	return nil
}

// GetAsset implements propertyserver.PropertyServer.
func (c *Client) GetAsset(ctx context.Context, assetGUID string) (*beans.Asset, error) {
	if err := propertyserver.ValidateGUID("asset_guid", assetGUID); err != nil {
		return nil, err
	}
	var asset beans.Asset
	if err := c.getJSON(ctx, c.baseURL+"/assets/"+url.PathEscape(assetGUID), &asset); err != nil {
		if ocferrors.IsType(err, ocferrors.ErrorTypeNotFound) {
			return nil, propertyserver.AssetNotFound(assetGUID)
		}
		return nil, err
	}
	return &asset, nil
}

// CountElements implements propertyserver.PropertyServer.
func (c *Client) CountElements(ctx context.Context, ownerGUID string, kind beans.Kind) (int, error) {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return 0, err
	}
	var resp countResponse
	if err := c.getJSON(ctx, c.collectionURL(ownerGUID, kind)+"/count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// FetchElements implements propertyserver.PropertyServer.
func (c *Client) FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]propertyserver.RawElement, error) {
	if err := propertyserver.ValidatePage(ownerGUID, kind, startFrom, pageSize); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("startFrom", strconv.Itoa(startFrom))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var resp pageResponse
	if err := c.getJSON(ctx, c.collectionURL(ownerGUID, kind)+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Elements) > pageSize {
		resp.Elements = resp.Elements[:pageSize]
	}
	return resp.Elements, nil
}

// Health implements propertyserver.PropertyServer.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.http.Get(ctx, c.baseURL+"/health", nil)
	return err
}

// Close implements propertyserver.PropertyServer.
func (c *Client) Close(context.Context) error {
	return c.http.Close()
}

// Stats returns the request counters of the underlying HTTP client.
func (c *Client) Stats() clients.HTTPStats {
	return c.http.GetStats()
}
