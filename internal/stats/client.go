package stats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/httputil"
)

// Client reads statistics from the brew log's remote API
type Client struct {
	http    *httputil.Client
	baseURL string
}

// NewClient creates a new stats API client
func NewClient(hc *httputil.Client, baseURL string) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type averagesResponse struct {
	Rows []contracts.DeviceAverage `json:"rows"`
}

type scopeBestResponse struct {
	Devices []string `json:"devices"`
}

// DeviceAverages fetches GET /stats/averages?metric=
func (c *Client) DeviceAverages(ctx context.Context, metric contracts.Metric) ([]contracts.DeviceAverage, error) {
	q := url.Values{}
	q.Set("metric", string(metric))

	var resp averagesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stats/averages?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch averages (%s): %w", metric, err)
	}
	if resp.Rows == nil {
		resp.Rows = []contracts.DeviceAverage{}
	}
	return resp.Rows, nil
}

// ScopeBest fetches GET /stats/scope-best?roast=&process=&origin=&exclude=
func (c *Client) ScopeBest(ctx context.Context, bean contracts.BeanRecord) ([]string, error) {
	q := url.Values{}
	q.Set("roast", bean.Roast)
	q.Set("process", bean.Process)
	q.Set("origin", bean.Origin)
	if bean.ID != "" {
		q.Set("exclude", bean.ID)
	}

	var resp scopeBestResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/stats/scope-best?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch scope best: %w", err)
	}
	if resp.Devices == nil {
		resp.Devices = []string{}
	}
	return resp.Devices, nil
}

// Bean fetches GET /beans/{id}
func (c *Client) Bean(ctx context.Context, id string) (*contracts.BeanRecord, error) {
	var b contracts.BeanRecord
	err := c.http.GetJSON(ctx, c.baseURL+"/beans/"+url.PathEscape(id), &b)

	var se *httputil.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("bean %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch bean %s: %w", id, err)
	}
	return &b, nil
}
