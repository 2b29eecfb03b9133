package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// DefaultAPIURL is the Landsat collection-2 STAC endpoint searched when no
// other URL is configured.
const DefaultAPIURL = "https://landsatlook.usgs.gov/stac-server"

// Client queries a STAC search endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the given STAC API root. An empty baseURL
// selects DefaultAPIURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SearchParams narrows a scene search. Zero values are omitted from the
// request: an empty Platform matches any platform and MaxCloudCover <= 0
// places no ceiling on cloudiness.
type SearchParams struct {
	BBox          orb.Bound
	Datetime      string // ISO range, "start/end"
	Collections   []string
	Platform      string
	MaxCloudCover float64
	Limit         int
}

type searchResponse struct {
	Features []Item `json:"features"`
}

// Search returns the matching scenes in server order. Zero matches is not an
// error: the returned slice is empty and indexing it without a length check
// panics in the caller.
func (c *Client) Search(p SearchParams) ([]Item, error) {
	params := url.Values{}
	params.Set("bbox", FormatBBox(p.BBox))
	if p.Datetime != "" {
		params.Set("datetime", p.Datetime)
	}
	if len(p.Collections) > 0 {
		params.Set("collections", strings.Join(p.Collections, ","))
	}
	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}
	query, err := encodeQuery(p)
	if err != nil {
		return nil, err
	}
	if query != "" {
		params.Set("query", query)
	}

	reqURL := c.BaseURL + "/search?" + params.Encode()
	logrus.Debugf("searching %s", reqURL)

	resp, err := c.HTTP.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	logrus.Infof("search matched %d scenes", len(sr.Features))
	return sr.Features, nil
}

// encodeQuery builds the STAC query extension JSON for the platform and
// cloud-cover constraints.
func encodeQuery(p SearchParams) (string, error) {
	clauses := make(map[string]map[string]interface{})
	if p.Platform != "" {
		clauses["platform"] = map[string]interface{}{"eq": p.Platform}
	}
	if p.MaxCloudCover > 0 {
		clauses["eo:cloud_cover"] = map[string]interface{}{"lt": p.MaxCloudCover}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(clauses)
	if err != nil {
		return "", fmt.Errorf("encode query clauses: %w", err)
	}
	return string(raw), nil
}

// FormatBBox renders a bound as the comma-separated
// "min-lon,min-lat,max-lon,max-lat" form search endpoints expect.
func FormatBBox(b orb.Bound) string {
	vals := []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
