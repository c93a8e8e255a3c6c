package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	openFDAEndpoint = "https://api.fda.gov/drug/label.json"
	sourceTimeout   = 8 * time.Second
	sourceLimit     = 5
)

// OpenFDA queries the FDA drug labeling registry with a brand-name filter.
type OpenFDA struct {
	endpoint   string
	httpClient *http.Client
}

// NewOpenFDA constructs an openFDA source. An empty endpoint selects the
// public API.
func NewOpenFDA(endpoint string) *OpenFDA {
	if endpoint == "" {
		endpoint = openFDAEndpoint
	}
	return &OpenFDA{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: sourceTimeout},
	}
}

func (s *OpenFDA) Name() string { return "openfda" }

type openFDAEnvelope struct {
	Results []openFDAResult `json:"results"`
}

type openFDAResult struct {
	ID      string `json:"id"`
	OpenFDA struct {
		BrandName        []string `json:"brand_name"`
		GenericName      []string `json:"generic_name"`
		ManufacturerName []string `json:"manufacturer_name"`
	} `json:"openfda"`
}

// Search looks up labeling records whose brand name matches the query.
func (s *OpenFDA) Search(ctx context.Context, name string) ([]Record, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("openfda.brand_name:%q", name))
	q.Set("limit", fmt.Sprint(sourceLimit))

	body, err := getJSON(ctx, s.httpClient, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var env openFDAEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("openfda: decode payload: %w", err)
	}
	records := make([]Record, 0, len(env.Results))
	for _, r := range env.Results {
		rec := Record{Source: s.Name(), ID: r.ID, Country: "USA"}
		if len(r.OpenFDA.BrandName) > 0 {
			rec.BrandName = r.OpenFDA.BrandName[0]
		} else {
			rec.BrandName = name
		}
		if len(r.OpenFDA.GenericName) > 0 {
			rec.GenericName = r.OpenFDA.GenericName[0]
		}
		if len(r.OpenFDA.ManufacturerName) > 0 {
			rec.Manufacturer = r.OpenFDA.ManufacturerName[0]
		}
		if raw, err := json.Marshal(r); err == nil {
			rec.Raw = raw
		}
		records = append(records, rec)
	}
	return records, nil
}

// getJSON issues a GET with the supplied headers and returns the body on a
// 2xx status.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
