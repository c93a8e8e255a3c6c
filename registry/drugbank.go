package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const drugBankEndpoint = "https://api.drugbank.com/v1/us/drugs"

// ErrNoAPIKey reports a DrugBank source constructed without credentials.
var ErrNoAPIKey = errors.New("drugbank: api key not configured")

// DrugBank queries the commercial DrugBank registry with an authenticated
// keyword search.
type DrugBank struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewDrugBank constructs a DrugBank source. An empty endpoint selects the
// public API; the key is required at query time.
func NewDrugBank(endpoint, apiKey string) *DrugBank {
	if endpoint == "" {
		endpoint = drugBankEndpoint
	}
	return &DrugBank{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: sourceTimeout},
	}
}

func (s *DrugBank) Name() string { return "drugbank" }

type drugBankEnvelope struct {
	Drugs []struct {
		ID       string `json:"drugbank_id"`
		Name     string `json:"name"`
		CASL     string `json:"cas_number"`
		Labeller string `json:"labeller"`
		Region   string `json:"region"`
	} `json:"drugs"`
}

// Search performs an authenticated keyword lookup.
func (s *DrugBank) Search(ctx context.Context, name string) ([]Record, error) {
	if s.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", fmt.Sprint(sourceLimit))

	headers := map[string]string{"Authorization": "Token " + s.apiKey}
	body, err := getJSON(ctx, s.httpClient, s.endpoint+"?"+q.Encode(), headers)
	if err != nil {
		return nil, err
	}
	var env drugBankEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("drugbank: decode payload: %w", err)
	}
	records := make([]Record, 0, len(env.Drugs))
	for _, d := range env.Drugs {
		rec := Record{
			Source:       s.Name(),
			ID:           d.ID,
			BrandName:    d.Name,
			Manufacturer: d.Labeller,
			Country:      d.Region,
		}
		if raw, err := json.Marshal(d); err == nil {
			rec.Raw = raw
		}
		records = append(records, rec)
	}
	return records, nil
}
