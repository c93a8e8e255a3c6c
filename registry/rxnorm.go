package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const rxNormEndpoint = "https://rxnav.nlm.nih.gov/REST/drugs.json"

// RxNorm queries the NLM drug nomenclature registry with a free-text name
// search.
type RxNorm struct {
	endpoint   string
	httpClient *http.Client
}

// NewRxNorm constructs an RxNorm source. An empty endpoint selects the
// public API.
func NewRxNorm(endpoint string) *RxNorm {
	if endpoint == "" {
		endpoint = rxNormEndpoint
	}
	return &RxNorm{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: sourceTimeout},
	}
}

func (s *RxNorm) Name() string { return "rxnorm" }

type rxNormEnvelope struct {
	DrugGroup struct {
		ConceptGroup []struct {
			TTY               string `json:"tty"`
			ConceptProperties []struct {
				RxCUI    string `json:"rxcui"`
				Name     string `json:"name"`
				Synonym  string `json:"synonym"`
				Language string `json:"language"`
			} `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

// Search looks up nomenclature concepts matching the query name.
func (s *RxNorm) Search(ctx context.Context, name string) ([]Record, error) {
	q := url.Values{}
	q.Set("name", name)

	body, err := getJSON(ctx, s.httpClient, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var env rxNormEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("rxnorm: decode payload: %w", err)
	}
	var records []Record
	for _, group := range env.DrugGroup.ConceptGroup {
		for _, c := range group.ConceptProperties {
			rec := Record{
				Source:      s.Name(),
				ID:          c.RxCUI,
				BrandName:   c.Name,
				GenericName: c.Synonym,
			}
			if raw, err := json.Marshal(c); err == nil {
				rec.Raw = raw
			}
			records = append(records, rec)
		}
	}
	return records, nil
}
