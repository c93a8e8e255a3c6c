package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenFDASearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("unexpected limit: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":"lbl-1","openfda":{
			"brand_name":["TYLENOL"],
			"generic_name":["ACETAMINOPHEN"],
			"manufacturer_name":["Johnson & Johnson"]}}]}`))
	}))
	defer srv.Close()

	records, err := NewOpenFDA(srv.URL).Search(context.Background(), "TYLENOL")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Source != "openfda" || r.ID != "lbl-1" || r.BrandName != "TYLENOL" ||
		r.GenericName != "ACETAMINOPHEN" || r.Manufacturer != "Johnson & Johnson" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestOpenFDASearchFallsBackToQueryName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":"lbl-2","openfda":{}}]}`))
	}))
	defer srv.Close()

	records, err := NewOpenFDA(srv.URL).Search(context.Background(), "CROCIN")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || records[0].BrandName != "CROCIN" {
		t.Fatalf("expected query name fallback, got %+v", records)
	}
}

func TestOpenFDASearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewOpenFDA(srv.URL).Search(context.Background(), "UNKNOWN"); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}

func TestRxNormSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "ASPIRIN" {
			t.Errorf("unexpected name param: %s", got)
		}
		w.Write([]byte(`{"drugGroup":{"conceptGroup":[
			{"tty":"SBD","conceptProperties":[
				{"rxcui":"1191","name":"ASPIRIN 81 MG","synonym":"aspirin"}]},
			{"tty":"BPCK","conceptProperties":[
				{"rxcui":"1192","name":"ASPIRIN 325 MG"}]}]}}`))
	}))
	defer srv.Close()

	records, err := NewRxNorm(srv.URL).Search(context.Background(), "ASPIRIN")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1191" || records[0].BrandName != "ASPIRIN 81 MG" || records[0].GenericName != "aspirin" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestRxNormSearchEmptyGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"drugGroup":{}}`))
	}))
	defer srv.Close()

	records, err := NewRxNorm(srv.URL).Search(context.Background(), "NOTHING")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestDrugBankSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token secret" {
			t.Errorf("unexpected auth header: %s", got)
		}
		w.Write([]byte(`{"drugs":[{"drugbank_id":"DB00316","name":"Acetaminophen",
			"labeller":"McNeil","region":"US"}]}`))
	}))
	defer srv.Close()

	records, err := NewDrugBank(srv.URL, "secret").Search(context.Background(), "Acetaminophen")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != "DB00316" || r.BrandName != "Acetaminophen" || r.Manufacturer != "McNeil" || r.Country != "US" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestDrugBankRequiresKey(t *testing.T) {
	if _, err := NewDrugBank("", "").Search(context.Background(), "X"); err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestSourceMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := NewOpenFDA(srv.URL).Search(context.Background(), "X"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := NewRxNorm(srv.URL).Search(context.Background(), "X"); err == nil {
		t.Fatalf("expected decode error")
	}
}
