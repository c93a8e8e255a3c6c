package extract

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace runs", "  PARACETAMOL   500mg  \n  ", "PARACETAMOL 500mg"},
		{"strips disallowed chars", "DOLO@650#!", "DOLO 650"},
		{"keeps dosage punctuation", "12.5 mg/5ml (50%) A-B +C", "12.5 mg/5ml (50%) A-B +C"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFieldsLabelScenario(t *testing.T) {
	info := Fields("PARACETAMOL 500mg CIPLA PHARMACEUTICALS BATCH: ABC123 EXP: 12/2026")

	var names []string
	for _, c := range info.Names {
		names = append(names, c.Name)
		if c.Confidence != 0.8 || c.Method != "regex_pattern" {
			t.Fatalf("unexpected candidate metadata: %+v", c)
		}
	}
	if len(names) == 0 || names[0] != "Paracetamol" {
		t.Fatalf("expected Paracetamol as first candidate, got %v", names)
	}

	if info.Company == nil {
		t.Fatalf("expected a company match")
	}
	if info.Company.Name != "CIPLA" || info.Company.Country != "India" {
		t.Fatalf("unexpected company: %+v", info.Company)
	}
	if info.Company.Confidence != 0.9 {
		t.Fatalf("unexpected company confidence: %v", info.Company.Confidence)
	}
	if info.BatchNumber != "ABC123" {
		t.Fatalf("unexpected batch: %q", info.BatchNumber)
	}
	if info.ExpiryDate != "12/2026" {
		t.Fatalf("unexpected expiry: %q", info.ExpiryDate)
	}
	if info.Strength != "500mg" {
		t.Fatalf("unexpected strength: %q", info.Strength)
	}
}

func TestMedicineNamesStopListAndDedup(t *testing.T) {
	names := MedicineNames("PARACETAMOL TABLETS KEEP AWAY CHILDREN PARACETAMOL paracetamol")
	if len(names) != 1 {
		t.Fatalf("expected single deduplicated candidate, got %v", names)
	}
	if names[0].Name != "Paracetamol" {
		t.Fatalf("unexpected candidate: %+v", names[0])
	}
}

func TestMedicineNamesCap(t *testing.T) {
	names := MedicineNames("ALPHA BRAVO CHARLIE DELTA ECHOES FOXTROT GOLFING")
	if len(names) != 5 {
		t.Fatalf("expected candidate list capped at 5, got %d", len(names))
	}
}

func TestMedicineNamesSuffixFamilies(t *testing.T) {
	names := MedicineNames("contains azithromycin and atorvastatin")
	var got []string
	for _, c := range names {
		got = append(got, c.Name)
	}
	joined := strings.Join(got, ",")
	for _, want := range []string{"Azithromycin", "Atorvastatin"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %s in %v", want, got)
		}
	}
}

func TestCompanyInfo(t *testing.T) {
	tests := []struct {
		text    string
		name    string
		country string
	}{
		{"manufactured by PFIZER inc", "PFIZER", "USA"},
		{"GLAXO WELLCOME", "GLAXO", "UK"},
		{"ACME PHARMACEUTICALS LTD", "ACME PHARMACEUTICALS", "Unknown"},
		{"SUN PHARMA LIMITED", "SUN PHARMA", "India"},
	}
	for _, tt := range tests {
		c := CompanyInfo(tt.text)
		if c == nil {
			t.Fatalf("CompanyInfo(%q) returned nil", tt.text)
		}
		if c.Name != tt.name || c.Country != tt.country {
			t.Fatalf("CompanyInfo(%q) = %+v, want %s/%s", tt.text, c, tt.name, tt.country)
		}
	}
	if c := CompanyInfo("no manufacturer printed here"); c != nil {
		t.Fatalf("expected nil company, got %+v", c)
	}
}

func TestBatchNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"LOT XYZ789", "XYZ789"},
		{"B4521A printed on flap", "B4521A"},
		{"code AB1234 near seam", "AB1234"},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		if got := BatchNumber(tt.text); got != tt.want {
			t.Fatalf("BatchNumber(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExpiryDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"EXP 01/12/2027", "01/12/2027"},
		{"use before 06/2025", "06/2025"},
		{"JAN 2028", "JAN 2028"},
		{"mfg 1.2.2024", "1.2.2024"},
		{"no date", ""},
	}
	for _, tt := range tests {
		if got := ExpiryDate(tt.text); got != tt.want {
			t.Fatalf("ExpiryDate(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"DOLO 650mg tablets", "650mg"},
		{"12.5 ml twice daily", "12.5 ml"},
		{"amoxicillin 125/31.25 mg", "31.25 mg"},
		{"strength 400 IU", "400 IU"},
		{"no dosage", ""},
	}
	for _, tt := range tests {
		if got := Strength(tt.text); got != tt.want {
			t.Fatalf("Strength(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestFieldsAbsentEverything(t *testing.T) {
	info := Fields("")
	if info.Company != nil || info.BatchNumber != "" || info.ExpiryDate != "" || info.Strength != "" {
		t.Fatalf("empty text should extract nothing: %+v", info)
	}
	if len(info.Names) != 0 {
		t.Fatalf("empty text should yield no candidates: %v", info.Names)
	}
}
