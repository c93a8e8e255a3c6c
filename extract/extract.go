// Package extract recovers structured pharmaceutical facts from noisy OCR
// text: medicine name candidates, the manufacturer, batch number, expiry date
// and strength. Extraction is purely rule based; every rule set runs over the
// same normalized text and a field that matches nothing is simply absent.
package extract

import (
	"regexp"
	"strings"
)

// NameCandidate is one potential medicine name recovered from the label.
type NameCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Company identifies the manufacturer printed on the package.
type Company struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Confidence float64 `json:"confidence"`
}

// Info aggregates everything recovered from one piece of OCR text. Built once
// per request and never mutated afterwards.
type Info struct {
	RawText     string          `json:"raw_text"`
	CleanedText string          `json:"cleaned_text"`
	Names       []NameCandidate `json:"medicine_names"`
	Company     *Company        `json:"company,omitempty"`
	BatchNumber string          `json:"batch_number,omitempty"`
	ExpiryDate  string          `json:"expiry_date,omitempty"`
	Strength    string          `json:"strength,omitempty"`
}

const (
	maxNameCandidates = 5
	nameConfidence    = 0.8
	companyConfidence = 0.9
	methodRegex       = "regex_pattern"
)

// Ordered name pattern categories. Scan order defines candidate order.
var namePatterns = []*regexp.Regexp{
	// Brand names printed in block capitals.
	regexp.MustCompile(`\b([A-Z]{4,})\b`),
	// Generic names from pharmacological suffix families.
	regexp.MustCompile(`\b([A-Z]+(?:MYCIN|CILLIN|PRAZOLE|STATIN|OLOL|SARTAN|PRIL|DIPINE|AZOLE|TROPIN))\b`),
	// Common over-the-counter brands and generics.
	regexp.MustCompile(`\b(PARACETAMOL|ACETAMINOPHEN|ASPIRIN|IBUPROFEN|CROCIN|DOLO|COMBIFLAM|VICKS|SINAREST)\b`),
	// Common antibiotics.
	regexp.MustCompile(`\b(AMOXICILLIN|AZITHROMYCIN|CIPROFLOXACIN|DOXYCYCLINE|ERYTHROMYCIN)\b`),
}

// Packaging and label vocabulary that the all-caps pattern would otherwise
// pick up as names.
var stopWords = map[string]bool{
	"TABLETS": true, "CAPSULES": true, "SYRUP": true, "CREAM": true,
	"OINTMENT": true, "DROPS": true, "COMPANY": true, "PHARMA": true,
	"PHARMACEUTICALS": true, "LABORATORIES": true, "LABS": true,
	"BATCH": true, "EXPIRY": true, "CONTENT": true, "STORE": true,
	"KEEP": true, "AWAY": true, "CHILDREN": true, "MADE": true,
	"INDIA": true, "PACK": true, "SIZE": true, "PLEASE": true,
	"READ": true, "LABEL": true,
}

// Company patterns in priority order: South-Asian manufacturers, global
// majors, then the generic corporate-suffix form.
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(CIPLA|SUN\s+PHARMA|DR\.?\s*REDDY|RANBAXY|LUPIN|AUROBINDO|ZYDUS|TORRENT)\b`),
	regexp.MustCompile(`\b(GSK|GLAXO|SMITHKLINE|PFIZER|NOVARTIS|MERCK|ABBOTT|SANOFI|BAYER)\b`),
	regexp.MustCompile(`\b(JOHNSON|J&J|BRISTOL|MYERS|SQUIBB|ROCHE|ASTRAZENECA)\b`),
	regexp.MustCompile(`\b([A-Z]+\s+(?:PHARMA|PHARMACEUTICALS?|LABORATORIES?|LABS?))\b`),
}

var batchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:BATCH|LOT|B\.?NO\.?)[\s:]*([A-Z0-9]{3,})\b`),
	regexp.MustCompile(`\b(B[A-Z0-9]{3,})\b`),
	regexp.MustCompile(`\b([A-Z]{2,3}\d{3,})\b`),
}

var expiryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:EXP|EXPIRY|EXPIRES?)[\s:]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})\b`),
	regexp.MustCompile(`\b(\d{1,2}[/\-]\d{4})\b`),
	regexp.MustCompile(`\b([A-Z]{3}\s*\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{2,4})\b`),
}

var strengthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?\s*(?:mg|gm|g|mcg|µg|ml|%|units?|iu))\b`),
	regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?/\d+(?:\.\d+)?\s*(?:mg|ml))\b`),
}

var countryByCompany = map[string][]string{
	"India": {"CIPLA", "SUN PHARMA", "DR REDDY", "RANBAXY", "LUPIN", "AUROBINDO", "ZYDUS", "TORRENT", "MANKIND", "HIMALAYA"},
	"USA":   {"PFIZER", "MERCK", "JOHNSON", "BRISTOL", "ABBOTT"},
	"UK":    {"GSK", "GLAXO", "SMITHKLINE", "ASTRAZENECA"},
}

// Fields extracts all pharmaceutical facts from raw OCR text. The five
// sub-extractions are independent; absence of any field is not an error.
func Fields(raw string) Info {
	cleaned := Normalize(raw)
	return Info{
		RawText:     raw,
		CleanedText: cleaned,
		Names:       MedicineNames(cleaned),
		Company:     CompanyInfo(cleaned),
		BatchNumber: BatchNumber(cleaned),
		ExpiryDate:  ExpiryDate(cleaned),
		Strength:    Strength(cleaned),
	}
}

// MedicineNames scans for name candidates in pattern order, discarding
// packaging vocabulary, deduplicating case-insensitively and keeping at most
// five in first-seen order.
func MedicineNames(text string) []NameCandidate {
	upper := strings.ToUpper(text)
	seen := make(map[string]bool)
	var out []NameCandidate
	for _, p := range namePatterns {
		for _, m := range p.FindAllStringSubmatch(upper, -1) {
			name := m[1]
			if len(name) < 3 || stopWords[name] {
				continue
			}
			titled := titleCase(name)
			key := strings.ToLower(titled)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, NameCandidate{
				Name:       titled,
				Confidence: nameConfidence,
				Method:     methodRegex,
			})
		}
	}
	if len(out) > maxNameCandidates {
		out = out[:maxNameCandidates]
	}
	return out
}

// CompanyInfo returns the first manufacturer match in pattern priority order,
// or nil when no pattern applies.
func CompanyInfo(text string) *Company {
	upper := strings.ToUpper(text)
	for _, p := range companyPatterns {
		if m := p.FindString(upper); m != "" {
			name := strings.TrimSpace(m)
			return &Company{
				Name:       name,
				Country:    companyCountry(name),
				Confidence: companyConfidence,
			}
		}
	}
	return nil
}

// BatchNumber returns the first batch or lot code match, or "".
func BatchNumber(text string) string {
	return firstSubmatch(strings.ToUpper(text), batchPatterns)
}

// ExpiryDate returns the first expiry date match, or "".
func ExpiryDate(text string) string {
	return firstSubmatch(strings.ToUpper(text), expiryPatterns)
}

// Strength returns the first dosage match (value plus unit, or a ratio
// form), or "".
func Strength(text string) string {
	return firstSubmatch(text, strengthPatterns)
}

func firstSubmatch(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func companyCountry(name string) string {
	upper := strings.ToUpper(name)
	for _, country := range []string{"India", "USA", "UK"} {
		for _, c := range countryByCompany[country] {
			if strings.Contains(upper, c) {
				return country
			}
		}
	}
	return "Unknown"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
