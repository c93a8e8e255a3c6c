// Package report derives human-facing output from a verdict: actionable
// recommendation strings and a rendered verification report.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/verimed/verimed/extract"
	"github.com/verimed/verimed/imaging"
	"github.com/verimed/verimed/ocr"
	"github.com/verimed/verimed/verify"
)

// Recommendations returns advice strings keyed off the risk level and image
// quality.
func Recommendations(v verify.Verdict, q imaging.Quality) []string {
	var recs []string
	switch v.RiskLevel {
	case verify.RiskLow:
		recs = append(recs, "Medicine name matched a known registry entry. Verify the batch number with the manufacturer before use.")
	case verify.RiskMedium:
		recs = append(recs, "Partial registry match found. Cross-check the package against the manufacturer's official product images.")
	case verify.RiskHigh:
		recs = append(recs, "Registry entries were found but none resemble the printed name closely. Do not consume; consult a pharmacist.")
	case verify.RiskUnknown:
		recs = append(recs, "No registry entries were found for the extracted name. Verify the medicine with a licensed pharmacist.")
	}
	if q.Overall < 0.5 {
		recs = append(recs, "Image quality is low. Retake the photo in better light with the label in focus for a more reliable result.")
	}
	return recs
}

// Data aggregates everything a rendered report needs.
type Data struct {
	RequestID string
	Verdict   verify.Verdict
	Matches   []verify.MatchResult
	Extracted extract.Info
	OCR       ocr.Outcome
	Quality   imaging.Quality
}

// Markdown formats the verification report as a markdown document.
func Markdown(d Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Verification Report\n\n")
	if d.RequestID != "" {
		fmt.Fprintf(&b, "Request `%s`\n\n", d.RequestID)
	}
	fmt.Fprintf(&b, "## Verdict\n\n")
	fmt.Fprintf(&b, "- Authentic: **%v**\n", d.Verdict.IsAuthentic)
	fmt.Fprintf(&b, "- Confidence: **%.2f**\n", d.Verdict.ConfidenceScore)
	fmt.Fprintf(&b, "- Risk level: **%s**\n", d.Verdict.RiskLevel)
	fmt.Fprintf(&b, "- Registry matches: %d\n\n", d.Verdict.MatchesFound)

	fmt.Fprintf(&b, "## Extracted Label\n\n")
	for _, c := range d.Extracted.Names {
		fmt.Fprintf(&b, "- Name candidate: %s\n", c.Name)
	}
	if d.Extracted.Company != nil {
		fmt.Fprintf(&b, "- Manufacturer: %s (%s)\n", d.Extracted.Company.Name, d.Extracted.Company.Country)
	}
	if d.Extracted.BatchNumber != "" {
		fmt.Fprintf(&b, "- Batch: %s\n", d.Extracted.BatchNumber)
	}
	if d.Extracted.ExpiryDate != "" {
		fmt.Fprintf(&b, "- Expiry: %s\n", d.Extracted.ExpiryDate)
	}
	if d.Extracted.Strength != "" {
		fmt.Fprintf(&b, "- Strength: %s\n", d.Extracted.Strength)
	}

	if len(d.Matches) > 0 {
		fmt.Fprintf(&b, "\n## Registry Matches\n\n")
		for _, m := range d.Matches {
			fmt.Fprintf(&b, "- %s (%s): %.2f\n", m.Record.BrandName, m.Record.Source, m.Score)
		}
	}

	fmt.Fprintf(&b, "\n## Capture\n\n")
	fmt.Fprintf(&b, "- OCR method: %s (confidence %.2f, %d engines)\n",
		d.OCR.Winner.Method, d.OCR.Winner.Confidence, d.OCR.EnginesUsed)
	fmt.Fprintf(&b, "- Image quality: %.2f\n", d.Quality.Overall)

	if recs := Recommendations(d.Verdict, d.Quality); len(recs) > 0 {
		fmt.Fprintf(&b, "\n## Recommendations\n\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}

// HTML renders the markdown report to HTML via goldmark.
func HTML(d Data) ([]byte, error) {
	md := goldmark.New()
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(d)), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
