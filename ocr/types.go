package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Input encapsulates a single preprocessed image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier that is echoed back in
	// diagnostics.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// DPI carries the effective dots-per-inch for the image. Providers such as
	// Tesseract use this for scaling and layout heuristics; zero means unknown.
	DPI int
	// Languages is a list of language hints (e.g., "eng", "deu") that
	// providers can use to select trained data.
	Languages []string
	// Metadata allows callers to pass through engine-specific knobs (e.g.,
	// "tessedit_pageseg_mode" for Tesseract) without hard-coding them into the
	// API surface.
	Metadata map[string]string
}

// Hypothesis is one engine's proposed reading of an image. Confidence is a
// heuristic on [0,1], not a calibrated probability, and hypotheses are
// compared only by (confidence, text length).
type Hypothesis struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// MethodNone marks the sentinel hypothesis returned when no engine produced
// readable text.
const MethodNone = "none"

// UnavailableMethod tags the zero-confidence hypothesis recorded for an
// engine that could not run.
func UnavailableMethod(engine string) string { return engine + "_unavailable" }

// LengthConfidence is the default confidence heuristic: longer recognized
// strings are trusted more, saturating at ten characters. Deliberately
// simplistic; swap it on the Arbiter without touching callers.
func LengthConfidence(text string) float64 {
	c := float64(len(text)) / 10
	if c > 1 {
		c = 1
	}
	return c
}

// Engine is the OCR provider contract: one image in, one hypothesis out. An
// engine that cannot run should return an error; the Arbiter degrades it to a
// zero-confidence hypothesis rather than failing the request.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Hypothesis, error)
}
