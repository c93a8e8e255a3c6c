package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/verimed/verimed/ocr"
)

// defaultModes are the page segmentation modes tried per image: 6 assumes a
// uniform block of text, 8 a single word. Package labels fall between the
// two, so both passes run and the longer reading wins.
var defaultModes = []int{6, 8}

// Engine implements ocr.Engine over the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
	modes         []int
}

// New constructs a Tesseract-backed OCR engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient, modes: defaultModes}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs one recognition pass per configured segmentation mode and
// keeps the reading with the highest length confidence.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Hypothesis, error) {
	best := ocr.Hypothesis{Method: e.Name()}
	for _, mode := range e.modes {
		select {
		case <-ctx.Done():
			return ocr.Hypothesis{}, ctx.Err()
		default:
		}
		text, err := e.recognizeOnce(in, mode)
		if err != nil {
			return ocr.Hypothesis{}, err
		}
		if conf := ocr.LengthConfidence(text); conf > best.Confidence {
			best = ocr.Hypothesis{Text: text, Confidence: conf, Method: e.Name()}
		}
	}
	return best, nil
}

func (e *Engine) recognizeOnce(in ocr.Input, mode int) (string, error) {
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", fmt.Errorf("set segmentation mode: %w", err)
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
