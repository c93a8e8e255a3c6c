package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verimed/verimed/extract"
	"github.com/verimed/verimed/imaging"
	"github.com/verimed/verimed/observability"
	"github.com/verimed/verimed/ocr"
	"github.com/verimed/verimed/pipeline"
	"github.com/verimed/verimed/report"
	"github.com/verimed/verimed/store"
	"github.com/verimed/verimed/verify"
)

type handlers struct {
	pipeline *pipeline.Pipeline
	logger   observability.Logger
	audit    *store.Store
}

// OCRResult flattens the arbitration outcome for the response body.
type OCRResult struct {
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	Method      string           `json:"method"`
	EnginesUsed int              `json:"engines_used"`
	AllResults  []ocr.Hypothesis `json:"all_results"`
}

// Response is the verification endpoint's body.
type Response struct {
	Status             string               `json:"status"`
	RequestID          string               `json:"request_id"`
	ProcessingTime     float64              `json:"processing_time"`
	OCRResult          OCRResult            `json:"ocr_result"`
	ExtractedInfo      extract.Info         `json:"extracted_info"`
	DatabaseMatches    []verify.MatchResult `json:"database_matches"`
	VerificationResult verify.Verdict       `json:"verification_result"`
	Recommendations    []string             `json:"recommendations"`
	ImageQuality       imaging.Quality      `json:"image_quality"`
}

// ErrorResponse is the error body for failed requests.
type ErrorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Medicine Verifier API",
		"version": apiVersion,
		"status":  "running",
	})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) verify(c *gin.Context) {
	res, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Response{
		Status:         "success",
		RequestID:      res.RequestID,
		ProcessingTime: res.ProcessingTime.Seconds(),
		OCRResult: OCRResult{
			Text:        res.OCR.Winner.Text,
			Confidence:  res.OCR.Winner.Confidence,
			Method:      res.OCR.Winner.Method,
			EnginesUsed: res.OCR.EnginesUsed,
			AllResults:  res.OCR.Hypotheses,
		},
		ExtractedInfo:      res.Extracted,
		DatabaseMatches:    res.Matches,
		VerificationResult: res.Verdict,
		Recommendations:    res.Recommendations,
		ImageQuality:       res.Quality,
	})
}

func (h *handlers) report(c *gin.Context) {
	res, ok := h.run(c)
	if !ok {
		return
	}
	html, err := report.HTML(res.ReportData())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status: "error", ErrorCode: "render_failed", Message: err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *handlers) history(c *gin.Context) {
	limit := 50
	rows, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("audit query failed", observability.Error("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status: "error", ErrorCode: "audit_unavailable", Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "verifications": rows})
}

// run decodes the uploaded image and executes the pipeline, writing the error
// response itself when the request cannot be served.
func (h *handlers) run(c *gin.Context) (*pipeline.Result, bool) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status: "error", ErrorCode: "missing_image", Message: "multipart field 'image' is required",
		})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status: "error", ErrorCode: "unreadable_upload", Message: err.Error(),
		})
		return nil, false
	}

	res, err := h.pipeline.Verify(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, imaging.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Status: "error", ErrorCode: "invalid_image", Message: "uploaded bytes do not decode as an image",
			})
			return nil, false
		}
		h.logger.Error("verification failed", observability.Error("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status: "error", ErrorCode: "verification_failed", Message: err.Error(),
		})
		return nil, false
	}
	return res, true
}
