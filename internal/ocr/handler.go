package ocr

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comunavision/backend/internal/logger"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/models"
	"github.com/comunavision/backend/internal/services"
)

// Options controls when the scanner escalates from raw OCR to the LLM.
type Options struct {
	UseGeminiAlways bool
	MinConfidence   float64
	MinTextLen      int
}

// Scanner implements the document scan endpoint. Notifier may be nil when
// the service runs without a registry database.
type Scanner struct {
	Engine     Engine
	Normalizer *Normalizer
	StorageDir string
	Opts       Options
	Notifier   *services.NotificationService
}

type scanRequest struct {
	Image     string `json:"image" binding:"required"`
	UseGemini *bool  `json:"use_gemini"`
	DocHint   string `json:"doc_hint"`
}

var dataURL = regexp.MustCompile(`(?is)^data:.*?;base64,(.*)$`)

func stripDataURL(data string) string {
	if m := dataURL.FindStringSubmatch(data); m != nil {
		return m[1]
	}
	return data
}

func (s *Scanner) saveImage(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if err := os.MkdirAll(s.StorageDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.StorageDir, fmt.Sprintf("tmp_%s.jpg", uuid.New().String()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Scanner) shouldUseGemini(confidence float64, rawLen int) bool {
	if s.Opts.UseGeminiAlways {
		return true
	}
	if confidence < s.Opts.MinConfidence {
		return true
	}
	if rawLen < s.Opts.MinTextLen {
		return true
	}
	return false
}

func (s *Scanner) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/scan", s.Scan)
}

// Scan decodes and stores the image, runs OCR and, when warranted,
// normalizes the text with the LLM. OCR or LLM trouble degrades the
// response instead of failing it.
func (s *Scanner) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	metrics.IncOCRScan()

	imagePath, err := s.saveImage(stripDataURL(req.Image))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rawText, confidence, err := s.Engine.Recognize(c.Request.Context(), imagePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("OCR failed: %v", err)})
		return
	}

	useGemini := s.shouldUseGemini(confidence, len(rawText))
	if req.UseGemini != nil {
		useGemini = *req.UseGemini
	}

	out := gin.H{
		"ok":                    true,
		"image_path":            imagePath,
		"ocr_confidence_global": confidence,
		"ocr_raw":               rawText,
		"ocr_meta":              gin.H{"raw_length": len(rawText)},
		"gemini_used":           false,
		"result":                nil,
		"warnings":              []string{},
	}

	if !useGemini {
		out["result"] = gin.H{
			"document_type": "OCR_ONLY",
			"raw_text":      rawText,
		}
		c.JSON(http.StatusOK, out)
		return
	}

	normalized, err := s.Normalizer.Normalize(c.Request.Context(), rawText, confidence)
	if err != nil {
		metrics.IncOCRNormalizeFailure()
		logger.Log().WithError(err).Warn("gemini normalization failed")
		if s.Notifier != nil {
			s.Notifier.Notify(models.NotificationWarning, "Normalización OCR fallida", err.Error())
		}
		out["warnings"] = []string{fmt.Sprintf("GeminiError: %v", err)}
		out["result"] = gin.H{
			"document_type": "OTHER_ID",
			"warnings":      []string{"Gemini no disponible; usando OCR crudo"},
			"raw_text":      rawText,
		}
		c.JSON(http.StatusOK, out)
		return
	}

	out["gemini_used"] = true
	out["result"] = normalized
	c.JSON(http.StatusOK, out)
}
