package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/comunavision/backend/internal/logger"
)

// Engine extracts text from a stored document image. Confidence is a 0..1
// average over recognized regions; engines that cannot measure it return 0.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (text string, confidence float64, err error)
}

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	Cmd string
}

func NewTesseractEngine(cmd string) *TesseractEngine {
	if cmd == "" {
		cmd = "tesseract"
	}
	return &TesseractEngine{Cmd: cmd}
}

func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	cmd := exec.CommandContext(ctx, e.Cmd, imagePath, "stdout", "-l", "spa+eng", "--oem", "3", "--psm", "6")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), 0, nil
}

// SidecarEngine delegates recognition to an HTTP OCR sidecar. The sidecar
// accepts {"image": <base64>} and answers {"text": ..., "confidence": ...}.
type SidecarEngine struct {
	URL    string
	client *http.Client
}

func NewSidecarEngine(url string) *SidecarEngine {
	return &SidecarEngine{URL: url, client: &http.Client{Timeout: 30 * time.Second}}
}

func (e *SidecarEngine) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", 0, fmt.Errorf("read image: %w", err)
	}

	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("ocr sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("ocr sidecar: status %d", resp.StatusCode)
	}

	var result struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("ocr sidecar: decode: %w", err)
	}
	return result.Text, result.Confidence, nil
}

// maxChars keeps prompts below the LLM truncation point.
const maxChars = 1800

var (
	nonASCII   = regexp.MustCompile(`[^\x00-\x7F]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanText strips non-ASCII noise and filler artifacts common on scanned
// identity documents, then collapses whitespace.
func CleanText(text string) string {
	text = nonASCII.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "SIN VALOR", "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Hybrid combines a primary engine that reports confidence with the
// tesseract fallback, returning cleaned, size-capped text. A single engine
// failing is tolerated as long as the other produced something.
type Hybrid struct {
	Primary   Engine
	Secondary Engine
}

func (h *Hybrid) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	var parts []string
	var confidence float64

	if h.Primary != nil {
		text, conf, err := h.Primary.Recognize(ctx, imagePath)
		if err != nil {
			logger.Log().WithError(err).Warn("primary OCR engine failed")
		} else {
			parts = append(parts, text)
			confidence = conf
		}
	}
	if h.Secondary != nil {
		text, _, err := h.Secondary.Recognize(ctx, imagePath)
		if err != nil {
			logger.Log().WithError(err).Warn("secondary OCR engine failed")
		} else {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", 0, fmt.Errorf("all OCR engines failed")
	}

	combined := CleanText(strings.Join(parts, "\n"))
	if len(combined) > maxChars {
		combined = combined[:maxChars]
	}
	return combined, round4(confidence), nil
}

func round4(f float64) float64 {
	return float64(int(f*10000+0.5)) / 10000
}
