package ocr

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	text string
	conf float64
	err  error
}

func (e *stubEngine) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	return e.text, e.conf, e.err
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "REPUBLICA   DE\n\tCHILE", "REPUBLICA DE CHILE"},
		{"strips non-ascii", "Nº DOCUMENTO: 12.345.678±9", "N DOCUMENTO: 12.345.678 9"},
		{"removes filler", "CEDULA SIN VALOR DE IDENTIDAD", "CEDULA DE IDENTIDAD"},
		{"trims edges", "  PEREZ GONZALEZ  ", "PEREZ GONZALEZ"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}

func TestHybridCombinesBothEngines(t *testing.T) {
	h := &Hybrid{
		Primary:   &stubEngine{text: "PASSPORT  P123", conf: 0.87654},
		Secondary: &stubEngine{text: "SURNAME PEREZ"},
	}

	text, conf, err := h.Recognize(context.Background(), "ignored.jpg")
	require.NoError(t, err)
	assert.Equal(t, "PASSPORT P123 SURNAME PEREZ", text)
	assert.Equal(t, 0.8765, conf)
}

func TestHybridToleratesSingleEngineFailure(t *testing.T) {
	h := &Hybrid{
		Primary:   &stubEngine{err: fmt.Errorf("sidecar down")},
		Secondary: &stubEngine{text: "DNI 12345678"},
	}

	text, conf, err := h.Recognize(context.Background(), "ignored.jpg")
	require.NoError(t, err)
	assert.Equal(t, "DNI 12345678", text)
	assert.Zero(t, conf)
}

func TestHybridFailsWhenAllEnginesFail(t *testing.T) {
	h := &Hybrid{
		Primary:   &stubEngine{err: fmt.Errorf("sidecar down")},
		Secondary: &stubEngine{err: fmt.Errorf("tesseract missing")},
	}

	_, _, err := h.Recognize(context.Background(), "ignored.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all OCR engines failed")
}

func TestHybridCapsOutputLength(t *testing.T) {
	h := &Hybrid{Primary: &stubEngine{text: strings.Repeat("A ", 2500), conf: 0.9}}

	text, _, err := h.Recognize(context.Background(), "ignored.jpg")
	require.NoError(t, err)
	assert.Len(t, text, maxChars)
}
