package pdf

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreFontFoldsPolishLetters(t *testing.T) {
	renderer, err := NewRenderer(Fonts{})
	require.NoError(t, err)
	assert.False(t, renderer.Unicode())
	assert.Equal(t, "Zolta kielbasa, LODZ, 72 C", renderer.text("Żółta kiełbasa, ŁÓDŹ, 72 °C"))

	var unset *Renderer
	assert.Equal(t, "Protokol audytu wewnetrznego", unset.text("Protokół audytu wewnętrznego"))
}

func TestNewRendererReportsMissingFontFile(t *testing.T) {
	_, err := NewRenderer(Fonts{Regular: filepath.Join(t.TempDir(), "missing.ttf")})
	require.Error(t, err)
}

func TestRenderWithCoreFont(t *testing.T) {
	var renderer *Renderer

	body, err := renderer.RenderAuditReport(AuditReport{
		Checklist: "Higiena hali rozbioru",
		Auditor:   "Józef Wiśniewski",
		AuditDate: "2024-03-12",
		Score:     70,
		Threshold: 75,
		Passed:    7,
		Total:     10,
		Items: []AuditItem{
			{Item: "Ściany", Passed: true},
			{Item: "Umywalki", Notes: "brak mydła"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	body, err = renderer.RenderTemperatureLog(TemperatureLog{Title: "Rejestr temperatur", Period: "2024-03"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}
