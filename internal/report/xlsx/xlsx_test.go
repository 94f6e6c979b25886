package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRoundTrip(t *testing.T) {
	body, err := Write(
		Sheet{
			Name:      "Pomiary",
			Headers:   []string{"Punkt", "Temperatura"},
			Widths:    []float64{20, 12},
			Rows:      [][]any{{"Chlodnia 1", 3.5}, {"Chlodnia 2", 7.2}},
			Highlight: map[int]bool{1: true},
		},
		Sheet{Name: "Podsumowanie", Headers: []string{"Niezgodne"}, Rows: [][]any{{1}}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Pomiary", "Podsumowanie"}, f.GetSheetList())
	rows, err := f.GetRows("Pomiary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Punkt", "Temperatura"}, rows[0])
	assert.Equal(t, "Chlodnia 2", rows[2][0])
	assert.Equal(t, "7.2", rows[2][1])
}
