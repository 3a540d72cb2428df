package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCartFile(t *testing.T) {
	tests := map[string]string{
		"bare array": `[{"id":1,"quantity":2,"price":"125.000₫","weight":"300"}]`,
		"wrapped":    `{"items":[{"id":1,"quantity":2,"price":125000,"weight_grams":300}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			lines, err := readCartFile(strings.NewReader(body), "-")
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, 2, lines[0].Qty())
			assert.Equal(t, 250000.0, lines[0].LineTotal())
			w, ok := lines[0].Dimensions().Weight.Get()
			require.True(t, ok)
			assert.Equal(t, 300.0, w)
		})
	}
}

func TestReadCartFile_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":5}]`), 0o600))

	lines, err := readCartFile(nil, path)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].ID)
}

func TestReadCartFile_Invalid(t *testing.T) {
	_, err := readCartFile(strings.NewReader(`"nope"`), "")
	assert.Error(t, err)
}
