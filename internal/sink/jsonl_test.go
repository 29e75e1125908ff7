package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"alkoteka-crawler/internal/catalog"
)

func TestJSONLWritesOneRecordPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.jsonl")
	s, err := NewJSONL(path)
	require.NoError(t, err)

	ctx := context.Background()
	first := catalog.Product{
		Timestamp: 1756200000,
		RPC:       "abc",
		Title:     "Вино красное, 0.75 л",
		URL:       "https://alkoteka.com/product/vino/krasnoe?page=1&per_page=20",
		Metadata:  map[string]string{"__description": "сухое"},
	}
	second := catalog.Product{Timestamp: 1756200001, RPC: "def"}

	require.NoError(t, s.Write(ctx, first))
	require.NoError(t, s.Write(ctx, second))
	require.NoError(t, s.Close(ctx))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)

	var got catalog.Product
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	require.Equal(t, first, got)

	require.Contains(t, lines[0], `"RPC":"abc"`, "feed contract uses the uppercase RPC key")
	require.Contains(t, lines[0], "page=1&per_page=20", "urls must not be html-escaped")
	require.False(t, strings.Contains(lines[0], `\u0026`))
}

func TestJSONLTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	s, err := NewJSONL(path)
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}
