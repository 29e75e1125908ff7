package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawTotalAccessors(t *testing.T) {
	raw := Raw{
		"name":      "Пиво светлое",
		"available": true,
		"price":     437.0,
		"quoted":    "1,5",
		"null":      nil,
		"category":  map[string]any{"name": "Пиво"},
		"labels":    []any{map[string]any{"title": "Новинка"}, "stray"},
	}

	require.Equal(t, "Пиво светлое", raw.Str("name"))
	require.Equal(t, "", raw.Str("price"), "mistyped value reads as zero")
	require.Equal(t, "", raw.Str("missing"))

	require.True(t, raw.Bool("available"))
	require.False(t, raw.Bool("name"))

	require.True(t, raw.Has("name"))
	require.False(t, raw.Has("null"), "explicit null counts as absent")
	require.False(t, raw.Has("missing"))

	v, ok := raw.Float("price")
	require.True(t, ok)
	require.Equal(t, 437.0, v)

	v, ok = raw.Float("quoted")
	require.True(t, ok, "quoted numbers with comma decimals must parse")
	require.Equal(t, 1.5, v)

	_, ok = raw.Float("name")
	require.False(t, ok)
	require.Equal(t, 99.0, raw.FloatOr("missing", 99))
	require.Equal(t, 437, raw.Int("price"))

	require.Equal(t, "Пиво", raw.Map("category").Str("name"))
	require.Nil(t, raw.Map("name"))

	maps := raw.Maps("labels")
	require.Len(t, maps, 1, "non-object elements are dropped")
	require.Equal(t, "Новинка", maps[0].Str("title"))
}

func TestRawNilReceiver(t *testing.T) {
	var raw Raw
	require.Equal(t, "", raw.Str("any"))
	require.False(t, raw.Bool("any"))
	require.False(t, raw.Has("any"))
	_, ok := raw.Float("any")
	require.False(t, ok)
	require.Nil(t, raw.Map("any"))
	require.Nil(t, raw.Slice("any"))
	require.Equal(t, "", raw.Stringify("any"))
}

func TestStringify(t *testing.T) {
	require.Equal(t, "text", Stringify("text"))
	require.Equal(t, "true", Stringify(true))
	require.Equal(t, "12345", Stringify(12345.0))
	require.Equal(t, "0.5", Stringify(0.5))
	require.Equal(t, "7", Stringify(json.Number("7")))
	require.Equal(t, "", Stringify(nil))
	require.Equal(t, "", Stringify([]any{"x"}))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "2", FormatNumber(2.0))
	require.Equal(t, "0.7", FormatNumber(0.7))
	require.Equal(t, "-12", FormatNumber(-12.0))
	require.Equal(t, "437.5", FormatNumber(437.5))
}
