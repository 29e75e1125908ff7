package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alkoteka-crawler/internal/catalog"
)

func freezeNow(t *testing.T) time.Time {
	t.Helper()
	fixed := time.Unix(1756200000, 0)
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
	return fixed
}

func listFixture() catalog.Raw {
	return catalog.Raw{
		"uuid":           "8a5b9259-46ae-11e7-83ff-00155d026416",
		"name":           "Пиво светлое Балтика",
		"subname":        "Светлое фильтрованное 0,45 л",
		"product_url":    "https://alkoteka.com/product/pivo/baltika",
		"image_url":      "https://web.alkoteka.com/img/baltika.jpg",
		"price":          80.0,
		"prev_price":     100.0,
		"available":      true,
		"quantity_total": 24.0,
		"vendor_code":    113253.0,
		"new":            true,
		"filter_labels": []any{
			map[string]any{"filter": "obem", "title": "0.45 л"},
			map[string]any{"filter": "strana", "title": "Россия"},
		},
		"category": map[string]any{
			"name":   "Пиво",
			"parent": map[string]any{"name": "Слабоалкогольные напитки"},
		},
	}
}

func TestFromList(t *testing.T) {
	fixed := freezeNow(t)

	p := FromList(listFixture())

	require.Equal(t, fixed.Unix(), p.Timestamp)
	require.Equal(t, "8a5b9259-46ae-11e7-83ff-00155d026416", p.RPC)
	require.Equal(t, "https://alkoteka.com/product/pivo/baltika", p.URL)
	require.Equal(t, "Пиво светлое Балтика, 0.45 л", p.Title)
	require.Equal(t, []string{"Новинка"}, p.MarketingTags)
	require.Equal(t, []string{"Слабоалкогольные напитки", "Пиво"}, p.Section)
	require.Equal(t, 80.0, p.Price.Current)
	require.Equal(t, 100.0, p.Price.Original)
	require.Equal(t, "Скидка 20%", p.Price.SaleTag)
	require.True(t, p.Stock.InStock)
	require.Equal(t, 24, p.Stock.Count)
	require.Equal(t, "https://web.alkoteka.com/img/baltika.jpg", p.Assets.MainImage)
	require.Equal(t, []string{"https://web.alkoteka.com/img/baltika.jpg"}, p.Assets.SetImages)
	require.Equal(t, 0, p.Variants)

	require.Equal(t, "Светлое фильтрованное 0,45 л", p.Metadata["__description"])
	require.Equal(t, "113253", p.Metadata["Артикул"])
	require.Equal(t, "Россия", p.Metadata["Страна"])
	require.Equal(t, "0.45 л", p.Metadata["Объем"])
	require.Equal(t, "24", p.Metadata["Общее количество"])
}

func TestFromDetailEmptyDegradesToList(t *testing.T) {
	freezeNow(t)

	list := listFixture()
	require.Equal(t, FromList(list), FromDetail(nil, list))
	require.Equal(t, FromList(list), FromDetail(catalog.Raw{}, list))
}

func TestFromDetailPrefersStructuredData(t *testing.T) {
	freezeNow(t)

	list := listFixture()
	detail := catalog.Raw{
		"uuid":      "8a5b9259-46ae-11e7-83ff-00155d026416",
		"name":      "Пиво светлое Балтика",
		"subname":   "Светлое фильтрованное",
		"price":     80.0,
		"available": true,
		"quantity":  5.0,
		"description_blocks": []any{
			map[string]any{"code": "obem", "min": 0.5, "max": 0.5},
			map[string]any{"code": "krepost", "min": 4.5, "max": 4.5},
			map[string]any{"code": "brend", "values": []any{map[string]any{"name": "Балтика"}}},
		},
		"text_blocks": []any{
			map[string]any{"title": "Описание", "content": "Классическое светлое пиво."},
		},
		"filter_labels": []any{
			map[string]any{"filter": "dopolnitelno", "title": "Акция"},
		},
		"category": map[string]any{"name": "Пиво"},
	}

	p := FromDetail(detail, list)

	require.Equal(t, "Пиво светлое Балтика, 0.5 л", p.Title, "volume block beats the subtitle")
	require.Equal(t, "Балтика", p.Brand)
	require.Equal(t, "https://alkoteka.com/product/pivo/baltika", p.URL, "url always comes from the list record")
	require.Equal(t, 5, p.Stock.Count)
	require.Equal(t, []string{"Акция"}, p.MarketingTags)
	require.Equal(t, "Классическое светлое пиво.", p.Metadata["__description"])
	require.Equal(t, "0.5 л", p.Metadata["Объем"])
	require.Equal(t, "4.5%", p.Metadata["Крепость"])
	require.Equal(t, "Балтика", p.Metadata["Бренд"])
}

func TestTitleWithVolume(t *testing.T) {
	require.Equal(t, "Вино красное, 0.75 л", titleWithVolume("Вино красное", "0.75 л"))
	require.Equal(t, "Вино красное 0,75 л", titleWithVolume("Вино красное 0,75 л", "0.75 л"),
		"a title that already names a volume is left alone")
	require.Equal(t, "Вино красное", titleWithVolume("Вино красное", ""))
	require.Equal(t, "", titleWithVolume("", "0.75 л"))

	once := titleWithVolume("Виски", "0.7 л")
	require.Equal(t, once, titleWithVolume(once, "0.7 л"), "appending is idempotent")
}

func TestExtractVolumeFallsBackToSubname(t *testing.T) {
	raw := catalog.Raw{"subname": "Крепость 40% 0,7 л подарочная"}
	require.Equal(t, "0,7 л", extractVolume(raw))

	raw = catalog.Raw{"subname": "без указания объема"}
	require.Equal(t, "", extractVolume(raw))
}

func TestExtractBrandPrecedence(t *testing.T) {
	withLabel := catalog.Raw{
		"name": "Jameson 0.7",
		"filter_labels": []any{
			map[string]any{"filter": "brend", "title": "Jameson"},
		},
	}
	require.Equal(t, "Jameson", extractBrand(withLabel))

	fromName := catalog.Raw{"name": "Jameson 0.7"}
	require.Equal(t, "Jameson", extractBrand(fromName))

	require.Equal(t, "", extractBrand(catalog.Raw{}))
}

func TestDetailBrandBlockWins(t *testing.T) {
	detail := catalog.Raw{
		"name": "Jameson 0.7",
		"description_blocks": []any{
			map[string]any{"code": "brend", "values": []any{map[string]any{"name": "Jameson Irish Whiskey"}}},
		},
		"filter_labels": []any{
			map[string]any{"filter": "brend", "title": "Jameson"},
		},
	}
	require.Equal(t, "Jameson Irish Whiskey", detailBrand(detail))
}

func TestExtractPriceSaleTag(t *testing.T) {
	p := extractPrice(catalog.Raw{"price": 80.0, "prev_price": 100.0})
	require.Equal(t, "Скидка 20%", p.SaleTag)

	p = extractPrice(catalog.Raw{"price": 100.0})
	require.Equal(t, 100.0, p.Original, "original mirrors current when no previous price")
	require.Equal(t, "", p.SaleTag)

	p = extractPrice(catalog.Raw{})
	require.Equal(t, 0.0, p.Current)
	require.Equal(t, 0.0, p.Original)
	require.Equal(t, "", p.SaleTag)

	p = extractPrice(catalog.Raw{"price": 437.0, "prev_price": 509.0})
	require.Equal(t, "Скидка 14%", p.SaleTag, "percentage rounds to the nearest integer")
}

func TestCountVariants(t *testing.T) {
	rangeBlock := catalog.Raw{
		"description_blocks": []any{
			map[string]any{"code": "obem", "min": 0.5, "max": 1.0},
		},
	}
	require.Equal(t, 2, countVariants(rangeBlock))

	distinct := catalog.Raw{
		"description_blocks": []any{
			map[string]any{"code": "obem", "min": 0.5, "max": 0.5},
			map[string]any{"code": "obem", "min": 0.7, "max": 0.7},
			map[string]any{"code": "obem", "min": 1.0, "max": 1.0},
		},
	}
	require.Equal(t, 3, countVariants(distinct))

	single := catalog.Raw{
		"description_blocks": []any{
			map[string]any{"code": "obem", "min": 0.5, "max": 0.5},
		},
	}
	require.Equal(t, 0, countVariants(single))

	require.Equal(t, 0, countVariants(catalog.Raw{}))
}

func TestMarketingTagsDedupe(t *testing.T) {
	raw := catalog.Raw{
		"new":          true,
		"gift_package": true,
		"action_labels": []any{
			map[string]any{"name": "Новинка"},
			map[string]any{"text": "Скидка недели"},
		},
	}
	require.Equal(t,
		[]string{"Новинка", "Подарочная упаковка", "Скидка недели"},
		marketingTags(raw))
}

func TestDetailMetadataExtras(t *testing.T) {
	detail := catalog.Raw{
		"subname":        "резервное описание",
		"uuid":           "abc",
		"country_name":   "Ирландия",
		"country_code":   "IE",
		"gift_package":   false,
		"offline_price":  437.0,
		"quantity_total": 12.0,
		"description_blocks": []any{
			map[string]any{"code": "strana", "values": []any{map[string]any{"name": "Шотландия"}}},
			map[string]any{"title": "Выдержка", "values": []any{map[string]any{"name": "12 лет"}}},
		},
	}

	meta := detailMetadata(detail)

	require.Equal(t, "резервное описание", meta["__description"], "subtitle fills in when no description block exists")
	require.Equal(t, "Шотландия", meta["Страна"], "characteristic block beats the scalar country field")
	require.Equal(t, "IE", meta["Код страны"])
	require.Equal(t, "Нет", meta["Подарочная упаковка"])
	require.Equal(t, "437", meta["Офлайн цена"])
	require.Equal(t, "12", meta["Общее количество"])
	require.Equal(t, "12 лет", meta["Выдержка"], "unknown titled blocks keep their own title as key")
}
