package extract

import "alkoteka-crawler/internal/catalog"

// Metadata keys as they appear in the downstream feed. The catalog is a
// Russian storefront, so the keys stay in Russian.
const (
	metaDescription  = "__description"
	metaVolume       = "Объем"
	metaStrength     = "Крепость"
	metaManufacturer = "Производитель"
	metaBrand        = "Бренд"
	metaCountry      = "Страна"
	metaPackage      = "Вид упаковки"
	metaSKU          = "Артикул"
	metaCountryCode  = "Код страны"
	metaUUID         = "UUID"
	metaTotalQty     = "Общее количество"
	metaGiftWrap     = "Подарочная упаковка"
	metaOfflinePrice = "Офлайн цена"
)

// listMetadata builds the reduced metadata available on list records:
// subtitle as description, a few scalar extras, and the country/volume
// filter labels.
func listMetadata(raw catalog.Raw) map[string]string {
	meta := map[string]string{
		metaDescription: raw.Str("subname"),
	}

	if raw.Has("vendor_code") {
		if code := raw.Stringify("vendor_code"); code != "" {
			meta[metaSKU] = code
		}
	}
	if uuid := raw.Str("uuid"); uuid != "" {
		meta[metaUUID] = uuid
	}
	if total := raw.Int("quantity_total"); total != 0 {
		meta[metaTotalQty] = catalog.FormatNumber(float64(total))
	}

	for _, label := range raw.Maps("filter_labels") {
		title := label.Str("title")
		if title == "" {
			continue
		}
		switch label.Str("filter") {
		case filterCountry:
			meta[metaCountry] = title
		case filterVolume:
			meta[metaVolume] = title
		}
	}

	return meta
}

// detailMetadata builds the full metadata map from a detail record:
// description text block, every characteristic block, and the scalar
// extras. Known block codes map to fixed keys; any other titled block
// stores its first value under its own title.
func detailMetadata(detail catalog.Raw) map[string]string {
	meta := map[string]string{}

	for _, block := range detail.Maps("text_blocks") {
		if block.Str("title") == "Описание" {
			meta[metaDescription] = block.Str("content")
			break
		}
	}
	if _, ok := meta[metaDescription]; !ok {
		meta[metaDescription] = detail.Str("subname")
	}

	for _, block := range detail.Maps("description_blocks") {
		applyBlock(meta, block)
	}

	if detail.Has("vendor_code") {
		if code := detail.Stringify("vendor_code"); code != "" {
			meta[metaSKU] = code
		}
	}
	if name := detail.Str("country_name"); name != "" {
		if _, ok := meta[metaCountry]; !ok {
			meta[metaCountry] = name
		}
	}
	if code := detail.Stringify("country_code"); code != "" {
		meta[metaCountryCode] = code
	}
	if uuid := detail.Str("uuid"); uuid != "" {
		meta[metaUUID] = uuid
	}
	if total := detail.Int("quantity_total"); total != 0 {
		meta[metaTotalQty] = catalog.FormatNumber(float64(total))
	}
	if detail.Has("gift_package") {
		if detail.Bool("gift_package") {
			meta[metaGiftWrap] = "Да"
		} else {
			meta[metaGiftWrap] = "Нет"
		}
	}
	if price, ok := detail.Float("offline_price"); ok && price != 0 {
		meta[metaOfflinePrice] = catalog.FormatNumber(price)
	}

	return meta
}

func applyBlock(meta map[string]string, block catalog.Raw) {
	switch block.Str("code") {
	case blockVolume:
		if min, ok := block.Float("min"); ok {
			meta[metaVolume] = catalog.FormatNumber(min) + " л"
		}
	case blockStrength:
		if min, ok := block.Float("min"); ok {
			meta[metaStrength] = catalog.FormatNumber(min) + "%"
		}
	case blockManufacturer:
		setFirstValueName(meta, metaManufacturer, block)
	case blockBrand:
		setFirstValueName(meta, metaBrand, block)
	case blockCountry:
		setFirstValueName(meta, metaCountry, block)
	case blockPackageType:
		setFirstValueName(meta, metaPackage, block)
	default:
		title := block.Str("title")
		if title == "" {
			return
		}
		values := block.Slice("values")
		if len(values) == 0 {
			return
		}
		if obj, ok := values[0].(map[string]any); ok {
			meta[title] = catalog.Raw(obj).Str("name")
		} else {
			meta[title] = catalog.Stringify(values[0])
		}
	}
}

func setFirstValueName(meta map[string]string, key string, block catalog.Raw) {
	if values := block.Maps("values"); len(values) > 0 {
		meta[key] = values[0].Str("name")
	}
}
