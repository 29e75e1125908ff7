// Package extract converts raw catalog API records into canonical
// Products. The API serves two shapes for the same product: a compact
// list entry and a richer detail object with characteristic blocks.
// FromList handles the former; FromDetail merges the latter with its
// paired list entry, preferring the structured detail data.
package extract

import (
	"math"
	"regexp"
	"strings"
	"time"

	"alkoteka-crawler/internal/catalog"
)

// Characteristic block codes used by the detail API.
const (
	blockVolume       = "obem"
	blockStrength     = "krepost"
	blockManufacturer = "proizvoditel"
	blockBrand        = "brend"
	blockCountry      = "strana"
	blockPackageType  = "vid-upakovki"
)

// Filter label types shared by list and detail payloads.
const (
	filterBrand      = "brend"
	filterVolume     = "obem"
	filterCountry    = "strana"
	filterAdditional = "dopolnitelno"
)

var (
	// volumeInTitle detects a volume already present in a product name,
	// in any of the unit spellings the catalog uses.
	volumeInTitle = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:л|л\.|мл|ml|l|литр|миллилитр)`)

	// subnameVolume pulls a volume out of free-form subtitle text. The
	// trailing alternation stands in for a word boundary, which RE2 does
	// not honor after Cyrillic letters.
	subnameVolume = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*(?:л\.?|мл|ml|l))(?:[^\pL\pN]|$)`)

	// brandFromName captures the leading word run of a product name up to
	// the first digit or a generic category token.
	brandFromName = regexp.MustCompile(`(?i)^([A-Za-zА-Яа-я\s]+?)(?:\s+\d+|\s+пиво|\s+вино)`)
)

// now is swapped out in tests.
var now = time.Now

// FromList builds a Product from a list-shaped record.
func FromList(raw catalog.Raw) catalog.Product {
	p := catalog.Product{
		Timestamp:     now().Unix(),
		RPC:           raw.Stringify("uuid"),
		URL:           raw.Str("product_url"),
		Title:         titleWithVolume(raw.Str("name"), extractVolume(raw)),
		MarketingTags: marketingTags(raw),
		Brand:         extractBrand(raw),
		Section:       extractSection(raw),
		Price:         extractPrice(raw),
		Stock:         extractStock(raw),
		Assets:        extractAssets(raw),
		Metadata:      listMetadata(raw),
		Variants:      0,
	}
	return p
}

// FromDetail builds a Product from a detail-shaped record paired with
// the list record it was discovered through. Structured detail data
// wins field by field; an empty detail record degrades to FromList.
func FromDetail(detail, list catalog.Raw) catalog.Product {
	if len(detail) == 0 {
		return FromList(list)
	}

	p := catalog.Product{
		Timestamp: now().Unix(),
		RPC:       detail.Stringify("uuid"),
		URL:       list.Str("product_url"),
		Title:     titleWithVolume(detail.Str("name"), detailVolume(detail)),
		Brand:     detailBrand(detail),
		Section:   extractSection(detail),
		Price:     extractPrice(detail),
		Stock:     extractStock(detail),
		Assets:    extractAssets(detail),
		Metadata:  detailMetadata(detail),
		Variants:  countVariants(detail),
	}

	tags := marketingTags(detail)
	for _, label := range detail.Maps("filter_labels") {
		if label.Str("filter") != filterAdditional {
			continue
		}
		if title := label.Str("title"); title != "" {
			tags = appendUnique(tags, title)
		}
	}
	p.MarketingTags = tags

	return p
}

// titleWithVolume appends ", <volume>" to a base name unless the name
// already carries a volume. Idempotent by construction: the appended
// volume matches volumeInTitle on the next pass.
func titleWithVolume(name, volume string) string {
	if name == "" || volume == "" {
		return name
	}
	if volumeInTitle.MatchString(name) {
		return name
	}
	return name + ", " + volume
}

// detailVolume prefers the volume characteristic block's minimum over
// the fallback label/subtitle sources.
func detailVolume(detail catalog.Raw) string {
	for _, block := range detail.Maps("description_blocks") {
		if block.Str("code") != blockVolume {
			continue
		}
		if min, ok := block.Float("min"); ok {
			return catalog.FormatNumber(min) + " л"
		}
		break
	}
	return extractVolume(detail)
}

// extractVolume looks for a volume in the filter labels, then in the
// subtitle text.
func extractVolume(raw catalog.Raw) string {
	for _, label := range raw.Maps("filter_labels") {
		if label.Str("filter") == filterVolume {
			return label.Str("title")
		}
	}
	if subname := raw.Str("subname"); subname != "" {
		if m := subnameVolume.FindStringSubmatch(subname); m != nil {
			return m[1]
		}
	}
	return ""
}

// detailBrand prefers the brand characteristic block's first value over
// the shared label/regex fallback.
func detailBrand(detail catalog.Raw) string {
	for _, block := range detail.Maps("description_blocks") {
		if block.Str("code") != blockBrand {
			continue
		}
		if values := block.Maps("values"); len(values) > 0 {
			if name := values[0].Str("name"); name != "" {
				return name
			}
		}
		break
	}
	return extractBrand(detail)
}

// extractBrand falls back from a brand filter label to a heuristic over
// the product name, then to "".
func extractBrand(raw catalog.Raw) string {
	for _, label := range raw.Maps("filter_labels") {
		if label.Str("filter") == filterBrand {
			return label.Str("title")
		}
	}
	if name := raw.Str("name"); name != "" {
		if m := brandFromName.FindStringSubmatch(name); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractSection builds [parent category, category], omitting absent
// levels.
func extractSection(raw catalog.Raw) []string {
	section := []string{}
	category := raw.Map("category")
	if parent := category.Map("parent"); parent != nil {
		if name := parent.Str("name"); name != "" {
			section = append(section, name)
		}
	}
	if name := category.Str("name"); name != "" {
		section = append(section, name)
	}
	return section
}

func extractPrice(raw catalog.Raw) catalog.PriceData {
	current := raw.FloatOr("price", 0)
	original := raw.FloatOr("prev_price", 0)
	if original == 0 {
		original = current
	}

	price := catalog.PriceData{Current: current, Original: original}
	if original > current && original > 0 {
		percent := math.Round((original - current) / original * 100)
		price.SaleTag = "Скидка " + catalog.FormatNumber(percent) + "%"
	}
	return price
}

func extractStock(raw catalog.Raw) catalog.Stock {
	count := raw.Int("quantity")
	if count == 0 {
		count = raw.Int("quantity_total")
	}
	return catalog.Stock{
		InStock: raw.Bool("available"),
		Count:   count,
	}
}

func extractAssets(raw catalog.Raw) catalog.Assets {
	main := raw.Str("image_url")
	assets := catalog.Assets{
		MainImage: main,
		SetImages: []string{},
		View360:   []string{},
		Video:     []string{},
	}
	if main != "" {
		assets.SetImages = []string{main}
	}
	return assets
}

// marketingTags collects the boolean promo flags and action labels
// shared by both payload shapes, deduplicated in first-seen order.
func marketingTags(raw catalog.Raw) []string {
	tags := []string{}
	flags := []struct {
		key   string
		label string
	}{
		{"new", "Новинка"},
		{"recomended", "Рекомендуемое"},
		{"axioma", "Axioma"},
		{"enogram", "Enogram"},
		{"gift_package", "Подарочная упаковка"},
	}
	for _, f := range flags {
		if raw.Bool(f.key) {
			tags = append(tags, f.label)
		}
	}
	for _, label := range raw.Maps("action_labels") {
		name := label.Str("name")
		if name == "" {
			name = label.Str("text")
		}
		if name == "" {
			name = label.Str("title")
		}
		if name != "" {
			tags = appendUnique(tags, name)
		}
	}
	return tags
}

// countVariants infers a variant count from the volume characteristic
// block: a distinct min/max range means at least two variants, multiple
// distinct single values count individually, anything else is zero.
func countVariants(detail catalog.Raw) int {
	volumes := map[float64]struct{}{}
	for _, block := range detail.Maps("description_blocks") {
		if block.Str("code") != blockVolume {
			continue
		}
		min, minOK := block.Float("min")
		max, maxOK := block.Float("max")
		if maxOK && (!minOK || min != max) {
			return 2
		}
		if minOK {
			volumes[min] = struct{}{}
		}
	}
	if len(volumes) > 1 {
		return len(volumes)
	}
	return 0
}

func appendUnique(tags []string, tag string) []string {
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}
