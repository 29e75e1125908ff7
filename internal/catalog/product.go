// Package catalog defines the canonical product schema emitted by the
// crawler and the loosely typed raw-record access helpers used while
// extracting it.
package catalog

// Product is the normalized record produced for every catalog entry.
// Field names and JSON tags match the downstream feed contract.
type Product struct {
	Timestamp     int64             `json:"timestamp"`
	RPC           string            `json:"RPC"`
	URL           string            `json:"url"`
	Title         string            `json:"title"`
	MarketingTags []string          `json:"marketing_tags"`
	Brand         string            `json:"brand"`
	Section       []string          `json:"section"`
	Price         PriceData         `json:"price_data"`
	Stock         Stock             `json:"stock"`
	Assets        Assets            `json:"assets"`
	Metadata      map[string]string `json:"metadata"`
	Variants      int               `json:"variants"`
}

// PriceData carries current and pre-discount prices plus the rendered
// discount annotation.
type PriceData struct {
	Current  float64 `json:"current"`
	Original float64 `json:"original"`
	SaleTag  string  `json:"sale_tag"`
}

// Stock reports availability for the configured region.
type Stock struct {
	InStock bool `json:"in_stock"`
	Count   int  `json:"count"`
}

// Assets groups the media attached to a product.
type Assets struct {
	MainImage string   `json:"main_image"`
	SetImages []string `json:"set_images"`
	View360   []string `json:"view360"`
	Video     []string `json:"video"`
}

// City is one entry discovered while resolving the target region.
type City struct {
	Name string
	UUID string
	Slug string
}
