// Package pipeline post-processes every extracted Product before it is
// handed to a sink. Two ordered stages run unconditionally: Validate
// fills structural gaps with typed defaults, Clean normalizes the
// values. Neither stage ever rejects a record; data quality degrades to
// defaults instead.
package pipeline

import (
	"strings"

	"alkoteka-crawler/internal/catalog"
)

// Process runs Validate then Clean in place.
func Process(p *catalog.Product) {
	Validate(p)
	Clean(p)
}

// Validate ensures every collection field, top-level and nested, is
// present: nil slices and maps become empty ones and the metadata map
// always carries a description entry.
func Validate(p *catalog.Product) {
	if p.MarketingTags == nil {
		p.MarketingTags = []string{}
	}
	if p.Section == nil {
		p.Section = []string{}
	}
	if p.Assets.SetImages == nil {
		p.Assets.SetImages = []string{}
	}
	if p.Assets.View360 == nil {
		p.Assets.View360 = []string{}
	}
	if p.Assets.Video == nil {
		p.Assets.Video = []string{}
	}
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	if _, ok := p.Metadata["__description"]; !ok {
		p.Metadata["__description"] = ""
	}
}

// Clean trims whitespace on text fields, deduplicates the tag and image
// lists preserving first-seen order, and clamps negative numeric fields
// to zero.
func Clean(p *catalog.Product) {
	p.RPC = strings.TrimSpace(p.RPC)
	p.URL = strings.TrimSpace(p.URL)
	p.Title = strings.TrimSpace(p.Title)
	p.Brand = strings.TrimSpace(p.Brand)

	p.MarketingTags = dedupe(p.MarketingTags)
	p.Assets.SetImages = dedupe(p.Assets.SetImages)

	if p.Price.Current < 0 {
		p.Price.Current = 0
	}
	if p.Price.Original < 0 {
		p.Price.Original = 0
	}
	if p.Stock.Count < 0 {
		p.Stock.Count = 0
	}
	if p.Variants < 0 {
		p.Variants = 0
	}
}

// dedupe removes duplicates keeping the first occurrence of each value.
func dedupe(items []string) []string {
	if len(items) < 2 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
