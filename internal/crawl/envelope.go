package crawl

import (
	"encoding/json"
	"fmt"

	"alkoteka-crawler/internal/catalog"
)

// envelope is the wrapper every catalog API response arrives in. The
// results member is an array for list/city endpoints and an object for
// the detail endpoint, so it stays raw until the caller picks a shape.
type envelope struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results"`
	Meta    pageMeta        `json:"meta"`
}

type pageMeta struct {
	CurrentPage  int  `json:"current_page"`
	HasMorePages bool `json:"has_more_pages"`
	Total        int  `json:"total"`
	PerPage      int  `json:"per_page"`
}

// decodeList parses a paginated response carrying an array of records.
func decodeList(body []byte) ([]catalog.Raw, pageMeta, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, pageMeta{}, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, pageMeta{}, fmt.Errorf("api reported success=false")
	}
	var results []catalog.Raw
	if len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, &results); err != nil {
			return nil, pageMeta{}, fmt.Errorf("decode results: %w", err)
		}
	}
	return results, env.Meta, nil
}

// decodeDetail parses a detail response carrying a single record.
func decodeDetail(body []byte) (catalog.Raw, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("api reported success=false")
	}
	var result catalog.Raw
	if len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, &result); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
	}
	return result, nil
}
