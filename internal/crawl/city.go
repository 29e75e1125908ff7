package crawl

import (
	"context"

	"go.uber.org/zap"

	"alkoteka-crawler/internal/catalog"
	"alkoteka-crawler/internal/fetch"
)

// resolveCity pages through the city API looking for the configured
// display name and returns its region identifier. Any failure at any
// page degrades to the configured seed identifier; resolution never
// retries and never fails the run.
func (e *Engine) resolveCity(ctx context.Context) string {
	seen := map[catalog.City]struct{}{}
	page := 1

	for {
		resp, err := e.client.Fetch(ctx, fetch.Request{URL: e.cityURL(page)})
		if err != nil {
			e.logger.Error("city api request failed, falling back to seed uuid", zap.Error(err))
			return e.cfg.SeedCityUUID
		}
		if resp.StatusCode != 200 {
			e.logger.Error("city api returned unexpected status, falling back to seed uuid",
				zap.Int("status", resp.StatusCode))
			return e.cfg.SeedCityUUID
		}
		cities, meta, err := decodeList(resp.Body)
		if err != nil {
			e.logger.Error("city api payload unreadable, falling back to seed uuid", zap.Error(err))
			return e.cfg.SeedCityUUID
		}

		for _, raw := range cities {
			city := catalog.City{
				Name: raw.Str("name"),
				UUID: raw.Str("uuid"),
				Slug: raw.Str("slug"),
			}
			if _, ok := seen[city]; !ok {
				seen[city] = struct{}{}
			}
			if city.Name == e.cfg.TargetCity && city.UUID != "" {
				e.citiesFound = len(seen)
				e.logger.Info("resolved target city",
					zap.String("city", city.Name),
					zap.String("uuid", city.UUID),
					zap.Int("cities_discovered", len(seen)))
				return city.UUID
			}
		}

		e.logger.Debug("city api page processed",
			zap.Int("page", meta.CurrentPage),
			zap.Int("cities_collected", len(seen)))

		if !meta.HasMorePages {
			break
		}
		page++
	}

	e.citiesFound = len(seen)
	e.logger.Warn("target city not found, falling back to seed uuid",
		zap.String("city", e.cfg.TargetCity),
		zap.Int("cities_discovered", len(seen)))
	return e.cfg.SeedCityUUID
}
