package crawl

import (
	"bufio"
	"os"
	"strings"

	"go.uber.org/zap"
)

// defaultCategories are crawled when no category file is configured.
var defaultCategories = []string{
	"https://alkoteka.com/catalog/slaboalkogolnye-napitki-2",
	"https://alkoteka.com/catalog/vino",
	"https://alkoteka.com/catalog/krepkiy-alkogol",
}

// loadCategories returns the category URLs to crawl: the configured
// file when it yields entries, then the configured inline list, then
// the built-in defaults. Blank lines and '#' comments are ignored.
func (e *Engine) loadCategories() []string {
	if e.cfg.CategoriesFile != "" {
		urls, err := readCategoryFile(e.cfg.CategoriesFile)
		switch {
		case err != nil:
			e.logger.Warn("failed to read categories file, using defaults",
				zap.String("path", e.cfg.CategoriesFile), zap.Error(err))
		case len(urls) > 0:
			e.logger.Info("loaded categories from file",
				zap.String("path", e.cfg.CategoriesFile), zap.Int("categories", len(urls)))
			return urls
		}
	}
	if len(e.cfg.Categories) > 0 {
		return e.cfg.Categories
	}
	return defaultCategories
}

func readCategoryFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// categorySlug extracts the slug from a catalog URL shaped
// ".../catalog/<slug>". It returns "" when the URL has no catalog path.
func categorySlug(rawURL string) string {
	parts := strings.Split(strings.TrimRight(rawURL, "/"), "/")
	for i, part := range parts {
		if part == "catalog" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
