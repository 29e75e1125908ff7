package proxy

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// loadList reads proxy addresses from a newline-delimited file, falling
// back to the inline list when the file is absent or yields nothing.
// Blank lines and '#' comments are ignored; addresses without a scheme
// default to http.
func loadList(path string, inline []string) ([]string, error) {
	var pool []string

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				if addr := normalize(scanner.Text()); addr != "" {
					pool = append(pool, addr)
				}
			}
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("read proxy list %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to the inline list
		default:
			return nil, fmt.Errorf("open proxy list %s: %w", path, err)
		}
	}

	if len(pool) == 0 {
		for _, addr := range inline {
			if normalized := normalize(addr); normalized != "" {
				pool = append(pool, normalized)
			}
		}
	}
	return pool, nil
}

// normalize trims one proxy line, skips comments, and ensures a scheme.
// Only http, https, socks4, and socks5 proxies are accepted.
func normalize(line string) string {
	addr := strings.TrimSpace(line)
	if addr == "" || strings.HasPrefix(addr, "#") {
		return ""
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	for _, scheme := range []string{"http://", "https://", "socks4://", "socks5://"} {
		if strings.HasPrefix(addr, scheme) {
			return addr
		}
	}
	return ""
}
