package watch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Watchlist is the on-disk list of symbols refreshed by the Watcher.
//
//	symbols: [RELIANCE.NS, BTC, AAPL]
type Watchlist struct {
	Symbols []string `yaml:"symbols"`
}

// LoadWatchlist reads a YAML watchlist file.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}
	wl.Symbols = Dedupe(wl.Symbols)
	return &wl, nil
}

// Save writes the watchlist to path as YAML.
func (w *Watchlist) Save(path string) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return nil
}

// Dedupe joins symbol lists, dropping blanks and case-insensitive repeats
// while keeping first-seen order.
func Dedupe(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := strings.ToUpper(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
