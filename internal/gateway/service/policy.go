package service

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"gopkg.in/yaml.v3"
)

// TTLPair is how long a cached result is fresh (Soft) and how long it may be
// served at all (Hard).
type TTLPair struct {
	Soft time.Duration `yaml:"soft"`
	Hard time.Duration `yaml:"hard"`
}

func (p TTLPair) Validate() error {
	if p.Soft <= 0 {
		return errors.New("soft ttl must be positive")
	}
	if p.Soft >= p.Hard {
		return fmt.Errorf("soft ttl %s must be shorter than hard ttl %s", p.Soft, p.Hard)
	}
	return nil
}

// CachePolicy is the per-search-type TTL table. Unlisted types use Default.
//
// The YAML form is:
//
//	default: {soft: 5m, hard: 1h}
//	types:
//	  flights: {soft: 2m, hard: 30m}
type CachePolicy struct {
	Default TTLPair                       `yaml:"default"`
	Types   map[domain.SearchType]TTLPair `yaml:"types"`
}

func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		Default: TTLPair{Soft: 5 * time.Minute, Hard: time.Hour},
		Types: map[domain.SearchType]TTLPair{
			domain.SearchFlights:  {Soft: 2 * time.Minute, Hard: 30 * time.Minute},
			domain.SearchHotels:   {Soft: 10 * time.Minute, Hard: 2 * time.Hour},
			domain.SearchPackages: {Soft: 15 * time.Minute, Hard: 4 * time.Hour},
		},
	}
}

// For returns the TTL pair of searchType.
func (p CachePolicy) For(searchType domain.SearchType) TTLPair {
	if pair, ok := p.Types[searchType]; ok {
		return pair
	}
	return p.Default
}

func (p CachePolicy) Validate() error {
	if err := p.Default.Validate(); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	for t, pair := range p.Types {
		if err := pair.Validate(); err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
	}
	return nil
}

// ParseCachePolicy overlays the YAML in data on the defaults and validates
// the result.
func ParseCachePolicy(data []byte) (CachePolicy, error) {
	var raw CachePolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return CachePolicy{}, fmt.Errorf("parse cache policy: %w", err)
	}

	p := DefaultCachePolicy()
	if raw.Default != (TTLPair{}) {
		p.Default = raw.Default
	}
	maps.Copy(p.Types, raw.Types)

	if err := p.Validate(); err != nil {
		return CachePolicy{}, fmt.Errorf("invalid cache policy: %w", err)
	}
	return p, nil
}

// LoadCachePolicy reads a policy file. An empty path yields the defaults.
func LoadCachePolicy(path string) (CachePolicy, error) {
	if path == "" {
		return DefaultCachePolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return CachePolicy{}, fmt.Errorf("read cache policy: %w", err)
	}
	return ParseCachePolicy(data)
}
