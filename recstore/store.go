package recstore

import (
	"log/slog"
	"sort"
	"strings"
)

// KeyDelimiter separates storage keys in delimited key strings.
const KeyDelimiter = "|"

// Store is the top-level router over configured providers. It owns a
// provider-key to Provider mapping (a nil Provider means the key is known
// but not configured), an alias map, and the default key list. It is
// read-only after construction and holds no record logic of its own.
type Store struct {
	providers map[string]Provider
	aliases   map[string]string
	defaults  []string
	log       *slog.Logger
}

// StoreConfig carries the routing tables for NewStore.
type StoreConfig struct {
	Aliases  map[string]string
	Defaults []string
	Logger   *slog.Logger
}

// NewStore builds a Store. The providers map defines the set of known keys;
// entries with a nil value are recognized but disabled.
func NewStore(providers map[string]Provider, cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := &Store{
		providers: make(map[string]Provider, len(providers)),
		aliases:   make(map[string]string, len(cfg.Aliases)),
		log:       logger,
	}
	for k, p := range providers {
		st.providers[k] = p
	}
	for alias, key := range cfg.Aliases {
		st.aliases[alias] = key
	}
	st.defaults = st.ResolveKeys(cfg.Defaults...)
	return st
}

// Provider returns the provider for a key (aliases resolved). Unknown or
// disabled keys yield an invalid-storage error.
func (st *Store) Provider(key string) (Provider, error) {
	resolved := st.resolveOne(key)
	p, ok := st.providers[resolved]
	if !ok || p == nil {
		return nil, InvalidStorageError(key)
	}
	return p, nil
}

// ResolveKeys expands delimiter-separated key strings, maps aliases, and
// filters the result to keys that are both known and enabled. Order is
// preserved; duplicates are kept once.
func (st *Store) ResolveKeys(keys ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, token := range splitKeys(keys) {
		resolved := st.resolveOne(token)
		if seen[resolved] {
			continue
		}
		if p, ok := st.providers[resolved]; ok && p != nil {
			seen[resolved] = true
			out = append(out, resolved)
		}
	}
	return out
}

// IsValidStorage reports whether every given key is recognized, either as a
// provider key or an alias. An empty input is not valid.
func (st *Store) IsValidStorage(keys ...string) bool {
	tokens := splitKeys(keys)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if _, ok := st.providers[token]; ok {
			continue
		}
		if _, ok := st.aliases[token]; ok {
			continue
		}
		return false
	}
	return true
}

// IsEnabledStorage reports whether every given key resolves to a configured,
// non-nil provider. An empty input is not enabled.
func (st *Store) IsEnabledStorage(keys ...string) bool {
	tokens := splitKeys(keys)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		p, ok := st.providers[st.resolveOne(token)]
		if !ok || p == nil {
			return false
		}
	}
	return true
}

// DefaultKeys returns the resolved default provider keys.
func (st *Store) DefaultKeys() []string {
	out := make([]string, len(st.defaults))
	copy(out, st.defaults)
	return out
}

// ValidStorage lists all known provider keys, sorted.
func (st *Store) ValidStorage() []string {
	out := make([]string, 0, len(st.providers))
	for k := range st.providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EnabledStorage lists all configured provider keys, sorted.
func (st *Store) EnabledStorage() []string {
	out := make([]string, 0, len(st.providers))
	for k, p := range st.providers {
		if p != nil {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Close closes every enabled provider, returning the first error seen.
func (st *Store) Close() error {
	var firstErr error
	for key, p := range st.providers {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil && firstErr == nil {
			st.log.Error("closing provider", "key", key, "error", err)
			firstErr = err
		}
	}
	return firstErr
}

func (st *Store) resolveOne(key string) string {
	if mapped, ok := st.aliases[key]; ok {
		return mapped
	}
	return key
}

func splitKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		for _, token := range strings.Split(k, KeyDelimiter) {
			token = strings.TrimSpace(token)
			if token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}
