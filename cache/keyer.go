package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Keyer generates deterministic cache keys from an operation's identity
// (scope + name) and its arguments.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from the operation identity and arguments.
	Key(scope, name string, args ...any) (string, error)
}

// KeyFunc derives a cache key directly from the arguments, bypassing the
// Keyer. A KeyFunc that omits relevant arguments shares entries incorrectly;
// that is a caller contract, not a library defect.
type KeyFunc func(args ...any) (string, error)

// DefaultKeyer hashes the canonical JSON form of the arguments with xxhash.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: cache:<scope>.<name>:<hash>
// where hash is xxhash64 of the canonical JSON of the arguments.
func (k *DefaultKeyer) Key(scope, name string, args ...any) (string, error) {
	canonical, err := canonicalizeArgs(args)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize arguments: %w", err)
	}

	sum := xxhash.Sum64(canonical)
	return fmt.Sprintf("cache:%s.%s:%s", scope, name, strconv.FormatUint(sum, 16)), nil
}

// SHA256Keyer hashes the canonical JSON form of the arguments with SHA-256.
// Slower than DefaultKeyer but collision-hardened; useful when keys feed
// into shared namespaces.
type SHA256Keyer struct{}

// NewSHA256Keyer creates a new SHA-256 keyer.
func NewSHA256Keyer() *SHA256Keyer {
	return &SHA256Keyer{}
}

// Key generates a deterministic cache key using the first 8 bytes of
// SHA-256 (16 hex characters).
func (k *SHA256Keyer) Key(scope, name string, args ...any) (string, error) {
	canonical, err := canonicalizeArgs(args)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize arguments: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("cache:%s.%s:%s", scope, name, hex.EncodeToString(sum[:8])), nil
}

func canonicalizeArgs(args []any) ([]byte, error) {
	if len(args) == 0 {
		return []byte("[]"), nil
	}
	return canonicalizeSlice(args)
}

// canonicalize produces a deterministic JSON representation of the value.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// For other types, use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure both keyers implement Keyer
var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = (*SHA256Keyer)(nil)
)
