package postprocessors

import (
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexrag/internal/postprocessors/metadata"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("metadata", func(map[string]any) (driven.PostProcessor, error) {
		return metadata.New(), nil
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_chunk_size (int): Upper bound on chunk characters (default: 1000)
//   - min_chunk_length (int): Chunks shorter than this are dropped (default: 50)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "max_chunk_size"); ok {
		opts = append(opts, chunker.WithMaxChunkSize(size))
	}
	if minLen, ok := getIntFromConfig(cfg, "min_chunk_length"); ok {
		opts = append(opts, chunker.WithMinChunkLength(minLen))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
