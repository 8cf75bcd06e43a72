package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Embedder defaults.
const (
	DefaultEmbeddingDimensions = 768
	DefaultMaxEmbedTextLength  = 8000
	DefaultEmbedTimeout        = 30 * time.Second
)

// Embedding is a vector plus whether it came from the fallback path.
type Embedding struct {
	Vector []float32

	// Degraded vectors are deterministic noise with the right length.
	// They keep storage consistent but must never be ranked.
	Degraded bool
}

// EmbedderConfig configures a ResilientEmbedder.
// Zero values take the defaults above.
type EmbedderConfig struct {
	Dimensions    int
	MaxTextLength int
	Timeout       time.Duration
}

// ResilientEmbedder wraps an optional EmbeddingService and guarantees a
// vector of fixed length for every input.
type ResilientEmbedder struct {
	backend driven.EmbeddingService
	dims    int
	maxLen  int
	timeout time.Duration
}

// NewResilientEmbedder creates an embedder. backend may be nil, in which
// case every Embed call degrades.
func NewResilientEmbedder(backend driven.EmbeddingService, cfg EmbedderConfig) *ResilientEmbedder {
	dims := cfg.Dimensions
	if dims <= 0 && backend != nil {
		dims = backend.Dimensions()
	}
	if dims <= 0 {
		dims = DefaultEmbeddingDimensions
	}
	maxLen := cfg.MaxTextLength
	if maxLen <= 0 {
		maxLen = DefaultMaxEmbedTextLength
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}
	return &ResilientEmbedder{
		backend: backend,
		dims:    dims,
		maxLen:  maxLen,
		timeout: timeout,
	}
}

// Dimensions returns the fixed output length.
func (e *ResilientEmbedder) Dimensions() int {
	return e.dims
}

// Available reports whether a real embedding backend is configured.
func (e *ResilientEmbedder) Available() bool {
	return e.backend != nil
}

// Embed returns a vector of exactly Dimensions() components. Backend
// failures, timeouts and wrong-length answers degrade to FallbackVector.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) Embedding {
	prepared := e.prepare(text)

	vec, err := withFallback(
		func() ([]float32, error) { return e.embedPrepared(ctx, prepared) },
		func() []float32 { return FallbackVector(prepared, e.dims) },
	)
	if err != nil {
		logger.Warn("embedding fallback (%d dims): %v", e.dims, err)
		return Embedding{Vector: vec, Degraded: true}
	}
	return Embedding{Vector: vec}
}

// EmbedStrict is Embed without the fallback. Query-time callers use it
// so that a degraded vector is never ranked against the store.
func (e *ResilientEmbedder) EmbedStrict(ctx context.Context, text string) ([]float32, error) {
	return e.embedPrepared(ctx, e.prepare(text))
}

func (e *ResilientEmbedder) embedPrepared(ctx context.Context, text string) ([]float32, error) {
	if e.backend == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vec, err := e.backend.Embed(callCtx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vec) != e.dims {
		return nil, fmt.Errorf("%w: model returned %d, want %d", domain.ErrDimensionMismatch, len(vec), e.dims)
	}
	return vec, nil
}

// prepare flattens newlines and truncates to the configured rune count.
func (e *ResilientEmbedder) prepare(text string) string {
	text = newlineReplacer.Replace(text)
	if len(text) <= e.maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= e.maxLen {
		return text
	}
	return string(runes[:e.maxLen])
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// FallbackVector derives a unit-length pseudo-random vector from text.
// The same text and dims always give the same vector.
func FallbackVector(text string, dims int) []float32 {
	if dims <= 0 {
		return nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	vec := make([]float32, dims)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
