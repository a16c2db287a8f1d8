package upc

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// Provider answers barcode lookups against one product database. A nil
// result with a nil error means "not found".
type Provider interface {
	Name() string
	Lookup(ctx context.Context, code string) (*model.ProductInfo, error)
}

// Resolver chains providers and caches answers for the process lifetime.
// Safe for concurrent use.
type Resolver struct {
	providers []Provider
	logger    *slog.Logger

	mu      sync.RWMutex
	session map[string]*model.ProductInfo
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a resolver over the given providers, tried in order.
func NewResolver(providers []Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		providers: providers,
		logger:    slog.Default(),
		session:   make(map[string]*model.ProductInfo),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Normalize strips everything but digits from a barcode.
func Normalize(code string) string {
	var sb strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			sb.WriteByte(byte(r))
		}
	}
	return sb.String()
}

// Lookup resolves a barcode to product information. Returns false when the
// code is empty after normalization or no provider knows it. Provider errors
// are logged and treated as misses.
func (r *Resolver) Lookup(ctx context.Context, code string) (*model.ProductInfo, bool) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, false
	}

	r.mu.RLock()
	if info, ok := r.session[normalized]; ok {
		r.mu.RUnlock()
		r.logger.Debug("upc session cache hit", "upc", normalized)
		return info, true
	}
	r.mu.RUnlock()

	for _, p := range r.providers {
		info, err := p.Lookup(ctx, normalized)
		if err != nil {
			r.logger.Warn("upc provider failed",
				"provider", p.Name(),
				"upc", normalized,
				"error", err,
			)
			continue
		}
		if info == nil {
			continue
		}

		r.logger.Info("upc resolved",
			"provider", p.Name(),
			"upc", normalized,
			"title", info.Title,
		)

		r.mu.Lock()
		r.session[normalized] = info
		r.mu.Unlock()
		return info, true
	}

	r.logger.Warn("upc not found in any database", "upc", normalized)
	return nil, false
}
