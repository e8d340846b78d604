package resolution

import (
	"fmt"
	"net/http"

	"github.com/agenthands/edgeqc/internal/config"
	"github.com/agenthands/edgeqc/internal/logger"
)

func NewClient(cfg config.ResolutionConfig, lookupLimit int, log *logger.Logger) (Service, error) {
	if cfg.NormalizerURL == "" || cfg.NameResolverURL == "" {
		return nil, fmt.Errorf("resolution service URLs are required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if lookupLimit <= 0 {
		lookupLimit = 10
	}

	return NewHTTPClient(cfg.NormalizerURL, cfg.NameResolverURL,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Concurrency),
		WithMaxRetries(cfg.MaxRetries),
		WithLookupLimit(lookupLimit),
		WithLogger(log.With("component", "resolution")),
	), nil
}
