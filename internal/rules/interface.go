package rules

import (
	"context"
	"fmt"
	"net/http"

	"github.com/comigor/tenant-console/internal/config"
)

// Creator turns a free-text prompt into a rule; it is easy to mock in tests.
type Creator interface {
	Create(ctx context.Context, req Request) (Reply, error)
}

// Request is the body sent to the rule-creation endpoint.
type Request struct {
	Prompt   string `json:"prompt"`
	TenantID string `json:"tenant_id"`
}

// NewCreator builds the Creator selected by cfg.Rules.Provider.
func NewCreator(cfg config.Config) (Creator, error) {
	switch cfg.Rules.Provider {
	case config.ProviderHTTP, "":
		// no client timeout unless configured; a silent endpoint keeps the exchange pending
		return NewHTTPCreator(cfg.Rules.URL, &http.Client{Timeout: cfg.Rules.Timeout}), nil
	case config.ProviderOpenAI:
		return NewOpenAICreator(NewClient(cfg.LLM), cfg.LLM), nil
	default:
		return nil, fmt.Errorf("unsupported rules provider %q", cfg.Rules.Provider)
	}
}
