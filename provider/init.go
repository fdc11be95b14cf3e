package provider

import (
	"fmt"

	"agentrepl/config"
	"agentrepl/model"

	"go.uber.org/zap"
)

// InitializeProvider creates the backend named in [backend].provider with its
// credential from the credential store.
func InitializeProvider(cfg *config.Config, logger *zap.Logger) (model.Provider, error) {
	providerType := MapProviderIDToType(cfg.Backend.Provider)

	p, err := NewProvider(Config{
		Type:      providerType,
		BaseURL:   cfg.Backend.BaseURL,
		APIKey:    cfg.APIKey(),
		Model:     cfg.Backend.Model,
		MaxTokens: cfg.Backend.MaxTokens,
		Logger:    logger,
	})
	if err != nil {
		if envVar := config.EnvVar(cfg.Backend.Provider); envVar != "" && cfg.APIKey() == "" {
			return nil, fmt.Errorf("failed to initialize provider %s (set %s): %w", cfg.Backend.Provider, envVar, err)
		}
		return nil, fmt.Errorf("failed to initialize provider %s: %w", cfg.Backend.Provider, err)
	}

	if logger != nil {
		logger.Info("provider initialized",
			zap.String("provider", cfg.Backend.Provider),
			zap.String("model", p.GetModel()),
			zap.Bool("stream", cfg.Backend.Stream),
		)
	}
	return p, nil
}
