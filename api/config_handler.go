package api

import (
	"net/http"

	"github.com/seenimoa/marketdata/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config *config.Config `json:"config"`
}

// handleGetConfig returns the running configuration with API keys masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotFound, "no configuration loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ConfigResponse{Config: redact(s.cfg)},
	})
}

// handleGetConfigKeys returns the status of all provider API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if cfg == nil {
		cfg = &config.Config{}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(cfg),
	})
}

// redact returns a copy of cfg whose API keys are masked.
func redact(cfg *config.Config) *config.Config {
	out := *cfg
	for _, src := range []*config.SourceConfig{
		&out.Sources.NSE, &out.Sources.Yahoo, &out.Sources.Screener, &out.Sources.CoinGecko,
	} {
		if src.APIKey != "" {
			src.APIKey = config.MaskKey(src.APIKey)
		}
	}
	return &out
}
