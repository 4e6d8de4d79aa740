package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.PageSize != 200 {
					t.Errorf("expected page size 200, got %d", cfg.PageSize)
				}
				if cfg.EngagementsMax != 2000 {
					t.Errorf("expected engagements max 2000, got %d", cfg.EngagementsMax)
				}
				if cfg.WorkItemsMax != 5000 {
					t.Errorf("expected work items max 5000, got %d", cfg.WorkItemsMax)
				}
				if cfg.HistoryTTL != 30*time.Minute {
					t.Errorf("expected history TTL 30m, got %v", cfg.HistoryTTL)
				}
				if cfg.RosterTTL != time.Minute {
					t.Errorf("expected roster TTL 1m, got %v", cfg.RosterTTL)
				}
				if cfg.SyncInterval != 0 {
					t.Errorf("expected sync disabled by default, got %v", cfg.SyncInterval)
				}
				if cfg.RosterTab != "Freelancers" {
					t.Errorf("expected roster tab Freelancers, got %s", cfg.RosterTab)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":                "9000",
				"LOG_LEVEL":           "debug",
				"TRACKER_PAGE_SIZE":   "50",
				"HISTORY_TTL_SECONDS": "600",
				"SYNC_INTERVAL_SECONDS": "900",
				"ALLOWED_ORIGINS":     "http://example.com,http://test.com",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.PageSize != 50 {
					t.Errorf("expected page size 50, got %d", cfg.PageSize)
				}
				if cfg.HistoryTTL != 10*time.Minute {
					t.Errorf("expected history TTL 10m, got %v", cfg.HistoryTTL)
				}
				if cfg.SyncInterval != 15*time.Minute {
					t.Errorf("expected sync interval 15m, got %v", cfg.SyncInterval)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
			},
		},
		{
			name: "invalid TRACKER_PAGE_SIZE",
			env: map[string]string{
				"TRACKER_PAGE_SIZE": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid HISTORY_TTL_SECONDS",
			env: map[string]string{
				"HISTORY_TTL_SECONDS": "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
