package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Project tracker API
	TrackerBaseURL string
	TrackerToken   string
	PageSize       int
	EngagementsMax int
	WorkItemsMax   int
	AssignmentsMax int

	// Spreadsheet store
	SheetBaseURL string
	SheetID      string
	SheetToken   string
	RosterTab    string
	TeamTab      string

	// Cache TTLs
	HistoryTTL time.Duration
	RosterTTL  time.Duration
	TeamTTL    time.Duration

	// Background sync (0 disables the scheduler)
	SyncInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrackerBaseURL: getEnv("TRACKER_BASE_URL", "https://api.tracker.local/v2"),
		TrackerToken:   getEnv("TRACKER_TOKEN", ""),
		SheetBaseURL:   getEnv("SHEET_BASE_URL", "https://sheets.googleapis.com/v4"),
		SheetID:        getEnv("SHEET_ID", ""),
		SheetToken:     getEnv("SHEET_TOKEN", ""),
		RosterTab:      getEnv("ROSTER_TAB", "Freelancers"),
		TeamTab:        getEnv("TEAM_TAB", "Team"),
	}

	var err error
	if config.PageSize, err = getEnvInt("TRACKER_PAGE_SIZE", 200); err != nil {
		return nil, err
	}
	if config.EngagementsMax, err = getEnvInt("TRACKER_ENGAGEMENTS_MAX", 2000); err != nil {
		return nil, err
	}
	if config.WorkItemsMax, err = getEnvInt("TRACKER_WORK_ITEMS_MAX", 5000); err != nil {
		return nil, err
	}
	if config.AssignmentsMax, err = getEnvInt("TRACKER_ASSIGNMENTS_MAX", 5000); err != nil {
		return nil, err
	}

	historyTTL, err := getEnvInt("HISTORY_TTL_SECONDS", 1800)
	if err != nil {
		return nil, err
	}
	config.HistoryTTL = time.Duration(historyTTL) * time.Second

	rosterTTL, err := getEnvInt("ROSTER_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	config.RosterTTL = time.Duration(rosterTTL) * time.Second

	teamTTL, err := getEnvInt("TEAM_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	config.TeamTTL = time.Duration(teamTTL) * time.Second

	syncInterval, err := getEnvInt("SYNC_INTERVAL_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	config.SyncInterval = time.Duration(syncInterval) * time.Second

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
