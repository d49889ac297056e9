package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSystemPrompt is injected ahead of every chat conversation.
const DefaultSystemPrompt = "You are Scholar Hub Assistant, a friendly guide for students of the IIT Madras BS degree in " +
	"Data Science and Applications. Help with course selection, CGPA and grading rules, exam preparation, " +
	"learning roadmaps and resume advice. Keep answers concise, accurate and encouraging. If you are unsure " +
	"about an official policy, say so and point the student to the programme website."

// DefaultFallbackMessage is returned when the upstream model cannot be reached.
const DefaultFallbackMessage = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	AllowOrigins           string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeMB        int
	TrackerCacheTTL        time.Duration
	RoadmapCacheTTL        time.Duration
	OpenRouterAPIKey       string
	OpenRouterBaseURL      string
	OpenRouterModel        string
	OpenRouterSiteURL      string
	OpenRouterAppTitle     string
	ChatSystemPrompt       string
	ChatFallbackMessage    string
	ChatMaxTokens          int
	ChatTemperature        float32
	ChatHistoryLimit       int
	ChatRateLimit          int
	ChatRateWindow         time.Duration
	SeedEnabled            bool
	SeedToken              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCHOLAR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Scholar Hub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cloudinary.folder", "scholar-hub/resumes")
	v.SetDefault("upload.max_mb", 5)
	v.SetDefault("tracker.cache_ttl", "10m")
	v.SetDefault("roadmap.cache_ttl", "2m")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.app_title", "IITM Scholar Hub")
	v.SetDefault("chat.system_prompt", DefaultSystemPrompt)
	v.SetDefault("chat.fallback_message", DefaultFallbackMessage)
	v.SetDefault("chat.max_tokens", 800)
	v.SetDefault("chat.temperature", 0.7)
	v.SetDefault("chat.history_limit", 12)
	v.SetDefault("chat.rate_limit", 20)
	v.SetDefault("chat.rate_window", "1m")
	v.SetDefault("seed.enabled", false)

	trackerTTL, err := parseDuration(v.GetString("tracker.cache_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tracker cache ttl: %w", err)
	}

	roadmapTTL, err := parseDuration(v.GetString("roadmap.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid roadmap cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v.GetString("chat.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid chat rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		AllowOrigins:           v.GetString("cors.allow_origins"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeMB:        v.GetInt("upload.max_mb"),
		TrackerCacheTTL:        trackerTTL,
		RoadmapCacheTTL:        roadmapTTL,
		OpenRouterAPIKey:       v.GetString("openrouter.api_key"),
		OpenRouterBaseURL:      v.GetString("openrouter.base_url"),
		OpenRouterModel:        v.GetString("openrouter.model"),
		OpenRouterSiteURL:      v.GetString("openrouter.site_url"),
		OpenRouterAppTitle:     v.GetString("openrouter.app_title"),
		ChatSystemPrompt:       strings.TrimSpace(v.GetString("chat.system_prompt")),
		ChatFallbackMessage:    strings.TrimSpace(v.GetString("chat.fallback_message")),
		ChatMaxTokens:          v.GetInt("chat.max_tokens"),
		ChatTemperature:        float32(v.GetFloat64("chat.temperature")),
		ChatHistoryLimit:       v.GetInt("chat.history_limit"),
		ChatRateLimit:          v.GetInt("chat.rate_limit"),
		ChatRateWindow:         rateWindow,
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ChatSystemPrompt == "" {
		cfg.ChatSystemPrompt = DefaultSystemPrompt
	}

	if cfg.ChatFallbackMessage == "" {
		cfg.ChatFallbackMessage = DefaultFallbackMessage
	}

	if cfg.ChatHistoryLimit <= 0 {
		cfg.ChatHistoryLimit = 12
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 5
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
