package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// YouTubeConfig represents YouTube API configuration
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
	RefreshToken string
	CategoryID   string
}

// VimeoConfig holds the server-side Vimeo personal access token.
type VimeoConfig struct {
	AccessToken string
	BaseURL     string
}

// DailymotionConfig holds the OAuth client used for the interactive login.
type DailymotionConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Channel      string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable fallback
func GetYouTubeConfig() *YouTubeConfig {
	config := &YouTubeConfig{
		ClientID:     getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", defaultCallback("youtube")),
		AccessToken:  getConfigValue(C.YouTube.AccessToken, "YOUTUBE_ACCESS_TOKEN", ""),
		RefreshToken: getConfigValue(C.YouTube.RefreshToken, "YOUTUBE_REFRESH_TOKEN", ""),
		CategoryID:   getConfigValue(C.YouTube.CategoryID, "YOUTUBE_CATEGORY_ID", "22"),
	}

	// Fallback: token.json written by a previous OAuth consent
	if config.AccessToken == "" || config.RefreshToken == "" {
		if data, err := os.ReadFile("token.json"); err == nil {
			var tokenFile struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			}
			if jsonErr := json.Unmarshal(data, &tokenFile); jsonErr == nil {
				if config.AccessToken == "" {
					config.AccessToken = tokenFile.AccessToken
				}
				if config.RefreshToken == "" {
					config.RefreshToken = tokenFile.RefreshToken
				}
			}
		}
	}
	return config
}

func GetVimeoConfig() *VimeoConfig {
	return &VimeoConfig{
		AccessToken: getConfigValue(C.Vimeo.AccessToken, "VIMEO_ACCESS_TOKEN", ""),
		BaseURL:     getConfigValue(C.Vimeo.BaseURL, "VIMEO_BASE_URL", "https://api.vimeo.com"),
	}
}

func GetDailymotionConfig() *DailymotionConfig {
	return &DailymotionConfig{
		ClientID:     getConfigValue(C.Dailymotion.ClientID, "DAILYMOTION_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.Dailymotion.ClientSecret, "DAILYMOTION_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.Dailymotion.RedirectURI, "DAILYMOTION_REDIRECT_URI", defaultCallback("dailymotion")),
		Channel:      getConfigValue(C.Dailymotion.Channel, "DAILYMOTION_CHANNEL", "news"),
		APIBaseURL:   getConfigValue(C.Dailymotion.APIBaseURL, "DAILYMOTION_API_BASE_URL", "https://api.dailymotion.com"),
		AuthURL:      getConfigValue(C.Dailymotion.AuthURL, "DAILYMOTION_AUTH_URL", "https://www.dailymotion.com/oauth/authorize"),
		TokenURL:     getConfigValue(C.Dailymotion.TokenURL, "DAILYMOTION_TOKEN_URL", "https://api.dailymotion.com/oauth/token"),
	}
}

func defaultCallback(platform string) string {
	return fmt.Sprintf("%s/auth/%s/callback", strings.TrimRight(C.App.BaseURL, "/"), platform)
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Placeholders like YOUR_CLIENT_ID count as unset
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
