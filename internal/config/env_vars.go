package config

import "strings"

type EnvVars struct {
	AppName    string `envconfig:"APP_NAME" default:"Site Admin"`
	Env        string `envconfig:"ENV" default:"DEV"`
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

// GetAPIBaseURL returns the root of the content REST API without a trailing
// slash (e.g., "https://cms.example.com/api").
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.APIBaseURL, "/")
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.LogLevel)
}
