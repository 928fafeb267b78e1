package config

import (
	"errors"
	"os"
	"sync"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	DBType    string
	DBDSN     string
	LogsFile  string
	UsersFile string

	AuthServiceURL  string
	JWTSecret       string
	SchedulerAPIKey string

	GitHubAPIURL string
	GitHubToken  string

	GeminiAPIURL string
	GeminiAPIKey string

	PushAPIURL     string
	PushServiceKey string

	CORSOrigin string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			Port:            getEnv("PORT", "8080"),
			DBType:          getEnv("STORAGE_BACKEND", "file"),
			DBDSN:           getEnv("POSTGRES_DSN", ""),
			LogsFile:        getEnv("LOGS_FILE", "data/logs.json"),
			UsersFile:       getEnv("USERS_FILE", "data/users.json"),
			AuthServiceURL:  getEnv("AUTH_SERVICE_URL", ""),
			JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
			SchedulerAPIKey: getEnv("SCHEDULER_API_KEY", ""),
			GitHubAPIURL:    getEnv("GITHUB_API_URL", "https://api.github.com"),
			GitHubToken:     getEnv("GITHUB_PAT", ""),
			GeminiAPIURL:    getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			PushAPIURL:      getEnv("PUSH_API_URL", ""),
			PushServiceKey:  getEnv("PUSH_SERVICE_KEY", ""),
			CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:5173"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.LogsFile == "" || c.UsersFile == "") {
		return errors.New("File storage requires LOGS_FILE and USERS_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		f, err := os.Open(".env")
		if err != nil {
			return err
		}
		defer f.Close()
		var lines []string
		buf := make([]byte, 4096)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				lines = append(lines, string(buf[:n]))
			}
			if err != nil {
				break
			}
		}
		for _, line := range lines {
			for _, l := range splitLines(line) {
				if len(l) == 0 || l[0] == '#' {
					continue
				}
				kv := splitKV(l)
				if len(kv) == 2 {
					os.Setenv(kv[0], kv[1])
				}
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
