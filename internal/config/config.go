// Package config centralises all environment / file configuration for the
// retriever. It should be imported only by the cmd packages (and test code).
// Business-logic layers receive already-built values via dependency-injection.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime option the server and CLI need.
// Keep it flat: primitive types, no embedded structs.
type Config struct {
	// Network
	Port string `yaml:"port"`
	Env  string `yaml:"env"` // "development" | "production"

	// Issue tracker
	GitHubToken   string        `yaml:"github_token"`
	GitHubAPIURL  string        `yaml:"github_api_url"`
	GitHubWebURL  string        `yaml:"github_web_url"`
	GitHubTimeout time.Duration `yaml:"-"`

	// Language model
	LLMProvider  string        `yaml:"llm_provider"`
	LLMModel     string        `yaml:"ollama_model"`
	LLMBaseURL   string        `yaml:"llm_base_url"`
	OpenAIAPIKey string        `yaml:"openai_api_key"`
	LLMTimeout   time.Duration `yaml:"-"`

	// Vertex AI (LLM provider "vertex" and chunk embeddings)
	ProjectID       string `yaml:"gcp_project_id"`
	Location        string `yaml:"gcp_location"`
	CredentialsFile string `yaml:"gcp_credentials_file"`
	EmbedChunks     bool   `yaml:"embed_chunks"`

	// Pipeline tuning
	LinkFetchWorkers    int  `yaml:"link_fetch_workers"`
	SkipFailedSummaries bool `yaml:"skip_failed_summaries"`

	// Data store (optional)
	MongoURI string `yaml:"mongodb_uri"`
	DBName   string `yaml:"mongodb_db"`

	// Server tuning
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`
}

// Load parses the environment (and an optional .env file) into Config.
func Load() Config {
	// godotenv.Load() is a no-op if .env does not exist.
	_ = godotenv.Load()

	return Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:        os.Getenv("GITHUB_API_URL"),
		GitHubWebURL:        os.Getenv("GITHUB_WEB_URL"),
		GitHubTimeout:       getDuration("GITHUB_TIMEOUT_SEC", 30),
		LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
		LLMModel:            os.Getenv("LLM_MODEL"), // "" selects the provider default
		LLMBaseURL:          os.Getenv("LLM_BASE_URL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		LLMTimeout:          getDuration("LLM_TIMEOUT_SEC", 120),
		ProjectID:           os.Getenv("GCP_PROJECT_ID"),
		Location:            getEnv("GCP_LOCATION", "us-central1"),
		CredentialsFile:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		EmbedChunks:         getBool("EMBED_CHUNKS", false),
		LinkFetchWorkers:    getInt("LINK_FETCH_WORKERS", 4),
		SkipFailedSummaries: getBool("SKIP_FAILED_SUMMARIES", false),
		MongoURI:            os.Getenv("MONGODB_URI"),
		DBName:              getEnv("MONGODB_DB", "issue_retriever"),
		ReadTimeout:         getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:        getDuration("WRITE_TIMEOUT_SEC", 300),
	}
}

// LoadFile loads the environment, then overlays the YAML file at path.
// Keys absent from the file keep their environment value.
func LoadFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("configuration file not found: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, errors.New("configuration file is empty")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse YAML configuration: %w", err)
	}

	// llm_model names the model for any provider and wins over ollama_model.
	var alias struct {
		LLMModel string `yaml:"llm_model"`
	}
	if err := yaml.Unmarshal(data, &alias); err != nil {
		return Config{}, fmt.Errorf("parse YAML configuration: %w", err)
	}
	if alias.LLMModel != "" {
		cfg.LLMModel = alias.LLMModel
	}
	return cfg, nil
}

// Validate reports missing or contradictory settings.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GitHubToken) == "" {
		errs = append(errs, errors.New("github token cannot be empty"))
	}
	switch strings.ToLower(c.LLMProvider) {
	case "ollama", "dummy":
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("openai provider requires OPENAI_API_KEY"))
		}
	case "vertex":
		if c.ProjectID == "" {
			errs = append(errs, errors.New("vertex provider requires GCP_PROJECT_ID"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLMProvider))
	}
	if c.EmbedChunks && c.ProjectID == "" {
		errs = append(errs, errors.New("embed_chunks requires GCP_PROJECT_ID"))
	}
	if c.LinkFetchWorkers <= 0 {
		errs = append(errs, fmt.Errorf("link fetch workers must be positive, got %d", c.LinkFetchWorkers))
	}
	return errors.Join(errs...)
}

// WebBaseURL returns the web root that canonical repository links start with.
// GITHUB_WEB_URL wins; otherwise it is derived from GITHUB_API_URL by dropping
// a trailing "/api/v3" (GitHub Enterprise). "" means public GitHub.
func (c Config) WebBaseURL() string {
	if c.GitHubWebURL != "" {
		return strings.TrimRight(c.GitHubWebURL, "/")
	}
	if c.GitHubAPIURL == "" {
		return ""
	}
	u, err := url.Parse(c.GitHubAPIURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Host == "api.github.com" {
		return ""
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api/v3")
	u.RawQuery, u.Fragment = "", ""
	return strings.TrimRight(u.String(), "/")
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// exampleConfig is written by WriteExample.
const exampleConfig = `# issue-retriever configuration
github_token: "your_github_personal_access_token_here"

# ollama (default), openai, vertex or dummy
llm_provider: ollama
# Optional: can be llama2, llama3, codellama, deepseek-r1:14b, etc.
# llm_model is accepted for any provider and takes precedence.
ollama_model: llama2
# llm_base_url: http://localhost:11434/v1
# github_api_url: https://github.example.com/api/v3
# github_web_url: https://github.example.com
# openai_api_key: ""

# gcp_project_id: ""
# gcp_location: us-central1
# embed_chunks: false

link_fetch_workers: 4
skip_failed_summaries: false

# mongodb_uri: mongodb://localhost:27017
# mongodb_db: issue_retriever
`

// WriteExample creates an example configuration file with placeholder values.
// An existing file is left untouched.
func WriteExample(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create example config: %w", err)
	}
	if _, err := f.WriteString(exampleConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("write example config: %w", err)
	}
	return f.Close()
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt reads an integer from env, falling back to defaultVal.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

// getBool reads a boolean from env, falling back to defaultVal.
func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid %s=%q; using default %t", key, v, defaultVal)
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
