package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "GITHUB_TOKEN", "GITHUB_API_URL", "GITHUB_WEB_URL", "GITHUB_TIMEOUT_SEC",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "OPENAI_API_KEY", "LLM_TIMEOUT_SEC",
		"GCP_PROJECT_ID", "GCP_LOCATION", "GOOGLE_APPLICATION_CREDENTIALS", "EMBED_CHUNKS",
		"LINK_FETCH_WORKERS", "SKIP_FAILED_SUMMARIES", "MONGODB_URI", "MONGODB_DB",
		"READ_TIMEOUT_SEC", "WRITE_TIMEOUT_SEC",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Empty(t, cfg.LLMModel, "model default is chosen per provider")
	assert.Equal(t, 30*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 4, cfg.LinkFetchWorkers)
	assert.False(t, cfg.SkipFailedSummaries)
	assert.Equal(t, "issue_retriever", cfg.DBName)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 300*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LINK_FETCH_WORKERS", "8")
	t.Setenv("SKIP_FAILED_SUMMARIES", "true")
	t.Setenv("LLM_TIMEOUT_SEC", "10")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 8, cfg.LinkFetchWorkers)
	assert.True(t, cfg.SkipFailedSummaries)
	assert.Equal(t, 10*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_VertexWithoutModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "x")
	t.Setenv("LLM_PROVIDER", "vertex")
	t.Setenv("GCP_PROJECT_ID", "p")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.LLMModel, "an Ollama model name must not reach Vertex")
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LINK_FETCH_WORKERS", "many")
	t.Setenv("EMBED_CHUNKS", "perhaps")
	t.Setenv("READ_TIMEOUT_SEC", "soon")

	cfg := Load()
	assert.Equal(t, 4, cfg.LinkFetchWorkers)
	assert.False(t, cfg.EmbedChunks)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "valid file overlays env",
			content: `github_token: "file_token"
ollama_model: llama3
skip_failed_summaries: true
`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "file_token", cfg.GitHubToken)
				assert.Equal(t, "llama3", cfg.LLMModel)
				assert.True(t, cfg.SkipFailedSummaries)
				assert.Equal(t, "ollama", cfg.LLMProvider)
			},
		},
		{
			name: "llm_model overrides ollama_model",
			content: `llm_provider: vertex
ollama_model: llama3
llm_model: gemini-2.0-flash-001
`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "vertex", cfg.LLMProvider)
				assert.Equal(t, "gemini-2.0-flash-001", cfg.LLMModel)
			},
		},
		{
			name:    "llm_model alone",
			content: "llm_model: gpt-4o\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "gpt-4o", cfg.LLMModel)
			},
		},
		{
			name:    "empty file",
			content: "   \n",
			wantErr: "configuration file is empty",
		},
		{
			name:    "invalid yaml",
			content: "github_token: [unterminated",
			wantErr: "parse YAML configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cfg, err := LoadFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestWriteExample(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, WriteExample(path))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "your_github_personal_access_token_here", cfg.GitHubToken)
	assert.Equal(t, "llama2", cfg.LLMModel)
	assert.Equal(t, 4, cfg.LinkFetchWorkers)

	// A second call must not clobber the file.
	require.Error(t, WriteExample(path))
}

func TestValidate(t *testing.T) {
	base := Config{GitHubToken: "t", LLMProvider: "ollama", LinkFetchWorkers: 4}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "dummy provider", mutate: func(c *Config) { c.LLMProvider = "dummy" }},
		{name: "missing token", mutate: func(c *Config) { c.GitHubToken = " " }, wantErr: "github token cannot be empty"},
		{name: "openai without key", mutate: func(c *Config) { c.LLMProvider = "openai" }, wantErr: "OPENAI_API_KEY"},
		{name: "vertex without project", mutate: func(c *Config) { c.LLMProvider = "vertex" }, wantErr: "GCP_PROJECT_ID"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLMProvider = "claude" }, wantErr: "unknown llm provider"},
		{name: "embed without project", mutate: func(c *Config) { c.EmbedChunks = true }, wantErr: "embed_chunks"},
		{name: "zero workers", mutate: func(c *Config) { c.LinkFetchWorkers = 0 }, wantErr: "link fetch workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWebBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		apiURL string
		webURL string
		want   string
	}{
		{name: "public github", want: ""},
		{name: "public api url", apiURL: "https://api.github.com/", want: ""},
		{name: "enterprise api", apiURL: "https://github.example.com/api/v3/", want: "https://github.example.com"},
		{name: "enterprise api without slash", apiURL: "https://github.example.com/api/v3", want: "https://github.example.com"},
		{name: "test server", apiURL: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "explicit web url wins", apiURL: "https://github.example.com/api/v3", webURL: "https://code.example.com/", want: "https://code.example.com"},
		{name: "unparseable api url", apiURL: "://bad", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GitHubAPIURL: tt.apiURL, GitHubWebURL: tt.webURL}
			assert.Equal(t, tt.want, cfg.WebBaseURL())
		})
	}
}

func TestLoad_WebURLFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_API_URL", "https://ghe.corp/api/v3")

	assert.Equal(t, "https://ghe.corp", Load().WebBaseURL())

	t.Setenv("GITHUB_WEB_URL", "https://issues.corp")
	assert.Equal(t, "https://issues.corp", Load().WebBaseURL())
}
