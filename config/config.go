/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"chainguard.dev/ghinvestigator/agents/executor"
	"chainguard.dev/ghinvestigator/agents/metaagent"
	"github.com/sethvargo/go-envconfig"
)

// GitHubTokenEnv names the variable holding the token sent to the tool server.
const GitHubTokenEnv = "GITHUB_MCP_PAT"

// DefaultMCPURL is the hosted GitHub MCP endpoint.
const DefaultMCPURL = "https://api.githubcopilot.com/mcp/"

// ErrMissingCredential is matched by every MissingError.
var ErrMissingCredential = errors.New("missing credential")

// MissingError reports a credential variable that is unset or empty.
type MissingError struct {
	Var string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not set: create a credential with the appropriate scopes and export it", e.Var)
}

func (e *MissingError) Unwrap() error {
	return ErrMissingCredential
}

// Config is the process configuration, read once at startup.
type Config struct {
	Port           int           `env:"PORT,default=8000"`
	Model          string        `env:"MODEL,default=gpt-4.1-mini"`
	MaxTurns       int           `env:"MAX_TURNS,default=20"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=0s"`

	MCP MCP `env:",prefix=MCP_"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`

	// Vertex AI, used by Claude and Gemini models without an API key.
	ProjectID string `env:"GCP_PROJECT_ID"`
	Region    string `env:"GCP_REGION,default=us-east5"`
}

// MCP configures the tool server connection.
type MCP struct {
	URL            string        `env:"URL,default=https://api.githubcopilot.com/mcp/"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT,default=15s"`
	MaxRetries     int           `env:"MAX_RETRIES,default=3"`
	ReadOnly       bool          `env:"READ_ONLY,default=false"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := executor.ValidateMaxTurns(c.MaxTurns); err != nil {
		return fmt.Errorf("MAX_TURNS: %w", err)
	}
	if c.MCP.MaxRetries < 0 {
		return fmt.Errorf("MCP_MAX_RETRIES must not be negative, got %d", c.MCP.MaxRetries)
	}
	if c.MCP.ConnectTimeout <= 0 {
		return fmt.Errorf("MCP_CONNECT_TIMEOUT must be positive, got %s", c.MCP.ConnectTimeout)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// ValidateProvider checks that the configured model has the credentials
// its provider needs.
func (c *Config) ValidateProvider() error {
	provider, err := metaagent.ProviderFor(c.Model)
	if err != nil {
		return err
	}
	switch provider {
	case metaagent.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return &MissingError{Var: "OPENAI_API_KEY"}
		}
	case metaagent.ProviderClaude:
		if c.AnthropicAPIKey == "" && c.ProjectID == "" {
			return &MissingError{Var: "ANTHROPIC_API_KEY"}
		}
	case metaagent.ProviderGoogle:
		if c.GeminiAPIKey == "" && c.ProjectID == "" {
			return &MissingError{Var: "GEMINI_API_KEY"}
		}
	}
	return nil
}

// Credentials returns the model provider credentials.
func (c *Config) Credentials() metaagent.Credentials {
	return metaagent.Credentials{
		OpenAIAPIKey:    c.OpenAIAPIKey,
		OpenAIBaseURL:   c.OpenAIBaseURL,
		AnthropicAPIKey: c.AnthropicAPIKey,
		GeminiAPIKey:    c.GeminiAPIKey,
		ProjectID:       c.ProjectID,
		Region:          c.Region,
	}
}

// GitHubToken reads the tool server token from the environment. It is
// looked up on every call so a rotated token is picked up by the next
// session.
func GitHubToken() (string, error) {
	token := os.Getenv(GitHubTokenEnv)
	if token == "" {
		return "", &MissingError{Var: GitHubTokenEnv}
	}
	return token, nil
}
