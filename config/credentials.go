package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Credential IDs. Backend credentials use the provider ID.
const (
	CredentialTavily = "tavily"
)

// credentialEnvVars maps a credential ID to the environment variable that
// takes precedence over credentials.toml.
var credentialEnvVars = map[string]string{
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
	ProviderAnthropic:  "ANTHROPIC_API_KEY",
	CredentialTavily:   "TAVILY_API_KEY",
}

// CredentialStore holds API credentials read from credentials.toml. Values
// from the environment always win over the file.
type CredentialStore struct {
	credentials map[string]string // credential ID → secret
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		credentials: make(map[string]string),
	}
}

// Load reads credentials.toml from configDir. A missing file leaves the store
// empty.
func (c *CredentialStore) Load(configDir string) error {
	creds, err := loadPlainText(configDir)
	if err != nil {
		return err
	}
	c.credentials = creds
	return nil
}

// Get returns the credential for id, preferring the environment.
func (c *CredentialStore) Get(id string) string {
	if envVar, ok := credentialEnvVars[id]; ok {
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}
	return c.credentials[id]
}

// EnvVar returns the environment variable consulted for id, if any.
func EnvVar(id string) string {
	return credentialEnvVars[id]
}

func credentialsPath(configDir string) string {
	return filepath.Join(configDir, "credentials.toml")
}

// loadPlainText loads credentials from the plain text TOML file
func loadPlainText(configDir string) (map[string]string, error) {
	path := credentialsPath(configDir)

	if !FileExists(path) {
		return make(map[string]string), nil
	}

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if cf.Credentials == nil {
		return make(map[string]string), nil
	}
	return cf.Credentials, nil
}
