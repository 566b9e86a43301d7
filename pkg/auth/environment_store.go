package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only; primarily for CI and containerized runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets the credential from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	token := os.Getenv("TWSCRAPER_BEARER_TOKEN")
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	// The environment holds a single unnamed credential
	if name == "" {
		name = "default"
	}

	return &Credential{
		Name:         name,
		BearerToken:  token,
		UserAgent:    os.Getenv("TWSCRAPER_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("TWSCRAPER_BEARER_TOKEN") != ""
}
