package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MarketName is the key under which the marketplace records itself in
// the deployment file.
const MarketName = "Nftmart"

// DefaultDeploymentFile is where the server writes its address on boot.
const DefaultDeploymentFile = "deployments.json"

// Deployment maps marketplace names to base URLs. The server writes one
// entry on boot and clients resolve the marketplace from it instead of
// hardcoding an address.
type Deployment map[string]string

// LoadDeployment reads a deployment file and resolves the marketplace
// base URL.
func LoadDeployment(path string) (string, error) {
	if path == "" {
		path = DefaultDeploymentFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read deployment file: %w", err)
	}

	var deployment Deployment
	if err := json.Unmarshal(data, &deployment); err != nil {
		return "", fmt.Errorf("failed to parse deployment file: %w", err)
	}

	baseURL, ok := deployment[MarketName]
	if !ok || baseURL == "" {
		return "", fmt.Errorf("deployment file has no %s entry", MarketName)
	}
	return baseURL, nil
}

// WriteDeployment records the marketplace base URL, preserving any other
// entries already in the file.
func WriteDeployment(path, baseURL string) error {
	if path == "" {
		path = DefaultDeploymentFile
	}

	deployment := Deployment{}
	if data, err := os.ReadFile(path); err == nil {
		// Best effort merge, a corrupt file gets rewritten
		json.Unmarshal(data, &deployment)
	}
	deployment[MarketName] = baseURL

	data, err := json.MarshalIndent(deployment, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployment file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create deployment directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
