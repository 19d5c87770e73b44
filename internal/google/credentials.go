package google

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const serviceAccountType = "service_account"

// ServiceAccount is the subset of a service-account key file used for
// validation and logging. The private key is never exposed here.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// DecodeCredentials returns the service-account JSON from either raw JSON or
// base64 encoded JSON.
func DecodeCredentials(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("google credentials are empty")
	}
	if strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("google credentials are neither JSON nor base64: %w", err)
	}
	decoded = bytes.TrimSpace(decoded)
	if !bytes.HasPrefix(decoded, []byte("{")) {
		return nil, errors.New("decoded google credentials are not a JSON object")
	}
	return decoded, nil
}

// ParseServiceAccount decodes and checks the key file type.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}
	if sa.Type != serviceAccountType {
		return nil, fmt.Errorf("google credentials type is %q, expected %q", sa.Type, serviceAccountType)
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("google credentials have no client_email")
	}
	return &sa, nil
}
