package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenSource builds a self-refreshing token source for a service account.
// With no scopes given, DriveScopes are requested.
func TokenSource(ctx context.Context, credentials []byte, scopes ...string) (oauth2.TokenSource, error) {
	if _, err := ParseServiceAccount(credentials); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		scopes = DriveScopes
	}

	conf, err := google.JWTConfigFromJSON(credentials, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account: %w", err)
	}
	return conf.TokenSource(ctx), nil
}
