// Package github provides authenticated GitHub API clients.
package github

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewTokenClient creates a client authenticated with a workflow token.
// Outbound calls are traced through the otelhttp transport.
func NewTokenClient(token string) *gogithub.Client {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	return gogithub.NewClient(httpClient).WithAuthToken(token)
}

// NewAppClient creates a client authenticated as a GitHub App installation.
// The ghinstallation transport handles JWT generation and token refresh.
func NewAppClient(appID, installationID int64, privateKeyPEM string) (*gogithub.Client, error) {
	transport, err := ghinstallation.New(
		otelhttp.NewTransport(http.DefaultTransport),
		appID, installationID, []byte(privateKeyPEM),
	)
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}
	return gogithub.NewClient(&http.Client{Transport: transport}), nil
}
