package identity

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Acquirer performs a single token exchange with the identity provider.
type Acquirer interface {
	Acquire(ctx context.Context) (*oauth2.Token, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context) (*oauth2.Token, error)

func (f AcquirerFunc) Acquire(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// ClientCredentials acquires tokens with the OAuth2 client-credentials grant.
type ClientCredentials struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

// NewClientCredentials creates an acquirer for the given application. When
// httpClient is nil the oauth2 package default is used.
func NewClientCredentials(clientID, clientSecret, tokenURL, scope string, httpClient *http.Client) *ClientCredentials {
	return &ClientCredentials{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

func (c *ClientCredentials) Acquire(ctx context.Context) (*oauth2.Token, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	return c.config.Token(ctx)
}
