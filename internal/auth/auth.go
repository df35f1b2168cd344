// Package auth performs the installed-app OAuth flow for the People API and
// caches the obtained token under the user's config directory. The rest of
// the system only ever sees the authenticated service handle it returns.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	peopleapi "google.golang.org/api/people/v1"
	"google.golang.org/api/option"

	"github.com/agentstation/birthsync/pkg/errors"
	"github.com/agentstation/birthsync/pkg/logging"
)

const (
	// CredentialsFile is the downloaded OAuth client secrets file, expected
	// in the config directory.
	CredentialsFile = "credentials.json"

	// TokenFile caches the obtained access and refresh tokens.
	TokenFile = "token.json"

	// redirectPort is the local listener port that captures the OAuth
	// redirect. It must match a redirect URI registered for the client.
	redirectPort = "6789"

	appName = "birthsync"
)

// ConfigDir returns the directory holding credentials and the token cache.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Service returns an authenticated People API service, running the
// browser-based authorization flow if no cached token exists.
func Service(ctx context.Context) (*peopleapi.Service, error) {
	client, err := httpClient(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := peopleapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People API service: %w", err)
	}
	return svc, nil
}

// ResetToken removes the cached token, forcing a fresh authorization on the
// next Service call.
func ResetToken() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, TokenFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("remove", path, err)
	}
	return nil
}

func oauthConfig() (*oauth2.Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, CredentialsFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read client secrets from", path, err)
	}

	config, err := google.ConfigFromJSON(b, peopleapi.ContactsScope)
	if err != nil {
		return nil, errors.WrapParse("client secrets", path, err)
	}

	// The local listener owns the redirect; force the port to match.
	config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", redirectPort)
	return config, nil
}

func httpClient(ctx context.Context) (*http.Client, error) {
	config, err := oauthConfig()
	if err != nil {
		return nil, err
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	tokenPath := filepath.Join(dir, TokenFile)

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		logging.Info().Str("token", tokenPath).Msg("no cached token, starting authorization flow")
		tok, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			logging.Warn().Err(err).Msg("could not cache token")
		}
	}

	return config.Client(ctx, tok), nil
}

// tokenFromWeb runs the authorization-code flow: a local HTTP listener
// captures the redirect while the user grants access in a browser.
func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", ":"+redirectPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", redirectPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect")
				return
			}
			fmt.Fprint(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer server.Shutdown(context.Background())

	// AccessTypeOffline so a refresh token comes back with the grant.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize %s:\n%s\n", appName, authURL)

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, errors.WrapParse("token", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.WrapIO("write", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
