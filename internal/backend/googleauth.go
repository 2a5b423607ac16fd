package backend

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
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// googleCredentialsFile is the OAuth client downloaded from the Google
	// Cloud console, stored in the dbrain home directory.
	googleCredentialsFile = "credentials.json"
	// googleTokenFile holds the user token obtained by `dbrain auth`.
	googleTokenFile = "token.json"

	// authCallbackPort is the local port used to capture the OAuth redirect.
	authCallbackPort = "6789"
)

var calendarScopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// NewCalendarService builds an authorized Google Calendar service from the
// credentials and token stored under basePath. It never starts an
// interactive flow: a missing token is an error pointing at `dbrain auth`.
func NewCalendarService(ctx context.Context, basePath string) (*calendar.Service, error) {
	config, err := googleOAuthConfig(basePath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(filepath.Join(basePath, googleTokenFile))
	if err != nil {
		return nil, fmt.Errorf("no Google token found, run 'dbrain auth' first: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

// AuthorizeGoogle runs the OAuth authorization code flow on a local callback
// server and stores the resulting token under basePath.
func AuthorizeGoogle(ctx context.Context, basePath string) error {
	config, err := googleOAuthConfig(basePath)
	if err != nil {
		return err
	}
	config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", authCallbackPort)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", ":"+authCallbackPort)
	if err != nil {
		return fmt.Errorf("starting callback listener on port %s: %w", authCallbackPort, err)
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
			fmt.Fprint(w, "Authentication successful. You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer server.Shutdown(context.Background())

	// AccessTypeOffline is required to receive a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize dbrain:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, code)
		if err != nil {
			return fmt.Errorf("exchanging authorization code: %w", err)
		}
		return saveToken(filepath.Join(basePath, googleTokenFile), tok)
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("authorization timed out, try again")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func googleOAuthConfig(basePath string) (*oauth2.Config, error) {
	path := filepath.Join(basePath, googleCredentialsFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading Google credentials %s: %w", path, err)
	}
	config, err := google.ConfigFromJSON(b, calendarScopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing Google credentials: %w", err)
	}
	return config, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing token %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	fmt.Printf("Token saved to %s\n", path)
	return nil
}
