package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// Authenticator handles the OAuth2 device code flow against the
// Microsoft identity platform and caches tokens on disk.
type Authenticator struct {
	cfg       *oauth2.Config
	tokenPath string

	// Notify receives the verification URI and user code when a fresh
	// device code flow starts. Defaults to printing to stdout.
	Notify func(verificationURI, userCode string)
}

// NewAuthenticator builds an Authenticator for the given tenant and
// client. Tokens are cached at tokenPath.
func NewAuthenticator(tenantID, clientID, tokenPath string) *Authenticator {
	return &Authenticator{
		cfg: &oauth2.Config{
			ClientID: clientID,
			Scopes:   requiredScopes,
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
				TokenURL:      msEndpoint(tenantID, "token"),
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		tokenPath: tokenPath,
		Notify: func(uri, code string) {
			fmt.Println()
			fmt.Println("To sign in, use a web browser to open the page:")
			fmt.Printf("  %s\n", uri)
			fmt.Printf("Enter the code: %s\n", code)
			fmt.Println()
		},
	}
}

// HasToken reports whether a cached token file exists. It does not
// check validity.
func (a *Authenticator) HasToken() bool {
	_, err := os.Stat(a.tokenPath)
	return err == nil
}

// Token returns a usable token, refreshing or re-authenticating as
// needed. A fresh device code flow triggers the Notify callback and
// blocks until the operator completes sign-in or ctx is cancelled.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := a.loadToken()
	if err != nil {
		// Corrupt cache: drop it and re-authenticate.
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		ts := a.cfg.TokenSource(ctx, tok)
		refreshed, err := ts.Token()
		if err == nil {
			_ = a.saveToken(refreshed)
			return refreshed, nil
		}
	}

	resp, err := a.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}
	if a.Notify != nil {
		a.Notify(resp.VerificationURI, resp.UserCode)
	}

	newTok, err := a.cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.saveToken(newTok); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}
	return newTok, nil
}

// HTTPSource returns a TokenSource that persists refreshed tokens, for
// use with oauth2.NewClient.
func (a *Authenticator) HTTPSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return &savingTokenSource{auth: a, ts: a.cfg.TokenSource(ctx, tok)}
}

type savingTokenSource struct {
	auth *Authenticator
	ts   oauth2.TokenSource
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	_ = s.auth.saveToken(tok)
	return tok, nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", a.tokenPath, err)
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := a.tokenPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, a.tokenPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}
