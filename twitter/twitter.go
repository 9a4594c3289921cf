// Package twitter connects accounts over OAuth 2.0 with PKCE and posts tweets on
// their behalf.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"presslog/models"
)

const (
	AuthURL  = "https://twitter.com/i/oauth2/authorize"
	TokenURL = "https://api.twitter.com/2/oauth2/token"
	APIURL   = "https://api.twitter.com"
)

var ErrNotConnected = errors.New("twitter account not connected")

// Poster publishes a status update with a user's stored token.
type Poster interface {
	Post(ctx context.Context, token *models.TwitterToken, content string) error
}

// Service is the part of the client the web modules use.
type Service interface {
	Poster
	Enabled() bool
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, userID uint, code, verifier string) (*models.TwitterToken, error)
}

type Client struct {
	oauth  *oauth2.Config
	apiURL string
}

func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   AuthURL,
				TokenURL:  TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiURL: APIURL,
	}
}

// WithEndpoints points the client at other hosts, for tests.
func (c *Client) WithEndpoints(authURL, tokenURL, apiURL string) *Client {
	c.oauth.Endpoint.AuthURL = authURL
	c.oauth.Endpoint.TokenURL = tokenURL
	c.apiURL = apiURL
	return c
}

// Enabled reports whether a client id is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.oauth.ClientID != ""
}

// NewVerifier returns a fresh PKCE code verifier to keep in the session until the
// callback.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

func (c *Client) AuthCodeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the callback code for a token ready to be stored for userID.
func (c *Client) Exchange(ctx context.Context, userID uint, code, verifier string) (*models.TwitterToken, error) {
	tok, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("twitter: exchange code: %w", err)
	}
	t := &models.TwitterToken{UserID: userID}
	fromOAuth(t, tok)
	return t, nil
}

type tweetRequest struct {
	Text string `json:"text"`
}

// Post creates a tweet. When the access token was refreshed on the way, token is
// updated in place so the caller can persist it.
func (c *Client) Post(ctx context.Context, token *models.TwitterToken, content string) error {
	if token == nil || token.AccessToken == "" {
		return ErrNotConnected
	}

	current, err := c.oauth.TokenSource(ctx, toOAuth(token)).Token()
	if err != nil {
		return fmt.Errorf("twitter: refresh token: %w", err)
	}
	fromOAuth(token, current)

	body, err := json.Marshal(tweetRequest{Text: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := oauth2.NewClient(ctx, oauth2.StaticTokenSource(current)).Do(req)
	if err != nil {
		return fmt.Errorf("twitter: post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twitter: post tweet: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func toOAuth(t *models.TwitterToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func fromOAuth(t *models.TwitterToken, tok *oauth2.Token) {
	t.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		t.RefreshToken = tok.RefreshToken
	}
	t.TokenType = tok.TokenType
	t.Expiry = tok.Expiry
}
