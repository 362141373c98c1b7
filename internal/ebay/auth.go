package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	// Scope granted to application (client-credentials) tokens.
	publicScope = "https://api.ebay.com/oauth/api_scope"

	tokenConnectTimeout = 3 * time.Second
	tokenTimeout        = 8 * time.Second

	// Cached tokens are refreshed this long before eBay expires them.
	expirySkew = 60 * time.Second
)

// OAuthConfig holds eBay application credentials
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool

	// TokenURL overrides the identity endpoint derived from Sandbox.
	TokenURL string

	// ReuseToken keeps a token until shortly before it expires instead
	// of exchanging credentials on every request.
	ReuseToken bool
}

// Token is an application access token
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

// Valid reports whether the token can still be used at now.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Add(expirySkew).Before(t.ExpiresAt)
}

// TokenProvider hands out bearer tokens for the Browse API.
type TokenProvider interface {
	Token(ctx context.Context) (Token, error)
	Invalidate()
}

// TokenSource performs the OAuth2 client-credentials grant
type TokenSource struct {
	config OAuthConfig
	client *resty.Client
	logger logrus.FieldLogger
	now    func() time.Time

	mu     sync.Mutex
	cached *Token
}

// Ensure TokenSource implements TokenProvider
var _ TokenProvider = (*TokenSource)(nil)

// NewTokenSource creates a token source. Credentials are not validated
// until the first Token call.
func NewTokenSource(config OAuthConfig, logger logrus.FieldLogger) *TokenSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if config.TokenURL == "" {
		config.TokenURL = apiHost(config.Sandbox) + "/identity/v1/oauth2/token"
	}

	return &TokenSource{
		config: config,
		client: resty.NewWithClient(newHTTPClient(tokenConnectTimeout, tokenTimeout)),
		logger: logger.WithField("component", "ebay_auth"),
		now:    time.Now,
	}
}

// Configured reports whether both halves of the credential are set.
func (s *TokenSource) Configured() bool {
	return s.config.ClientID != "" && s.config.ClientSecret != ""
}

// Token returns an access token, exchanging credentials when no
// reusable token is held. Failures are not retried here.
func (s *TokenSource) Token(ctx context.Context) (Token, error) {
	if err := s.checkCredentials(); err != nil {
		return Token{}, err
	}

	if s.config.ReuseToken {
		s.mu.Lock()
		cached := s.cached
		s.mu.Unlock()
		if cached != nil && cached.Valid(s.now()) {
			return *cached, nil
		}
	}

	token, err := s.exchange(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("token exchange failed")
		return Token{}, err
	}

	if s.config.ReuseToken {
		s.mu.Lock()
		s.cached = &token
		s.mu.Unlock()
	}

	return token, nil
}

// Invalidate drops any cached token
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *TokenSource) checkCredentials() error {
	var missing []string
	if s.config.ClientID == "" {
		missing = append(missing, "EBAY_CLIENT_ID")
	}
	if s.config.ClientSecret == "" {
		missing = append(missing, "EBAY_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

func (s *TokenSource) exchange(ctx context.Context) (Token, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBasicAuth(s.config.ClientID, s.config.ClientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      publicScope,
		}).
		Post(s.config.TokenURL)
	if err != nil {
		return Token{}, &AuthError{Err: fmt.Errorf("executing request: %w", err)}
	}

	if !resp.IsSuccess() {
		return Token{}, &AuthError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var token Token
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return Token{}, &AuthError{StatusCode: resp.StatusCode(), Err: fmt.Errorf("parsing token response: %w", err)}
	}
	if token.AccessToken == "" {
		return Token{}, &AuthError{StatusCode: resp.StatusCode(), Body: "response carried no access_token"}
	}

	token.ExpiresAt = s.now().Add(time.Duration(token.ExpiresIn) * time.Second)

	return token, nil
}

func apiHost(sandbox bool) string {
	if sandbox {
		return "https://api.sandbox.ebay.com"
	}
	return "https://api.ebay.com"
}

// newHTTPClient bounds connection setup separately from the whole request.
func newHTTPClient(connect, total time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{
		Timeout:   total,
		Transport: transport,
	}
}
