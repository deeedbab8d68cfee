package coop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const (
	loginPath         = "/services/login/"
	csrfCookieName    = "csrftoken"
	sessionCookieName = "sessionid"
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"
)

var (
	ErrMissingCredentials = errors.New("coop username and password are required")
	ErrLoginRejected      = errors.New("coop login rejected: no session cookie issued")
	ErrSessionExpired     = errors.New("coop session expired: redirected to login page")
)

// Credentials for the member-services site.
type Credentials struct {
	Username string
	Password string
}

// Session is a logged-in member-services client. It logs in lazily on the
// first fetch and again after the site bounces a request to the login page.
// Calls are serialized: the scheduled cycle and on-demand snapshots share one
// login and cookie jar, and never run a login handshake twice at once.
type Session struct {
	mu       sync.Mutex // Guards loggedIn and orders requests on the jar
	client   *http.Client
	baseURL  *url.URL
	loginURL *url.URL
	creds    Credentials
	loggedIn bool
	logger   *logrus.Entry
}

func NewSession(baseURL string, creds Credentials, timeout time.Duration, logger *logrus.Entry) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Session{
		client:   &http.Client{Jar: jar, Timeout: timeout},
		baseURL:  base,
		loginURL: base.ResolveReference(&url.URL{Path: loginPath}),
		creds:    creds,
		logger:   logger,
	}, nil
}

// Login performs the CSRF handshake and posts the credentials.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) error {
	s.loggedIn = false

	if _, _, err := s.do(ctx, http.MethodGet, s.loginURL.String(), nil, nil); err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}
	csrfToken := s.cookie(csrfCookieName)
	if csrfToken == "" {
		s.logger.Warn("Login page did not set a CSRF cookie, posting without token")
	}

	form := url.Values{
		"username":            {s.creds.Username},
		"password":            {s.creds.Password},
		"submit":              {"Log In"},
		"csrfmiddlewaretoken": {csrfToken},
	}
	headers := http.Header{
		"Content-Type": {"application/x-www-form-urlencoded"},
		"Referer":      {s.loginURL.String()},
		"X-Csrftoken":  {csrfToken},
	}
	status, _, err := s.do(ctx, http.MethodPost, s.loginURL.String(), strings.NewReader(form.Encode()), headers)
	if err != nil {
		return fmt.Errorf("failed to post login form: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("login form returned status %d", status)
	}
	if s.cookie(sessionCookieName) == "" {
		return ErrLoginRejected
	}

	s.loggedIn = true
	s.logger.WithField("username", s.creds.Username).Info("Logged in to member services")
	return nil
}

// Fetch implements PageFetcher.
func (s *Session) Fetch(ctx context.Context, pageURL string) (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		if err := s.login(ctx); err != nil {
			return 0, nil, err
		}
	}

	status, body, err := s.do(ctx, http.MethodGet, pageURL, nil, nil)
	if err != nil {
		return 0, nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		s.loggedIn = false
	}
	return status, body, nil
}

func (s *Session) do(ctx context.Context, method, target string, body io.Reader, headers http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	// Django sends unauthenticated page requests to the login form.
	if method == http.MethodGet && target != s.loginURL.String() && resp.Request.URL.Path == loginPath {
		s.loggedIn = false
		return resp.StatusCode, data, ErrSessionExpired
	}
	return resp.StatusCode, data, nil
}

func (s *Session) cookie(name string) string {
	for _, c := range s.client.Jar.Cookies(s.baseURL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
