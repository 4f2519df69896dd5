// Package aos talks to the ArubaOS 8 management REST API.
//
// A Session is one authenticated connection to one device (a conductor or a
// controller). It owns its UIDARUBA token, HTTP client and cookie jar; nothing
// is shared between sessions. Every Session must be closed exactly once.
package aos

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/newtron-network/apbss/pkg/util"
	"github.com/newtron-network/apbss/pkg/version"
)

// Defaults for the management API endpoint.
const (
	DefaultPort       = "4343"
	DefaultAPIVersion = "v1"
	DefaultTimeout    = 30 * time.Second

	// tokenParam is both the login response field and the query parameter
	// that authenticates every subsequent call.
	tokenParam = "UIDARUBA"

	maxBodySize = 64 << 20
)

// Target identifies a device and the credentials used to log in to it.
type Target struct {
	Host       string
	Port       string
	APIVersion string
	Username   string
	Password   string
	VerifyTLS  bool
}

// WithHost returns a copy of t pointed at a different device.
// Controllers are reached with the conductor's credentials.
func (t Target) WithHost(host string) Target {
	t.Host = host
	return t
}

// BaseURL returns https://<host>:<port>/<api>/
func (t Target) BaseURL() string {
	port := t.Port
	if port == "" {
		port = DefaultPort
	}
	api := t.APIVersion
	if api == "" {
		api = DefaultAPIVersion
	}
	return "https://" + net.JoinHostPort(t.Host, port) + "/" + api + "/"
}

// Option configures Open.
type Option func(*options)

type options struct {
	timeout time.Duration
	client  *http.Client
}

// WithTimeout sets the per-request transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient uses a copy of c as the session's client. The session
// still gets its own cookie jar if c has none.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// Session is an authenticated connection to one device.
type Session struct {
	host    string
	baseURL string
	token   string
	client  *http.Client
	closed  bool
}

// globalResult is the envelope of login and logout responses.
type globalResult struct {
	Result *struct {
		Token     *string `json:"UIDARUBA"`
		StatusStr string  `json:"status_str"`
	} `json:"_global_result"`
}

// Open logs in to the device described by t. It succeeds only on HTTP 200
// with a non-empty UIDARUBA token; anything else is an *util.AuthError.
func Open(ctx context.Context, t Target, opts ...Option) (*Session, error) {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		host:    t.Host,
		baseURL: t.BaseURL(),
		client:  newHTTPClient(t, o),
	}

	log := util.WithDevice(s.host)
	log.Debugf("Logging in as %s", t.Username)

	q := url.Values{"username": {t.Username}, "password": {t.Password}}
	status, body, err := s.get(ctx, "api/login", q)
	if err != nil {
		return nil, &util.AuthError{Host: s.host, Err: err}
	}
	if status != http.StatusOK {
		return nil, util.NewAuthError(s.host, status, "")
	}

	var gr globalResult
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, &util.AuthError{Host: s.host, Status: status, Details: "malformed login response", Err: err}
	}
	if gr.Result == nil {
		return nil, util.NewAuthError(s.host, status, "login response has no _global_result")
	}
	if gr.Result.Token == nil || *gr.Result.Token == "" {
		details := "login response has no " + tokenParam + " token"
		if gr.Result.StatusStr != "" {
			details += " (" + gr.Result.StatusStr + ")"
		}
		return nil, util.NewAuthError(s.host, status, details)
	}

	s.token = *gr.Result.Token
	log.Debug("Logged in")
	return s, nil
}

func newHTTPClient(t Target, o options) *http.Client {
	var c http.Client
	if o.client != nil {
		c = *o.client
	} else {
		c = http.Client{
			Timeout: o.timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !t.VerifyTLS, //nolint:gosec // controllers ship self-signed certificates
				},
			},
		}
	}
	if c.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList.
		c.Jar, _ = cookiejar.New(nil)
	}
	return &c
}

// Host returns the device address this session is connected to.
func (s *Session) Host() string {
	return s.host
}

// Token returns the session token, or "" once the session is closed.
func (s *Session) Token() string {
	return s.token
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed
}

// Close logs out and consumes the session. The handle is unusable afterwards
// even when logout fails; a failed logout is returned as *util.LogoutError
// and means the token may remain live on the device.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return util.ErrSessionClosed
	}
	s.closed = true
	token := s.token
	s.token = ""
	defer s.client.CloseIdleConnections()

	status, _, err := s.get(ctx, "api/logout", url.Values{tokenParam: {token}})
	if err != nil {
		return &util.LogoutError{Host: s.host, Err: err}
	}
	if status != http.StatusOK {
		return &util.LogoutError{Host: s.host, Status: status}
	}

	util.WithDevice(s.host).Debug("Logged out")
	return nil
}

// get issues one GET against baseURL+path and returns status and body.
func (s *Session) get(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			util.WithDevice(s.host).Debugf("Error closing response body: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}
