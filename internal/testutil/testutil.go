// Package testutil provides a fake ArubaOS management API for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

// Default credentials accepted by a Controller.
const (
	Username = "admin"
	Password = "secret"
)

// Controller is a fake conductor or controller speaking the login,
// showcommand and logout endpoints over TLS.
type Controller struct {
	// Name labels the controller in test failures.
	Name string

	// Token returned on successful login.
	Token string

	// AcceptPassword, when non-empty, replaces Password as the only
	// password the fake accepts.
	AcceptPassword string

	// Bodies maps a full show command ("show switches") to its raw response.
	Bodies map[string]string

	// CommandStatus forces an HTTP status for a show command.
	CommandStatus map[string]int

	// LoginStatus, when non-zero, forces the login response status.
	LoginStatus int
	// LoginBody, when non-empty, replaces the login response body.
	LoginBody string

	// LogoutStatus, when non-zero, forces the logout response status.
	LogoutStatus int

	server *httptest.Server

	mu           sync.Mutex
	logins       int
	commands     []string
	logoutTokens []string
}

// StartController starts c on an httptest TLS server. The server is closed
// via t.Cleanup.
func StartController(t *testing.T, c *Controller) *Controller {
	t.Helper()
	if c.Token == "" {
		c.Token = "tok-" + c.Name
	}
	c.server = httptest.NewTLSServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.server.Close)
	return c
}

// Close stops the server early, making the controller unreachable.
func (c *Controller) Close() {
	c.server.Close()
}

// HostPort returns the host and port the fake listens on.
func (c *Controller) HostPort() (string, string) {
	u, _ := url.Parse(c.server.URL)
	host, port, _ := net.SplitHostPort(u.Host)
	return host, port
}

// RotateToken changes the token the fake accepts, invalidating sessions
// opened earlier.
func (c *Controller) RotateToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Token = token
}

// Logins returns the number of login attempts received.
func (c *Controller) Logins() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logins
}

// Commands returns the show commands received, in order.
func (c *Controller) Commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.commands...)
}

// LogoutTokens returns the UIDARUBA values of each logout request.
func (c *Controller) LogoutTokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.logoutTokens...)
}

func (c *Controller) serve(w http.ResponseWriter, r *http.Request) {
	// /<api>/<endpoint>
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	switch parts[1] {
	case "api/login":
		c.login(w, q)
	case "configuration/showcommand":
		c.show(w, q)
	case "api/logout":
		c.logout(w, q)
	default:
		http.NotFound(w, r)
	}
}

func (c *Controller) login(w http.ResponseWriter, q url.Values) {
	c.mu.Lock()
	c.logins++
	c.mu.Unlock()

	status := http.StatusOK
	if c.LoginStatus != 0 {
		status = c.LoginStatus
	}
	body := c.LoginBody
	if body == "" {
		want := Password
		if c.AcceptPassword != "" {
			want = c.AcceptPassword
		}
		if q.Get("username") != Username || q.Get("password") != want {
			status = http.StatusUnauthorized
			body = globalResult("", "1", "Authentication failed")
		} else {
			c.mu.Lock()
			token := c.Token
			c.mu.Unlock()
			body = globalResult(token, "0", "You've logged in successfully.")
		}
	}
	writeJSON(w, status, body)
}

func (c *Controller) show(w http.ResponseWriter, q url.Values) {
	cmd := q.Get("command")
	c.mu.Lock()
	c.commands = append(c.commands, cmd)
	c.mu.Unlock()

	c.mu.Lock()
	token := c.Token
	c.mu.Unlock()
	if q.Get("UIDARUBA") != token {
		writeJSON(w, http.StatusUnauthorized, globalResult("", "1", "invalid session"))
		return
	}
	if status, ok := c.CommandStatus[cmd]; ok {
		writeJSON(w, status, `{}`)
		return
	}
	body, ok := c.Bodies[cmd]
	if !ok {
		writeJSON(w, http.StatusBadRequest, `{"_data":["% Invalid input detected"]}`)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (c *Controller) logout(w http.ResponseWriter, q url.Values) {
	c.mu.Lock()
	c.logoutTokens = append(c.logoutTokens, q.Get("UIDARUBA"))
	c.mu.Unlock()

	status := http.StatusOK
	if c.LogoutStatus != 0 {
		status = c.LogoutStatus
	}
	writeJSON(w, status, globalResult("", "0", "You've logged out successfully."))
}

func globalResult(token, status, msg string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"_global_result": map[string]string{
			"status":     status,
			"status_str": msg,
			"UIDARUBA":   token,
		},
	})
	return string(b)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
