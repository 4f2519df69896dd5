package aos

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newtron-network/apbss/internal/testutil"
	"github.com/newtron-network/apbss/pkg/util"
)

func targetFor(c *testutil.Controller) Target {
	host, port := c.HostPort()
	return Target{
		Host:       host,
		Port:       port,
		APIVersion: DefaultAPIVersion,
		Username:   testutil.Username,
		Password:   testutil.Password,
	}
}

func TestTarget_BaseURL(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{"defaults", Target{Host: "10.0.0.1"}, "https://10.0.0.1:4343/v1/"},
		{"explicit", Target{Host: "mm.example.net", Port: "8443", APIVersion: "v2"}, "https://mm.example.net:8443/v2/"},
		{"ipv6", Target{Host: "fd00::1", Port: "4343", APIVersion: "v1"}, "https://[fd00::1]:4343/v1/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.target.BaseURL())
		})
	}
}

func TestTarget_WithHost(t *testing.T) {
	base := Target{Host: "mm1", Port: "4343", Username: "admin", Password: "pw", VerifyTLS: true}
	md := base.WithHost("10.1.1.2")

	require.Equal(t, "10.1.1.2", md.Host)
	require.Equal(t, "mm1", base.Host, "WithHost must not modify the original")
	require.Equal(t, base.Username, md.Username)
	require.Equal(t, base.Password, md.Password)
	require.True(t, md.VerifyTLS)
}

func TestOpen_ReturnsToken(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"abc", "e8a3f2c1-7d44-4b8e-9a55-0f6c1d2e3b4a", "x"} {
		fake := testutil.StartController(t, &testutil.Controller{Name: "mm", Token: token})

		s, err := Open(testutil.Context(t), targetFor(fake))
		require.NoError(t, err)
		require.Equal(t, token, s.Token())
		require.False(t, s.Closed())
		require.Equal(t, 1, fake.Logins())
	}
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fake     *testutil.Controller
		password string
	}{
		{
			name:     "bad credentials",
			fake:     &testutil.Controller{Name: "mm"},
			password: "wrong",
		},
		{
			name: "non-200 with token",
			fake: &testutil.Controller{Name: "mm", LoginStatus: http.StatusInternalServerError},
		},
		{
			name: "malformed body",
			fake: &testutil.Controller{Name: "mm", LoginBody: `<html>login</html>`},
		},
		{
			name: "missing global result",
			fake: &testutil.Controller{Name: "mm", LoginBody: `{"status":"ok"}`},
		},
		{
			name: "empty token",
			fake: &testutil.Controller{Name: "mm", LoginBody: `{"_global_result":{"status":"0","UIDARUBA":""}}`},
		},
		{
			name: "token field absent",
			fake: &testutil.Controller{Name: "mm", LoginBody: `{"_global_result":{"status":"1","status_str":"denied"}}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.StartController(t, tt.fake)
			target := targetFor(fake)
			if tt.password != "" {
				target.Password = tt.password
			}

			s, err := Open(testutil.Context(t), target)
			require.Nil(t, s)
			require.Error(t, err)
			require.True(t, errors.Is(err, util.ErrAuthFailed), "got %v", err)

			var authErr *util.AuthError
			require.True(t, errors.As(err, &authErr))
			require.Equal(t, target.Host, authErr.Host)
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	fake := testutil.StartController(t, &testutil.Controller{Name: "gone"})
	target := targetFor(fake)
	fake.Close()

	_, err := Open(testutil.Context(t), target, WithTimeout(2*time.Second))
	require.ErrorIs(t, err, util.ErrAuthFailed)
}

func TestOpen_VerifyTLSRejectsSelfSigned(t *testing.T) {
	t.Parallel()

	fake := testutil.StartController(t, &testutil.Controller{Name: "mm"})
	target := targetFor(fake)
	target.VerifyTLS = true

	_, err := Open(testutil.Context(t), target)
	require.ErrorIs(t, err, util.ErrAuthFailed)
	require.Equal(t, 0, fake.Logins(), "handshake should fail before the request is served")
}

func TestClose_IssuesLogoutAndConsumesHandle(t *testing.T) {
	t.Parallel()

	fake := testutil.StartController(t, &testutil.Controller{Name: "mm", Token: "tok-1"})
	ctx := testutil.Context(t)

	s, err := Open(ctx, targetFor(fake))
	require.NoError(t, err)

	require.NoError(t, s.Close(ctx))
	require.True(t, s.Closed())
	require.Empty(t, s.Token())
	require.Equal(t, []string{"tok-1"}, fake.LogoutTokens())

	err = s.Close(ctx)
	require.ErrorIs(t, err, util.ErrSessionClosed)
	require.Len(t, fake.LogoutTokens(), 1, "second Close must not reach the device")

	_, err = s.Show(ctx, testutil.CmdSwitches, FormatMapping)
	require.ErrorIs(t, err, util.ErrSessionClosed)
	require.Empty(t, fake.Commands())
}

func TestClose_LogoutFailure(t *testing.T) {
	t.Parallel()

	fake := testutil.StartController(t, &testutil.Controller{Name: "mm", LogoutStatus: http.StatusServiceUnavailable})
	ctx := testutil.Context(t)

	s, err := Open(ctx, targetFor(fake))
	require.NoError(t, err)

	err = s.Close(ctx)
	require.ErrorIs(t, err, util.ErrLogoutFailed)

	var logoutErr *util.LogoutError
	require.True(t, errors.As(err, &logoutErr))
	require.Equal(t, http.StatusServiceUnavailable, logoutErr.Status)
	require.True(t, s.Closed(), "a failed logout still consumes the handle")
}

func TestClose_CancelledContext(t *testing.T) {
	t.Parallel()

	fake := testutil.StartController(t, &testutil.Controller{Name: "mm"})
	s, err := Open(testutil.Context(t), targetFor(fake))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Close(ctx)
	require.ErrorIs(t, err, util.ErrLogoutFailed)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, s.Closed())
}
