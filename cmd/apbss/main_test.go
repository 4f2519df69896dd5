package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newtron-network/apbss/internal/testutil"
	"github.com/newtron-network/apbss/pkg/util"
)

// startMobility starts one fake that answers as both the conductor and its
// only controller; the directory lists the controller at the fake's own
// address.
func startMobility(t *testing.T) *testutil.Controller {
	t.Helper()
	fake := testutil.StartController(t, &testutil.Controller{Name: "mm", Bodies: map[string]string{}})
	host, _ := fake.HostPort()

	for cmd, body := range testutil.ConductorBodies(
		[]testutil.Record{
			testutil.Switch("mm1", host, "MM-VA-500", "up", "master"),
			testutil.Switch("md-a", host, "A7010", "up", "MD"),
			testutil.Switch("md-b", "192.0.2.1", "A7010", "down", "MD"),
		},
		[]testutil.Record{
			testutil.AP("ap1", "hq", "535", "CNF0001", "aa:00:00:00:00:01"),
		},
	) {
		fake.Bodies[cmd] = body
	}
	for cmd, body := range testutil.ControllerBodies(
		testutil.BSS("aa:bb:cc:dd:ee:f0", "corp", "ap1"),
		testutil.BSS("aa:bb:cc:dd:ee:f1", "guest", "ap1"),
		testutil.BSS("aa:bb:cc:dd:ee:f2", "corp", "ghost"),
	) {
		fake.Bodies[cmd] = body
	}
	return fake
}

func writeCredentials(t *testing.T, host, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	content := fmt.Sprintf("aosDevice: %s\nusername: %s\npassword: %s\nhttpsVerify: false\n",
		host, testutil.Username, password)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_WritesCSV(t *testing.T) {
	fake := startMobility(t)
	host, port := fake.HostPort()
	creds := writeCredentials(t, host, testutil.Password)
	base := filepath.Join(t.TempDir(), "site-a")

	out, err := execute(t, "-c", creds, "-P", port, "-o", base)
	require.NoError(t, err)

	require.Contains(t, out, "Found the following Controllers on Mobility Conductor mm1:")
	require.Contains(t, out, "skipped (device down)")
	require.Contains(t, out, "Wrote 2 records from 2 controllers to "+base+".csv")
	require.Contains(t, out, "1 BSS entries dropped")

	data, err := os.ReadFile(base + ".csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Equal(t, []string{
		"bss,ess,ap_name,group,model,serial,wired-mac,color",
		"aa:bb:cc:dd:ee:f0,corp,ap1,hq,AP-535,CNF0001,aa:00:00:00:00:01,",
		"aa:bb:cc:dd:ee:f1,guest,ap1,hq,AP-535,CNF0001,aa:00:00:00:00:01,",
	}, lines)

	require.Len(t, fake.LogoutTokens(), 2, "conductor and controller sessions are both logged out")
}

func TestRoot_WritesJSON(t *testing.T) {
	fake := startMobility(t)
	host, port := fake.HostPort()
	base := filepath.Join(t.TempDir(), "site-a")

	_, err := execute(t,
		"-c", filepath.Join(t.TempDir(), "missing.yaml"),
		"-t", host, "-u", testutil.Username, "-p", testutil.Password,
		"-P", port, "-o", base, "-j")
	require.NoError(t, err)

	data, err := os.ReadFile(base + ".json")
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "", rows[0]["color"])
	require.Equal(t, "AP-535", rows[1]["model"])
}

func TestRoot_MissingSettings(t *testing.T) {
	_, err := execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, util.ErrValidationFailed)
	require.Contains(t, err.Error(), "target host is required")
	require.Contains(t, err.Error(), "username is required")
	require.Contains(t, err.Error(), "password is required")
}

func TestRoot_ConductorLoginFailure(t *testing.T) {
	fake := startMobility(t)
	host, port := fake.HostPort()
	creds := writeCredentials(t, host, "wrong")
	base := filepath.Join(t.TempDir(), "site-a")

	_, err := execute(t, "-c", creds, "-P", port, "-o", base)
	require.ErrorIs(t, err, util.ErrAuthFailed)
	require.NoFileExists(t, base+".csv")
	require.Empty(t, fake.Commands())
}

func TestRoot_LogsResolvedTarget(t *testing.T) {
	fake := startMobility(t)
	host, port := fake.HostPort()
	creds := writeCredentials(t, host, testutil.Password)
	base := filepath.Join(t.TempDir(), "site-a")

	var logs bytes.Buffer
	util.SetLogOutput(&logs)
	t.Cleanup(func() {
		util.SetLogOutput(os.Stderr)
		_ = util.SetLogLevel("warn")
	})

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", creds, "-P", port, "-o", base, "--log-level", "info"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out := logs.String()
	require.Contains(t, out, "Connecting to https://"+host+":"+port+"/v1/")
	require.Contains(t, out, "port="+port)
	require.Contains(t, out, "api=v1")
	require.Contains(t, out, "verify=false")
}

func TestRoot_BadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"version", "--log-level", "chatty"})
	require.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "apbss dev build")
}

func TestOverrides_Verify(t *testing.T) {
	o := &options{target: "mm", verify: true, port: "4343", api: "v1"}

	require.Nil(t, o.overrides(false).Verify, "unset flag keeps the file value")

	ov := o.overrides(true)
	require.NotNil(t, ov.Verify)
	require.True(t, *ov.Verify)
	require.Equal(t, "mm", ov.Target)
}
