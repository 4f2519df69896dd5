// apbss - ArubaOS 8 AP BSS table collector
//
// Logs in to a Mobility Conductor, reads the controller directory and the AP
// database, then visits every controller in turn and joins its BSS table
// against the AP database. The result is written as CSV (or JSON with -j).
//
// Connection settings come from a YAML credentials file; any flag given on
// the command line overrides the file:
//
//	aosDevice: 10.1.1.10
//	username: admin
//	password: secret
//	httpsVerify: false
//
// Examples:
//
//	apbss                                  # credentials.yaml in the current directory
//	apbss -t 10.1.1.10 -u admin            # prompts for the password
//	apbss -c lab.yaml -o site-a -j         # writes site-a.json
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/apbss/pkg/aos"
	"github.com/newtron-network/apbss/pkg/cli"
	"github.com/newtron-network/apbss/pkg/collector"
	"github.com/newtron-network/apbss/pkg/config"
	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/report"
	"github.com/newtron-network/apbss/pkg/util"
	"github.com/newtron-network/apbss/pkg/version"
)

// options holds the parsed command line.
type options struct {
	credentials string
	target      string
	username    string
	password    string
	output      string
	json        bool
	verify      bool
	port        string
	api         string
	timeout     time.Duration

	logLevel string
	logJSON  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Red("Error: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:               "apbss",
		Short:             "Collect the AP BSS table from an ArubaOS 8 Mobility Conductor",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Long: `apbss queries a Mobility Conductor for its managed controllers and AP
database, collects "show ap bss-table details" from every controller and
writes one row per BSS joined with its AP's group, model, serial and MAC.

Flags override values from the credentials file. HTTPS certificates are not
verified unless -v is given or the file sets httpsVerify.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := util.SetLogLevel(o.logLevel); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			if o.logJSON {
				util.SetJSONFormat()
			}
			util.SetRunID(uuid.NewString())
			cli.SetColor(term.IsTerminal(int(os.Stdout.Fd())))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ov := o.overrides(cmd.Flags().Changed("verify"))
			return run(cmd.Context(), o, ov, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.credentials, "credentials", "c", config.DefaultCredentialsFile, "Credentials file (YAML)")
	f.StringVarP(&o.target, "target", "t", "", "Conductor address")
	f.StringVarP(&o.username, "username", "u", "", "Username")
	f.StringVarP(&o.password, "password", "p", "", "Password")
	f.StringVarP(&o.output, "output", "o", report.DefaultName, "Output file name, without extension")
	f.BoolVarP(&o.json, "json", "j", false, "Write JSON instead of CSV")
	f.BoolVarP(&o.verify, "verify", "v", false, "Verify HTTPS certificates")
	f.StringVarP(&o.port, "port", "P", aos.DefaultPort, "Management API port")
	f.StringVarP(&o.api, "api", "a", aos.DefaultAPIVersion, "API version")
	f.DurationVar(&o.timeout, "timeout", aos.DefaultTimeout, "Per-request timeout")

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVar(&o.logJSON, "log-json", false, "Log in JSON format")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	})

	return cmd
}

func (o *options) overrides(verifySet bool) config.Overrides {
	ov := config.Overrides{
		Target:     o.target,
		Username:   o.username,
		Password:   o.password,
		Port:       o.port,
		APIVersion: o.api,
	}
	if verifySet {
		v := o.verify
		ov.Verify = &v
	}
	return ov
}

func run(ctx context.Context, o *options, ov config.Overrides, out io.Writer) error {
	cfg, err := config.Load(o.credentials, ov)
	if err != nil {
		return err
	}
	if cfg.AOSDevice != "" && cfg.Username != "" {
		if err := cfg.PromptPassword(int(os.Stdin.Fd()), out); err != nil {
			return err
		}
	}
	target, err := cfg.Resolve()
	if err != nil {
		return err
	}

	util.WithFields(map[string]interface{}{
		"device": target.Host,
		"port":   target.Port,
		"api":    target.APIVersion,
		"verify": target.VerifyTLS,
	}).Infof("Connecting to %s", target.BaseURL())

	c := collector.New(collector.NewOpener(target, aos.WithTimeout(o.timeout)))
	c.OnDirectory = func(conductor string, controllers []model.Device) {
		printDirectory(out, conductor, controllers)
	}
	c.OnController = func(res *collector.ControllerResult) {
		printProgress(out, res)
	}

	rep, err := c.Run(ctx, target.Host)
	if err != nil {
		return err
	}

	path := report.OutputPath(o.output, rep.Conductor, time.Now(), o.json)
	if err := report.WriteFile(path, rep.Rows, o.json); err != nil {
		return err
	}

	printSummary(out, rep, path)
	return nil
}

func printVersion(out io.Writer) {
	if version.Version == "dev" {
		fmt.Fprintln(out, "apbss dev build (use 'make build' for version info)")
	} else {
		fmt.Fprintf(out, "apbss %s (%s)\n", version.Version, version.GitCommit)
	}
}
