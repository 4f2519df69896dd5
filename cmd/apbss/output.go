package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/newtron-network/apbss/pkg/cli"
	"github.com/newtron-network/apbss/pkg/collector"
	"github.com/newtron-network/apbss/pkg/model"
)

const progressWidth = 32

func printDirectory(out io.Writer, conductor string, controllers []model.Device) {
	fmt.Fprintf(out, "Found the following Controllers on Mobility Conductor %s:\n", cli.Bold(conductor))
	t := cli.NewTable(out, "NAME", "ADDRESS", "MODEL", "STATUS").WithPrefix("  ")
	for _, d := range controllers {
		t.Row(d.Name, d.IPAddress, d.Model, statusLabel(d))
	}
	t.Flush()
	fmt.Fprintln(out)
}

func statusLabel(d model.Device) string {
	if d.IsUp() {
		return cli.Green(d.Status)
	}
	return cli.Red(d.Status)
}

func printProgress(out io.Writer, res *collector.ControllerResult) {
	name := cli.DotPad(res.Device.Name, progressWidth)
	if res.Skipped() {
		fmt.Fprintf(out, "%s %s\n", name, cli.Yellow("skipped ("+string(res.Skip)+")"))
		return
	}
	line := fmt.Sprintf("%s %d entries", name, len(res.Rows))
	if n := res.JoinMisses(); n > 0 {
		line += cli.Dim(fmt.Sprintf(" (%d unmatched)", n))
	}
	fmt.Fprintln(out, line)
}

func printSummary(out io.Writer, rep *collector.Report, path string) {
	fmt.Fprintln(out)
	t := cli.NewTable(out, "CONTROLLER", "ADDRESS", "RESULT", "ROWS", "UNMATCHED")
	for i := range rep.Controllers {
		res := &rep.Controllers[i]
		result := cli.Green("ok")
		switch {
		case res.Skipped():
			result = cli.Yellow(string(res.Skip))
		case res.LogoutErr != nil:
			result = cli.Yellow("logout failed")
		}
		t.Row(res.Device.Name, res.Device.IPAddress, result,
			strconv.Itoa(len(res.Rows)), strconv.Itoa(res.JoinMisses()))
	}
	t.Flush()

	fmt.Fprintf(out, "\nWrote %s from %s to %s\n",
		cli.Plural(rep.TotalRows, "record"), cli.Plural(rep.ControllersProcessed, "controller"), path)
	if n := rep.SkippedTotal(); n > 0 {
		fmt.Fprintln(out, cli.Yellow(fmt.Sprintf("%s skipped:", cli.Plural(n, "controller"))))
		for _, reason := range []model.SkipReason{model.SkipDeviceDown, model.SkipLoginFailed, model.SkipCollectionFailed} {
			if c := rep.Skipped[reason]; c > 0 {
				fmt.Fprintf(out, "  %s: %d\n", reason, c)
			}
		}
	}
	if rep.JoinMisses > 0 {
		fmt.Fprintf(out, "%d BSS entries dropped: AP not in the conductor's AP database\n", rep.JoinMisses)
	}
	if rep.LogoutFailures > 0 || rep.ConductorLogoutErr != nil {
		fmt.Fprintln(out, cli.Yellow("Some sessions could not be logged out; their tokens may remain live until they expire."))
	}
}
