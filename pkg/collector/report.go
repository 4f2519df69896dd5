package collector

import (
	"github.com/newtron-network/apbss/pkg/model"
)

// Report is the aggregated outcome of a run.
type Report struct {
	// Conductor is the conductor's name (or its address if unnamed).
	Conductor  string
	Conductors []model.Device
	APCount    int

	Controllers []ControllerResult

	// Rows holds every joined row in controller-processing order.
	Rows []model.ReportRow

	TotalRows            int
	ControllersProcessed int
	Skipped              map[model.SkipReason]int
	JoinMisses           int
	LogoutFailures       int

	// ConductorLogoutErr is set when the conductor session could not be
	// logged out; its token may remain live.
	ConductorLogoutErr error
}

// Aggregate concatenates per-controller rows in the order given. It does not
// reorder or deduplicate and performs no I/O.
func Aggregate(results []ControllerResult) *Report {
	r := &Report{
		Controllers: results,
		Skipped:     make(map[model.SkipReason]int),
	}

	for i := range results {
		res := &results[i]
		r.Rows = append(r.Rows, res.Rows...)
		r.JoinMisses += res.JoinMisses()
		if res.Skipped() {
			r.Skipped[res.Skip]++
		}
		if res.LogoutErr != nil {
			r.LogoutFailures++
		}
	}

	r.TotalRows = len(r.Rows)
	r.ControllersProcessed = len(results)
	return r
}

// SkippedTotal returns the number of controllers that contributed no rows
// for any reason.
func (r *Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}
