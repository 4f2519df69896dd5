package collector

import (
	"context"
	"fmt"

	"github.com/newtron-network/apbss/pkg/inventory"
	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/util"
)

// Collector drives a full collection run. Controllers are visited one at a
// time in directory order.
type Collector struct {
	Open Opener

	// OnDirectory, if set, is called once the directory is known and before
	// any controller is contacted.
	OnDirectory func(conductor string, controllers []model.Device)
	// OnController, if set, is called after each controller is collected.
	OnController func(res *ControllerResult)
}

// New returns a Collector using open for every login.
func New(open Opener) *Collector {
	return &Collector{Open: open}
}

// Run logs in to the conductor at host, reads the directory and AP index,
// collects every controller and aggregates the result. Conductor-scoped
// failures (login, directory, index) abort the run and are returned; the
// conductor session is logged out on every path.
func (c *Collector) Run(ctx context.Context, host string) (report *Report, err error) {
	log := util.WithDevice(host)

	conn, err := c.Open(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("conductor: %w", err)
	}
	log.Info("Logged in to conductor")

	defer func() {
		logoutErr := closeConn(ctx, conn)
		if logoutErr != nil {
			log.Warn(logoutErr)
		} else {
			log.Info("Logged out of conductor")
		}
		if report != nil {
			report.ConductorLogoutErr = logoutErr
		}
	}()

	conductors, controllers, err := inventory.ListDevices(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("conductor %s: %w", host, err)
	}
	name := inventory.ConductorName(conductors, host)

	idx, err := inventory.BuildIndex(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("conductor %s: %w", name, err)
	}

	if c.OnDirectory != nil {
		c.OnDirectory(name, controllers)
	}

	results := make([]ControllerResult, 0, len(controllers))
	for _, dev := range controllers {
		res := CollectController(ctx, dev, idx, c.Open)
		if c.OnController != nil {
			c.OnController(&res)
		}
		results = append(results, res)
	}

	report = Aggregate(results)
	report.Conductor = name
	report.Conductors = conductors
	report.APCount = idx.Len()
	return report, nil
}
