// Package inventory reads the conductor's view of the network: the managed
// device directory and the AP database.
package inventory

import (
	"context"
	"fmt"

	"github.com/newtron-network/apbss/pkg/aos"
	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/util"
)

// Show commands and their root collections.
const (
	SwitchesCommand = "show switches"
	SwitchesTable   = "All Switches"

	APDatabaseCommand = "show ap database long"
	APDatabaseTable   = "AP Database"
)

// "show switches" columns.
const (
	colName   = "Name"
	colIP     = "IP Address"
	colModel  = "Model"
	colStatus = "Status"
	colType   = "Type"
)

// MappingShower runs attribute-mapping show commands. *aos.Session
// satisfies it.
type MappingShower interface {
	Host() string
	ShowMapping(ctx context.Context, command string) (aos.Mapping, error)
}

// ListDevices enumerates every device the conductor manages and partitions
// them by role, preserving the order of the response.
func ListDevices(ctx context.Context, s MappingShower) (conductors, controllers []model.Device, err error) {
	m, err := s.ShowMapping(ctx, SwitchesCommand)
	if err != nil {
		return nil, nil, fmt.Errorf("listing devices: %w", err)
	}

	rows, err := m.Rows(SwitchesTable)
	if err != nil {
		return nil, nil, fmt.Errorf("listing devices: %w", util.NewRequestError(s.Host(), SwitchesCommand, 0, err))
	}

	for _, r := range rows {
		d := model.Device{
			Name:      r.Get(colName),
			IPAddress: r.Get(colIP),
			Model:     r.Get(colModel),
			Status:    r.Get(colStatus),
			Type:      r.Get(colType),
		}
		d.Role = model.RoleForType(d.Type)

		if d.Role == model.RoleConductor {
			conductors = append(conductors, d)
		} else {
			controllers = append(controllers, d)
		}
	}

	util.WithDevice(s.Host()).Debugf("Directory lists %d conductors, %d controllers", len(conductors), len(controllers))
	return conductors, controllers, nil
}

// ConductorName returns the name of the conductor reachable at host, or host
// itself when none matches.
func ConductorName(conductors []model.Device, host string) string {
	for _, c := range conductors {
		if c.IPAddress == host && c.Name != "" {
			return c.Name
		}
	}
	return host
}
