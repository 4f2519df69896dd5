package model

import "strings"

// Role classifies a managed device as seen by the conductor.
type Role string

const (
	RoleConductor  Role = "conductor"
	RoleController Role = "controller"
)

// StatusUp is the operational status of a reachable device.
const StatusUp = "up"

// conductorTypes are the "show switches" Type values that mark a conductor.
// Anything else (MD, unknown) is a controller.
var conductorTypes = map[string]bool{
	"master":    true,
	"conductor": true,
	"standby":   true,
}

// Device represents one managed network element known to the conductor
type Device struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Model     string `json:"model"`
	Status    string `json:"status"` // up, down
	Type      string `json:"type"`   // raw Type column
	Role      Role   `json:"role"`
}

// RoleForType maps the raw "show switches" Type column to a Role.
func RoleForType(typ string) Role {
	if conductorTypes[strings.ToLower(strings.TrimSpace(typ))] {
		return RoleConductor
	}
	return RoleController
}

// IsUp returns true if the device reports operational status "up"
func (d *Device) IsUp() bool {
	return strings.EqualFold(d.Status, StatusUp)
}

// String returns "<model> <name> at <ip>" for console listings
func (d *Device) String() string {
	return d.Model + " " + d.Name + " at " + d.IPAddress
}
