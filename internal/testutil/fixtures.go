package testutil

import "encoding/json"

// Show commands and their root collections.
const (
	CmdSwitches   = "show switches"
	CmdAPDatabase = "show ap database long"
	CmdBSSTable   = "show ap bss-table details"

	TableSwitches   = "All Switches"
	TableAPDatabase = "AP Database"
	TableBSS        = "Aruba AP BSS Table"
)

// Record is one row of a show table.
type Record map[string]interface{}

// Switch returns a "show switches" row.
func Switch(name, ip, model, status, typ string) Record {
	return Record{
		"Name":       name,
		"IP Address": ip,
		"Model":      model,
		"Status":     status,
		"Type":       typ,
		"Version":    "8.10.0.7_88001",
	}
}

// AP returns a "show ap database long" row.
func AP(name, group, apType, serial, wiredMAC string) Record {
	return Record{
		"Name":              name,
		"Group":             group,
		"AP Type":           apType,
		"Serial #":          serial,
		"Wired MAC Address": wiredMAC,
		"IP Address":        "10.20.0.1",
		"Status":            "Up 3d:2h:1m:0s",
		"Flags":             nil,
	}
}

// BSS returns a "show ap bss-table details" row.
func BSS(bss, ess, apName string) Record {
	return Record{
		"bss":     bss,
		"ess":     ess,
		"ap name": apName,
		"s/p":     "0/0",
		"channel": "36E",
		"tx-pwr":  18,
	}
}

// TableBody renders a JSON show response holding one table.
func TableBody(table string, rows ...Record) string {
	if rows == nil {
		rows = []Record{}
	}
	var meta []string
	if len(rows) > 0 {
		for k := range rows[0] {
			meta = append(meta, k)
		}
	}
	b, _ := json.Marshal(map[string]interface{}{
		table:   rows,
		"_meta": meta,
	})
	return string(b)
}

// ConductorBodies returns the show responses a conductor serves for the
// given directory and AP inventory.
func ConductorBodies(switches []Record, aps []Record) map[string]string {
	return map[string]string{
		CmdSwitches:   TableBody(TableSwitches, switches...),
		CmdAPDatabase: TableBody(TableAPDatabase, aps...),
	}
}

// ControllerBodies returns the show responses a controller serves for its
// BSS table.
func ControllerBodies(bss ...Record) map[string]string {
	return map[string]string{
		CmdBSSTable: TableBody(TableBSS, bss...),
	}
}
