package model

// AccessPoint is one record from the conductor's AP database
type AccessPoint struct {
	Name     string `json:"name"`
	Group    string `json:"group"`
	Model    string `json:"model"` // hardware model, e.g. "535"
	Serial   string `json:"serial"`
	WiredMAC string `json:"wired_mac"`
}

// BssEntry is one row of a controller's BSS table
type BssEntry struct {
	BSS    string `json:"bss"`
	ESS    string `json:"ess"`
	APName string `json:"ap_name"`
}
