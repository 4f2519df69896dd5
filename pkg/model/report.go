package model

// ModelPrefix is prepended to the AP hardware model in report rows.
const ModelPrefix = "AP-"

// Columns is the report column order; the header row uses these names verbatim.
var Columns = []string{"bss", "ess", "ap_name", "group", "model", "serial", "wired-mac", "color"}

// ReportRow is one joined BSS/AP record.
// Color is reserved and always empty.
type ReportRow struct {
	BSS      string `json:"bss"`
	ESS      string `json:"ess"`
	APName   string `json:"ap_name"`
	Group    string `json:"group"`
	Model    string `json:"model"`
	Serial   string `json:"serial"`
	WiredMAC string `json:"wired-mac"`
	Color    string `json:"color"`
}

// NewReportRow joins a BSS entry with its access point.
func NewReportRow(bss BssEntry, ap AccessPoint) ReportRow {
	return ReportRow{
		BSS:      bss.BSS,
		ESS:      bss.ESS,
		APName:   bss.APName,
		Group:    ap.Group,
		Model:    ModelPrefix + ap.Model,
		Serial:   ap.Serial,
		WiredMAC: ap.WiredMAC,
		Color:    "",
	}
}

// Values returns the row's fields in Columns order.
func (r ReportRow) Values() []string {
	return []string{r.BSS, r.ESS, r.APName, r.Group, r.Model, r.Serial, r.WiredMAC, r.Color}
}

// SkipReason records why a controller contributed no rows
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipDeviceDown       SkipReason = "device down"
	SkipLoginFailed      SkipReason = "login failed"
	SkipCollectionFailed SkipReason = "collection failed"
)
