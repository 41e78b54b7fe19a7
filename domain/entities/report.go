package entities

import (
	"fmt"
	"time"
)

const (
	NotAvailable    = "N/A"
	StatusError     = "Error"
	SwitchReachable = "Reachable"
)

// ReportColumns is the fixed column order of the health check report
var ReportColumns = []string{
	"Switch Name",
	"Configured Hostname",
	"IP",
	"Catalyst Center Reachability",
	"Interface",
	"Status",
	"SNMP RO COMMUNITY",
	"Switch status",
}

// ReportRow is one flattened report record
type ReportRow struct {
	SwitchName         string
	ConfiguredHostname string
	IP                 string
	Reachability       string
	Interface          string
	Status             string
	SnmpRoCommunity    string
	SwitchStatus       string
}

// Values returns the row in ReportColumns order
func (r ReportRow) Values() []string {
	return []string{
		r.SwitchName,
		r.ConfiguredHostname,
		r.IP,
		r.Reachability,
		r.Interface,
		r.Status,
		r.SnmpRoCommunity,
		r.SwitchStatus,
	}
}

// FailureRow builds the single row emitted for a switch that could not be reached
func FailureRow(spec DeviceSpec, reason error) ReportRow {
	return ReportRow{
		SwitchName:         spec.DisplayName(),
		ConfiguredHostname: NotAvailable,
		IP:                 spec.IP,
		Reachability:       NotAvailable,
		Interface:          NotAvailable,
		Status:             NotAvailable,
		SnmpRoCommunity:    NotAvailable,
		SwitchStatus:       fmt.Sprintf("Connection failed: %v", reason),
	}
}

// InterfaceRow builds the row for one interface of a reachable switch
func InterfaceRow(spec DeviceSpec, result CheckResult, iface InterfaceResult) ReportRow {
	row := ReportRow{
		SwitchName:         spec.DisplayName(),
		ConfiguredHostname: result.HostnameField(),
		IP:                 spec.IP,
		Reachability:       result.ReachabilityField(),
		Interface:          iface.Name,
		Status:             iface.StatusLine,
		SnmpRoCommunity:    result.SnmpField(),
		SwitchStatus:       SwitchReachable,
	}
	if iface.Failed() {
		row.Status = StatusError
		row.SwitchStatus = fmt.Sprintf("Interface error: %v", iface.Err)
	}
	return row
}

// RunSummary counts reachable and failed switches over one run
type RunSummary struct {
	ReachableCount int
	FailedCount    int
}

// Total returns the number of switches processed
func (s RunSummary) Total() int {
	return s.ReachableCount + s.FailedCount
}

// RunReport describes a finished run
type RunReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    RunSummary
	ReportPath string
	RowCount   int
}
