package entities

import (
	"fmt"
	"strings"
)

// Reachability is the verdict of a ping issued from the switch
type Reachability int

const (
	ReachabilityUnknown Reachability = iota
	ReachabilitySuccess
	ReachabilityFailure
)

func (r Reachability) String() string {
	switch r {
	case ReachabilitySuccess:
		return "Success"
	case ReachabilityFailure:
		return "Failure"
	default:
		return "Unknown Result"
	}
}

const (
	StatusLineNotFound = "Status line not found."
	HostnameUnknown    = "Unknown"
	CommunityNotFound  = "Not Found"
)

// CheckResult holds everything learned from one switch over one session.
// Each *Err field records a command failure for that check only.
type CheckResult struct {
	Hostname          string
	HostnameErr       error
	Reachability      Reachability
	PingErr           error
	SnmpRoCommunities []string
	SnmpErr           error
	Interfaces        []InterfaceResult
}

// HostnameField renders the configured hostname column
func (c CheckResult) HostnameField() string {
	if c.HostnameErr != nil {
		return fmt.Sprintf("Error: %v", c.HostnameErr)
	}
	return c.Hostname
}

// ReachabilityField renders the reachability column
func (c CheckResult) ReachabilityField() string {
	if c.PingErr != nil {
		return fmt.Sprintf("Ping Error: %v", c.PingErr)
	}
	return c.Reachability.String()
}

// SnmpField renders the SNMP RO community column
func (c CheckResult) SnmpField() string {
	if c.SnmpErr != nil {
		return fmt.Sprintf("Error: %v", c.SnmpErr)
	}
	if len(c.SnmpRoCommunities) == 0 {
		return CommunityNotFound
	}
	return strings.Join(c.SnmpRoCommunities, ", ")
}
