package ios

import (
	"fmt"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

const driverName = "ios"

var deviceTypes = []string{
	"cisco_ios",
	"cisco_ios_ssh",
	"cisco_ios_telnet",
	"cisco_xe",
	"cisco_xe_telnet",
}

// Driver implements the SwitchDriver behaviour for Cisco IOS and IOS-XE switches.
type Driver struct{}

// New creates a new IOS driver instance.
func New() *Driver {
	return &Driver{}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// DeviceTypes returns the netmiko-style device types handled by this driver.
func (d *Driver) DeviceTypes() []string {
	out := make([]string, len(deviceTypes))
	copy(out, deviceTypes)
	return out
}

// AuthenticationSequence returns the IOS telnet login dialogue.
func (d *Driver) AuthenticationSequence(username, password string) []entities.AuthPrompt {
	return []entities.AuthPrompt{
		{WaitFor: `(?i)(username|login):\s*$`, SendCmd: username},
		{WaitFor: `(?i)password:\s*$`, SendCmd: password, Secret: true},
	}
}

// PromptPattern matches user and privileged exec prompts.
func (d *Driver) PromptPattern() string {
	return `\S+[>#]\s*$`
}

// AuthFailurePattern matches the messages IOS prints on rejected credentials.
func (d *Driver) AuthFailurePattern() string {
	return `(?i)(% ?authentication failed|% ?login invalid|access denied|bad passwords)`
}

// EnableCommand elevates to privileged exec.
func (d *Driver) EnableCommand() string {
	return "enable"
}

// SessionPreparation disables paging so command output arrives in one piece.
func (d *Driver) SessionPreparation() []string {
	return []string{"terminal length 0", "terminal width 511"}
}

// PingCommand returns the reachability probe issued from the switch.
func (d *Driver) PingCommand(target string) string {
	return fmt.Sprintf("ping %s", target)
}

// PingPromptPattern is what ends ping output; ping can run long and print partial lines.
func (d *Driver) PingPromptPattern() string {
	return `#`
}

// SnmpCommunityCommand lists configured SNMP communities.
func (d *Driver) SnmpCommunityCommand() string {
	return "show running-config | include snmp-server community"
}

// HostnameCommand shows the configured hostname line.
func (d *Driver) HostnameCommand() string {
	return "show running-config | include ^hostname"
}

// InterfaceStatusCommand returns the status command for one interface.
func (d *Driver) InterfaceStatusCommand(iface string) string {
	return fmt.Sprintf("show interface %s", iface)
}

// ParseInterfaceStatus extracts the "line protocol" status line.
func (d *Driver) ParseInterfaceStatus(raw string) string {
	return parseIOSInterfaceStatus(raw)
}

// ParsePingVerdict classifies ping output.
func (d *Driver) ParsePingVerdict(raw string) entities.Reachability {
	return parseIOSPingVerdict(raw)
}

// ParseSnmpRoCommunities extracts read-only community strings.
func (d *Driver) ParseSnmpRoCommunities(raw string) []string {
	return parseIOSSnmpRoCommunities(raw)
}

// ParseHostname extracts the configured hostname.
func (d *Driver) ParseHostname(raw string) string {
	return parseIOSHostname(raw)
}
