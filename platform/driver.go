package platform

import (
	"fmt"
	"strings"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/platform/ios"
)

// SwitchDriver defines the behaviour required to health check a switching platform.
type SwitchDriver interface {
	Name() string
	// DeviceTypes lists the inventory device_type values served by this driver
	DeviceTypes() []string

	// AuthenticationSequence returns the telnet login sequence for this platform
	AuthenticationSequence(username, password string) []entities.AuthPrompt
	// PromptPattern matches any CLI prompt of the platform
	PromptPattern() string
	// AuthFailurePattern matches the banner printed when login is rejected
	AuthFailurePattern() string
	EnableCommand() string
	// SessionPreparation returns commands issued once after login
	SessionPreparation() []string

	PingCommand(target string) string
	PingPromptPattern() string
	SnmpCommunityCommand() string
	HostnameCommand() string
	InterfaceStatusCommand(iface string) string

	ParseInterfaceStatus(raw string) string
	ParsePingVerdict(raw string) entities.Reachability
	ParseSnmpRoCommunities(raw string) []string
	ParseHostname(raw string) string
}

var registry = []SwitchDriver{
	ios.New(),
}

// Get returns the driver serving a device type.
func Get(deviceType string) (SwitchDriver, error) {
	normalized := normalizeName(deviceType)
	for _, driver := range registry {
		if driver.Name() == normalized {
			return driver, nil
		}
		for _, dt := range driver.DeviceTypes() {
			if dt == normalized {
				return driver, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown device type: %s", deviceType)
}

// Available returns all registered drivers.
func Available() []SwitchDriver {
	out := make([]SwitchDriver, len(registry))
	copy(out, registry)
	return out
}

// DeviceTypes returns every device type accepted by the registered drivers.
func DeviceTypes() []string {
	var out []string
	for _, driver := range registry {
		out = append(out, driver.DeviceTypes()...)
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
