package entities

import (
	"strings"

	"go.opentelemetry.io/collector/config/configopaque"
)

const (
	TransportSSH    = "ssh"
	TransportTelnet = "telnet"

	telnetTypeSuffix = "_telnet"
)

// DeviceSpec defines a single switch to inspect. Identity is the IP.
type DeviceSpec struct {
	Name           string              `yaml:"name"`
	IP             string              `yaml:"ip"`
	DeviceType     string              `yaml:"device_type"`
	Transport      string              `yaml:"transport"`
	Port           int                 `yaml:"port"`
	Username       string              `yaml:"username"`
	Password       configopaque.String `yaml:"password"`
	EnablePassword configopaque.String `yaml:"enable_password"`
	PingIP         string              `yaml:"ping_ip"`
	Interfaces     []string            `yaml:"interfaces"`
}

// Inventory is the ordered list of switches loaded for one run
type Inventory []DeviceSpec

// DisplayName returns the configured name or "Unknown" when none was given
func (d DeviceSpec) DisplayName() string {
	if strings.TrimSpace(d.Name) == "" {
		return "Unknown"
	}
	return d.Name
}

// PingTarget returns the address the switch should ping, falling back to its own IP
func (d DeviceSpec) PingTarget() string {
	if strings.TrimSpace(d.PingIP) != "" {
		return d.PingIP
	}
	return d.IP
}

// TransportID returns the normalized session transport for the switch.
// An explicit transport wins; otherwise a device type ending in "_telnet" selects telnet.
func (d DeviceSpec) TransportID() string {
	if t := strings.ToLower(strings.TrimSpace(d.Transport)); t != "" {
		return t
	}
	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(d.DeviceType)), telnetTypeSuffix) {
		return TransportTelnet
	}
	return TransportSSH
}

// DialPort returns the TCP port for the selected transport
func (d DeviceSpec) DialPort() int {
	if d.Port > 0 {
		return d.Port
	}
	if d.TransportID() == TransportTelnet {
		return 23
	}
	return 22
}
