package ios

import (
	"reflect"
	"testing"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

func TestParseIOSInterfaceStatus(t *testing.T) {
	output := `GigabitEthernet1/0/1 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet, address is 0011.2233.4455 (bia 0011.2233.4455)
  MTU 1500 bytes, BW 1000000 Kbit/sec, DLY 10 usec,
`
	got := parseIOSInterfaceStatus(output)
	expected := "GigabitEthernet1/0/1 is up, line protocol is up (connected)"
	if got != expected {
		t.Fatalf("unexpected status line: %q", got)
	}
}

func TestParseIOSInterfaceStatus_FirstMatchTrimmed(t *testing.T) {
	output := "\r\n   Vlan10 is administratively down, line protocol is down  \r\nTunnel0 is up, line protocol is up\r\n"
	got := parseIOSInterfaceStatus(output)
	if got != "Vlan10 is administratively down, line protocol is down" {
		t.Fatalf("unexpected status line: %q", got)
	}
}

func TestParseIOSInterfaceStatus_NotFound(t *testing.T) {
	inputs := []string{
		"",
		"                 ^\n% Invalid input detected at '^' marker.",
		"garbage\nmore garbage",
	}
	for _, input := range inputs {
		if got := parseIOSInterfaceStatus(input); got != "Status line not found." {
			t.Errorf("parseIOSInterfaceStatus(%q) = %q, want sentinel", input, got)
		}
	}
}

func TestParseIOSPingVerdict(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected entities.Reachability
	}{
		{name: "no replies", output: "Success rate is 0 percent (0/5)", expected: entities.ReachabilityFailure},
		{name: "partial replies", output: "Success rate is 80 percent (4/5), round-trip min/avg/max = 1/1/2 ms", expected: entities.ReachabilitySuccess},
		{
			name: "full ping output",
			output: `Type escape sequence to abort.
Sending 5, 100-byte ICMP Echos to 10.1.1.1, timeout is 2 seconds:
!!!!!
Success rate is 100 percent (5/5), round-trip min/avg/max = 1/2/4 ms`,
			expected: entities.ReachabilitySuccess,
		},
		{name: "garbage", output: "garbage", expected: entities.ReachabilityUnknown},
		{name: "unresolvable", output: "% Unrecognized host or address, or protocol not running.", expected: entities.ReachabilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseIOSPingVerdict(tt.output); got != tt.expected {
				t.Errorf("parseIOSPingVerdict() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseIOSSnmpRoCommunities(t *testing.T) {
	output := "snmp-server community public RO\nsnmp-server community secret RW\n"
	got := parseIOSSnmpRoCommunities(output)
	if !reflect.DeepEqual(got, []string{"public"}) {
		t.Fatalf("unexpected communities: %v", got)
	}
}

func TestParseIOSSnmpRoCommunities_Variants(t *testing.T) {
	output := `snmp-server community monitor ro 10
snmp-server community public RO
snmp-server community public RO 20
snmp-server community
snmp-server community netro RW
`
	got := parseIOSSnmpRoCommunities(output)
	expected := []string{"monitor", "public", "netro"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected communities: %v", got)
	}
}

func TestParseIOSSnmpRoCommunities_None(t *testing.T) {
	got := parseIOSSnmpRoCommunities("")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestParseIOSHostname(t *testing.T) {
	tests := []struct {
		output   string
		expected string
	}{
		{output: "hostname core-sw-01\n", expected: "core-sw-01"},
		{output: "  hostname edge-1  \r\n", expected: "edge-1"},
		{output: "", expected: "Unknown"},
		{output: "hostname", expected: "Unknown"},
		{output: "% Invalid input detected", expected: "Unknown"},
		{output: "hostnames are fun", expected: "Unknown"},
	}
	for _, tt := range tests {
		if got := parseIOSHostname(tt.output); got != tt.expected {
			t.Errorf("parseIOSHostname(%q) = %q, want %q", tt.output, got, tt.expected)
		}
	}
}
