package ios

import (
	"strings"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

const (
	lineProtocolMarker   = "line protocol is"
	pingZeroSuccess      = "Success rate is 0 percent"
	pingSuccessRate      = "Success rate is"
	snmpCommunityMarker  = "snmp-server community"
	readOnlyToken        = "RO"
	hostnameToken        = "hostname"
	communityFieldOffset = 2
)

func parseIOSInterfaceStatus(output string) string {
	for _, line := range splitLines(output) {
		if strings.Contains(line, lineProtocolMarker) {
			return strings.TrimSpace(line)
		}
	}
	return entities.StatusLineNotFound
}

func parseIOSPingVerdict(output string) entities.Reachability {
	switch {
	case strings.Contains(output, pingZeroSuccess):
		return entities.ReachabilityFailure
	case strings.Contains(output, pingSuccessRate):
		return entities.ReachabilitySuccess
	default:
		return entities.ReachabilityUnknown
	}
}

// parseIOSSnmpRoCommunities keeps community lines carrying "RO" anywhere in the
// line, case-insensitively. A community named e.g. "netro" also matches.
func parseIOSSnmpRoCommunities(output string) []string {
	communities := make([]string, 0)
	seen := make(map[string]struct{})
	for _, line := range splitLines(output) {
		if !strings.Contains(line, snmpCommunityMarker) || !strings.Contains(strings.ToUpper(line), readOnlyToken) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) <= communityFieldOffset {
			continue
		}
		community := fields[communityFieldOffset]
		if _, dup := seen[community]; dup {
			continue
		}
		seen[community] = struct{}{}
		communities = append(communities, community)
	}
	return communities
}

func parseIOSHostname(output string) string {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 || fields[0] != hostnameToken {
		return entities.HostnameUnknown
	}
	return fields[1]
}

func splitLines(output string) []string {
	return strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
}
