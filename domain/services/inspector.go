package services

import (
	"context"
	"fmt"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/domain/ports"
	"github.com/carlosrabelo/swhealth/internal/logger"
	"github.com/carlosrabelo/swhealth/platform"
)

// Inspector runs the health check sequence against a single switch
type Inspector struct {
	transport ports.Transport
	log       logger.Logger
}

// NewInspector creates a new device inspector bound to a session transport
func NewInspector(transport ports.Transport, log logger.Logger) *Inspector {
	return &Inspector{
		transport: transport,
		log:       log,
	}
}

// Inspect opens one session to spec, runs the whole-device checks and then each
// interface check in declared order. Command failures are stored in the result;
// the only error returned is *entities.ConnectFailure.
func (i *Inspector) Inspect(ctx context.Context, spec entities.DeviceSpec) (entities.CheckResult, error) {
	var result entities.CheckResult

	driver, err := platform.Get(spec.DeviceType)
	if err != nil {
		return result, i.connectFailure(spec, fmt.Errorf("%w: %v", entities.ErrConnect, err))
	}

	i.log.Info().Str("switch", spec.DisplayName()).Str("ip", spec.IP).Msg("connecting")

	session, err := i.transport.Open(ctx, spec)
	if err != nil {
		return result, i.connectFailure(spec, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			i.log.Debug().Err(cerr).Str("switch", spec.DisplayName()).Msg("closing session")
		}
	}()

	target := spec.PingTarget()
	i.log.Info().Str("switch", spec.DisplayName()).Str("target", target).Msg("pinging")
	if raw, err := session.Exec(driver.PingCommand(target), driver.PingPromptPattern()); err != nil {
		result.PingErr = err
		i.log.Warn().Err(err).Str("switch", spec.DisplayName()).Msg("ping check failed")
	} else {
		result.Reachability = driver.ParsePingVerdict(raw)
	}

	if raw, err := session.Exec(driver.SnmpCommunityCommand(), ""); err != nil {
		result.SnmpErr = err
		i.log.Warn().Err(err).Str("switch", spec.DisplayName()).Msg("snmp community check failed")
	} else {
		result.SnmpRoCommunities = driver.ParseSnmpRoCommunities(raw)
	}

	if raw, err := session.Exec(driver.HostnameCommand(), ""); err != nil {
		result.HostnameErr = err
		i.log.Warn().Err(err).Str("switch", spec.DisplayName()).Msg("hostname check failed")
	} else {
		result.Hostname = driver.ParseHostname(raw)
	}

	result.Interfaces = make([]entities.InterfaceResult, 0, len(spec.Interfaces))
	for _, name := range spec.Interfaces {
		i.log.Info().Str("switch", spec.DisplayName()).Str("interface", name).Msg("checking interface")

		iface := entities.InterfaceResult{Name: name}
		raw, err := session.Exec(driver.InterfaceStatusCommand(name), "")
		if err != nil {
			iface.Err = err
			i.log.Warn().Err(err).Str("switch", spec.DisplayName()).Str("interface", name).Msg("interface check failed")
		} else {
			iface.StatusLine = driver.ParseInterfaceStatus(raw)
		}
		result.Interfaces = append(result.Interfaces, iface)
	}

	return result, nil
}

func (i *Inspector) connectFailure(spec entities.DeviceSpec, reason error) error {
	failure := &entities.ConnectFailure{Device: spec, Reason: reason}
	i.log.Error().
		Str("switch", spec.DisplayName()).
		Str("ip", spec.IP).
		Str("kind", failure.Kind()).
		Err(reason).
		Msg("connection failed")
	return failure
}
