package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/platform"
)

const DefaultDeviceType = "cisco_ios"

var (
	ErrConfig = errors.New("configuration error")
)

// document is the inventory part of the configuration file
type document struct {
	Defaults entities.DeviceSpec   `yaml:"defaults"`
	Switches []entities.DeviceSpec `yaml:"switches"`
}

// LoadInventory loads and validates the switch inventory from a YAML file.
//
// Values missing on a switch are taken from the document's defaults block and
// then from fallback. Every validation problem is reported in one error.
func LoadInventory(path string, fallback entities.DeviceSpec) (entities.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrConfig, fmt.Sprintf("failed to read YAML file %s: %v", path, err))
	}
	return ParseInventory(data, fallback)
}

// ParseInventory decodes and validates an inventory document
func ParseInventory(data []byte, fallback entities.DeviceSpec) (entities.Inventory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrConfig, "failed to parse YAML: "+err.Error())
	}

	if len(doc.Switches) == 0 {
		return nil, errors.Wrap(ErrConfig, "no switches defined in the YAML configuration")
	}

	defaults := inheritable(doc.Defaults)
	fallback = inheritable(fallback)

	var validationErrs *multierror.Error

	inventory := make(entities.Inventory, 0, len(doc.Switches))
	for i, sw := range doc.Switches {
		if err := mergo.Merge(&sw, defaults); err != nil {
			return nil, errors.Wrap(ErrConfig, "defaults merge error: "+err.Error())
		}
		if err := mergo.Merge(&sw, fallback); err != nil {
			return nil, errors.Wrap(ErrConfig, "defaults merge error: "+err.Error())
		}

		sw = normalize(sw)

		if err := validateSwitch(i, sw); err != nil {
			validationErrs = multierror.Append(validationErrs, err)
			continue
		}

		inventory = append(inventory, sw)
	}

	if err := validationErrs.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}

	return inventory, nil
}

// SelectTarget narrows the inventory to switches whose IP or name equals target
func SelectTarget(inventory entities.Inventory, target string) (entities.Inventory, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return inventory, nil
	}

	var selected entities.Inventory
	for _, sw := range inventory {
		if sw.IP == target || strings.EqualFold(sw.Name, target) {
			selected = append(selected, sw)
		}
	}

	if len(selected) == 0 {
		return nil, errors.Wrap(ErrConfig, fmt.Sprintf("target %s not registered in the YAML configuration", target))
	}
	return selected, nil
}

// inheritable drops the per-switch identity fields from a defaults source
func inheritable(spec entities.DeviceSpec) entities.DeviceSpec {
	spec.Name = ""
	spec.IP = ""
	spec.PingIP = ""
	return spec
}

func normalize(sw entities.DeviceSpec) entities.DeviceSpec {
	sw.Name = strings.TrimSpace(sw.Name)
	sw.IP = strings.TrimSpace(sw.IP)
	sw.PingIP = strings.TrimSpace(sw.PingIP)
	sw.Username = strings.TrimSpace(sw.Username)
	sw.Transport = strings.ToLower(strings.TrimSpace(sw.Transport))
	sw.DeviceType = strings.ToLower(strings.TrimSpace(sw.DeviceType))
	if sw.DeviceType == "" {
		sw.DeviceType = DefaultDeviceType
	}

	interfaces := make([]string, 0, len(sw.Interfaces))
	for _, iface := range sw.Interfaces {
		if trimmed := strings.TrimSpace(iface); trimmed != "" {
			interfaces = append(interfaces, trimmed)
		}
	}
	sw.Interfaces = interfaces

	return sw
}

func validateSwitch(i int, sw entities.DeviceSpec) error {
	var errs *multierror.Error

	label := fmt.Sprintf("switch %d", i)
	if sw.Name != "" {
		label = fmt.Sprintf("switch %d (%s)", i, sw.Name)
	}

	if sw.IP == "" {
		errs = multierror.Append(errs, fmt.Errorf("ip is required for %s", label))
	}
	if sw.Username == "" {
		errs = multierror.Append(errs, fmt.Errorf("username is required for %s", label))
	}
	if sw.Password == "" {
		errs = multierror.Append(errs, fmt.Errorf("password is required for %s", label))
	}
	if _, err := platform.Get(sw.DeviceType); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid device_type for %s: %w", label, err))
	}
	if sw.Transport != "" && sw.Transport != entities.TransportSSH && sw.Transport != entities.TransportTelnet {
		errs = multierror.Append(errs, fmt.Errorf("transport %s is invalid for %s, must be 'telnet' or 'ssh'", sw.Transport, label))
	}
	if sw.Port < 0 || sw.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("port %d is invalid for %s", sw.Port, label))
	}

	return errs.ErrorOrNil()
}
