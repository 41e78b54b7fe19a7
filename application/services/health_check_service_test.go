package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/domain/ports"
	domainservices "github.com/carlosrabelo/swhealth/domain/services"
	"github.com/carlosrabelo/swhealth/internal/logger"
	mock_ports "github.com/carlosrabelo/swhealth/internal/mock/ports"
)

// fakeSession answers commands from canned responses
type fakeSession struct {
	responses map[string]string
	errors    map[string]error
	executed  []string
	closed    int
}

func (f *fakeSession) Exec(command, promptPattern string) (string, error) {
	f.executed = append(f.executed, command)
	if err, ok := f.errors[command]; ok {
		return "", err
	}
	return f.responses[command], nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

// fakeTransport hands out one scripted session per switch IP
type fakeTransport struct {
	sessions map[string]*fakeSession
	openErrs map[string]error
	opened   []string
}

func (f *fakeTransport) Open(ctx context.Context, spec entities.DeviceSpec) (ports.Session, error) {
	f.opened = append(f.opened, spec.IP)
	if err, ok := f.openErrs[spec.IP]; ok {
		return nil, err
	}
	session, ok := f.sessions[spec.IP]
	if !ok {
		return nil, fmt.Errorf("%w: no route to host", entities.ErrConnect)
	}
	return session, nil
}

func healthySession(hostname string) *fakeSession {
	return &fakeSession{
		responses: map[string]string{
			"ping 10.0.0.254": "Success rate is 100 percent (5/5)",
			"show running-config | include snmp-server community": "snmp-server community public RO\nsnmp-server community secret RW",
			"show running-config | include ^hostname":             "hostname " + hostname,
			"show interface Gi1/0/1":                              "GigabitEthernet1/0/1 is up, line protocol is up (connected)",
			"show interface Gi1/0/2":                              "GigabitEthernet1/0/2 is down, line protocol is down (notconnect)",
		},
		errors: map[string]error{},
	}
}

func device(name, ip string, interfaces ...string) entities.DeviceSpec {
	return entities.DeviceSpec{
		Name:       name,
		IP:         ip,
		DeviceType: "cisco_ios",
		Username:   "admin",
		Password:   "secret",
		PingIP:     "10.0.0.254",
		Interfaces: interfaces,
	}
}

func newBatchService(transport ports.Transport) *HealthCheckService {
	inspector := domainservices.NewInspector(transport, logger.Nop())
	return NewHealthCheckService(inspector, nil, nil, logger.Nop())
}

func TestRun_ConnectFailureIsIsolated(t *testing.T) {
	transport := &fakeTransport{
		sessions: map[string]*fakeSession{
			"10.0.0.1": healthySession("sw1"),
			"10.0.0.3": healthySession("sw3"),
		},
		openErrs: map[string]error{
			"10.0.0.2": fmt.Errorf("login: %w: %% Login invalid", entities.ErrAuth),
		},
	}
	inventory := entities.Inventory{
		device("sw1", "10.0.0.1", "Gi1/0/1", "Gi1/0/2"),
		device("sw2", "10.0.0.2", "Gi1/0/1"),
		device("sw3", "10.0.0.3", "Gi1/0/1"),
	}

	rows, summary := newBatchService(transport).Run(context.Background(), inventory)

	assert.Equal(t, entities.RunSummary{ReachableCount: 2, FailedCount: 1}, summary)
	assert.Equal(t, len(inventory), summary.Total())
	require.Len(t, rows, 4)

	assert.Equal(t, "10.0.0.1", rows[0].IP)
	assert.Equal(t, "Gi1/0/1", rows[0].Interface)
	assert.Equal(t, "Gi1/0/2", rows[1].Interface)

	failure := rows[2]
	assert.Equal(t, "sw2", failure.SwitchName)
	assert.Equal(t, "10.0.0.2", failure.IP)
	assert.Equal(t, "N/A", failure.ConfiguredHostname)
	assert.Equal(t, "N/A", failure.Reachability)
	assert.Equal(t, "N/A", failure.Interface)
	assert.Equal(t, "N/A", failure.Status)
	assert.Equal(t, "N/A", failure.SnmpRoCommunity)
	assert.Equal(t, "Connection failed: login: authentication failed: % Login invalid", failure.SwitchStatus)

	assert.Equal(t, "10.0.0.3", rows[3].IP)
	assert.Equal(t, "sw3", rows[3].ConfiguredHostname)

	assert.Equal(t, 1, transport.sessions["10.0.0.1"].closed)
	assert.Equal(t, 1, transport.sessions["10.0.0.3"].closed)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, transport.opened)
}

func TestRun_SecondInterfaceFails(t *testing.T) {
	session := healthySession("core")
	session.errors["show interface Gi1/0/2"] = fmt.Errorf("%w: connection reset", entities.ErrExec)
	transport := &fakeTransport{sessions: map[string]*fakeSession{"10.0.0.1": session}}

	rows, summary := newBatchService(transport).Run(context.Background(), entities.Inventory{
		device("core", "10.0.0.1", "Gi1/0/1", "Gi1/0/2"),
	})

	assert.Equal(t, entities.RunSummary{ReachableCount: 1}, summary)
	require.Len(t, rows, 2)

	assert.Equal(t, entities.ReportRow{
		SwitchName:         "core",
		ConfiguredHostname: "core",
		IP:                 "10.0.0.1",
		Reachability:       "Success",
		Interface:          "Gi1/0/1",
		Status:             "GigabitEthernet1/0/1 is up, line protocol is up (connected)",
		SnmpRoCommunity:    "public",
		SwitchStatus:       "Reachable",
	}, rows[0])

	assert.Equal(t, "Gi1/0/2", rows[1].Interface)
	assert.Equal(t, "Error", rows[1].Status)
	assert.Equal(t, "Interface error: command execution failed: connection reset", rows[1].SwitchStatus)
	assert.Equal(t, 1, session.closed)
}

func TestRun_WholeDeviceCheckErrorsAreRendered(t *testing.T) {
	session := healthySession("core")
	session.errors["ping 10.0.0.254"] = fmt.Errorf("%w: ping: timed out", entities.ErrExec)
	session.errors["show running-config | include snmp-server community"] = fmt.Errorf("%w: snmp", entities.ErrExec)
	delete(session.responses, "show running-config | include ^hostname")
	transport := &fakeTransport{sessions: map[string]*fakeSession{"10.0.0.1": session}}

	rows, _ := newBatchService(transport).Run(context.Background(), entities.Inventory{
		device("core", "10.0.0.1", "Gi1/0/1"),
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Ping Error: command execution failed: ping: timed out", rows[0].Reachability)
	assert.Equal(t, "Error: command execution failed: snmp", rows[0].SnmpRoCommunity)
	assert.Equal(t, "Unknown", rows[0].ConfiguredHostname)
	assert.Equal(t, "Reachable", rows[0].SwitchStatus)
}

func TestRun_ZeroInterfacesEmitNoRows(t *testing.T) {
	session := healthySession("quiet")
	transport := &fakeTransport{sessions: map[string]*fakeSession{"10.0.0.9": session}}

	rows, summary := newBatchService(transport).Run(context.Background(), entities.Inventory{
		device("quiet", "10.0.0.9"),
	})

	assert.Empty(t, rows)
	assert.Equal(t, entities.RunSummary{ReachableCount: 1}, summary)
	assert.Len(t, session.executed, 3)
	assert.Equal(t, 1, session.closed)
}

func TestRun_IsIdempotent(t *testing.T) {
	inventory := entities.Inventory{
		device("sw1", "10.0.0.1", "Gi1/0/1", "Gi1/0/2"),
		device("sw2", "10.0.0.2", "Gi1/0/1"),
	}
	newTransport := func() *fakeTransport {
		return &fakeTransport{
			sessions: map[string]*fakeSession{"10.0.0.1": healthySession("sw1")},
			openErrs: map[string]error{"10.0.0.2": fmt.Errorf("%w: dial", entities.ErrTimeout)},
		}
	}

	first, firstSummary := newBatchService(newTransport()).Run(context.Background(), inventory)
	second, secondSummary := newBatchService(newTransport()).Run(context.Background(), inventory)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}

func TestRun_EveryDeviceCounted(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	mockInspector := mock_ports.NewMockDeviceInspector(ctrl)
	service := NewHealthCheckService(mockInspector, nil, nil, logger.Nop())

	inventory := entities.Inventory{
		device("a", "10.0.0.1", "Gi1/0/1"),
		device("b", "10.0.0.2", "Gi1/0/1"),
		device("c", "10.0.0.3"),
	}

	gomock.InOrder(
		mockInspector.EXPECT().Inspect(gomock.Any(), inventory[0]).Return(entities.CheckResult{
			Hostname:     "a",
			Reachability: entities.ReachabilityUnknown,
			Interfaces:   []entities.InterfaceResult{{Name: "Gi1/0/1", StatusLine: entities.StatusLineNotFound}},
		}, nil),
		// an inspector breaking its contract still only costs that device
		mockInspector.EXPECT().Inspect(gomock.Any(), inventory[1]).Return(entities.CheckResult{}, errors.New("boom")),
		mockInspector.EXPECT().Inspect(gomock.Any(), inventory[2]).Return(entities.CheckResult{}, &entities.ConnectFailure{
			Device: inventory[2],
			Reason: fmt.Errorf("%w: i/o timeout", entities.ErrTimeout),
		}),
	)

	rows, summary := service.Run(context.Background(), inventory)

	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 1, summary.ReachableCount)
	require.Len(t, rows, 3)
	assert.Equal(t, "Unknown Result", rows[0].Reachability)
	assert.Equal(t, "Not Found", rows[0].SnmpRoCommunity)
	assert.Equal(t, "Connection failed: boom", rows[1].SwitchStatus)
	assert.Equal(t, "Connection failed: timed out: i/o timeout", rows[2].SwitchStatus)
}

func TestExecute(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	startedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return startedAt }

	inventory := entities.Inventory{device("a", "10.0.0.1", "Gi1/0/1")}
	result := entities.CheckResult{
		Hostname:     "a",
		Reachability: entities.ReachabilitySuccess,
		Interfaces:   []entities.InterfaceResult{{Name: "Gi1/0/1", StatusLine: "up"}},
	}

	t.Run("writes the report and saves history", func(st *testing.T) {
		mockInspector := mock_ports.NewMockDeviceInspector(ctrl)
		mockSink := mock_ports.NewMockReportSink(ctrl)
		mockHistory := mock_ports.NewMockRunHistory(ctrl)

		service := NewHealthCheckService(mockInspector, mockSink, mockHistory, logger.Nop())
		service.now = clock

		mockInspector.EXPECT().Inspect(gomock.Any(), inventory[0]).Return(result, nil)
		mockSink.EXPECT().Write(startedAt, gomock.Len(1)).Return("logs/report.csv", nil)
		mockHistory.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Len(1)).DoAndReturn(
			func(_ context.Context, report entities.RunReport, _ []entities.ReportRow) error {
				assert.Equal(st, "logs/report.csv", report.ReportPath)
				assert.Equal(st, 1, report.RowCount)
				return nil
			},
		)

		report, err := service.Execute(context.Background(), inventory)

		require.NoError(st, err)
		assert.NotEmpty(st, report.ID)
		assert.Equal(st, "logs/report.csv", report.ReportPath)
		assert.Equal(st, entities.RunSummary{ReachableCount: 1}, report.Summary)
		assert.Equal(st, startedAt, report.StartedAt)
	})

	t.Run("report write failure fails the run", func(st *testing.T) {
		mockInspector := mock_ports.NewMockDeviceInspector(ctrl)
		mockSink := mock_ports.NewMockReportSink(ctrl)

		service := NewHealthCheckService(mockInspector, mockSink, nil, logger.Nop())

		mockInspector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(result, nil)
		mockSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

		_, err := service.Execute(context.Background(), inventory)

		assert.ErrorContains(st, err, "disk full")
	})

	t.Run("history failure does not fail the run", func(st *testing.T) {
		mockInspector := mock_ports.NewMockDeviceInspector(ctrl)
		mockSink := mock_ports.NewMockReportSink(ctrl)
		mockHistory := mock_ports.NewMockRunHistory(ctrl)

		service := NewHealthCheckService(mockInspector, mockSink, mockHistory, logger.Nop())

		mockInspector.EXPECT().Inspect(gomock.Any(), gomock.Any()).Return(result, nil)
		mockSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return("report.csv", nil)
		mockHistory.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database is locked"))

		report, err := service.Execute(context.Background(), inventory)

		require.NoError(st, err)
		assert.Equal(st, "report.csv", report.ReportPath)
	})
}
