package report_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/infrastructure/report"
)

func TestCSVSink(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	t.Run("creates the directory and writes header and rows", func(st *testing.T) {
		dir := filepath.Join(st.TempDir(), "health_check_logs")
		sink := report.NewCSVSink(dir, "SWITCH_HEALTH_CHECK")

		rows := []entities.ReportRow{
			{
				SwitchName:         "core",
				ConfiguredHostname: "core-sw-01",
				IP:                 "10.0.0.1",
				Reachability:       "Success",
				Interface:          "Gi1/0/1",
				Status:             "GigabitEthernet1/0/1 is up, line protocol is up (connected)",
				SnmpRoCommunity:    "public, monitor",
				SwitchStatus:       "Reachable",
			},
			entities.FailureRow(entities.DeviceSpec{Name: "edge", IP: "10.0.0.2"}, entities.ErrAuth),
		}

		path, err := sink.Write(startedAt, rows)
		require.NoError(st, err)
		assert.Equal(st, filepath.Join(dir, "SWITCH_HEALTH_CHECK_2024-03-01_14-05-09.csv"), path)

		fh, err := os.Open(path)
		require.NoError(st, err)
		defer fh.Close()

		records, err := csv.NewReader(fh).ReadAll()
		require.NoError(st, err)
		require.Len(st, records, 3)
		assert.Equal(st, entities.ReportColumns, records[0])
		assert.Equal(st, rows[0].Values(), records[1])
		assert.Equal(st, "N/A", records[2][1])
		assert.Equal(st, "Connection failed: authentication failed", records[2][7])
	})

	t.Run("empty run still gets a header", func(st *testing.T) {
		sink := report.NewCSVSink(st.TempDir(), "EMPTY")

		path, err := sink.Write(startedAt, nil)
		require.NoError(st, err)

		data, err := os.ReadFile(path)
		require.NoError(st, err)
		assert.Equal(st, "Switch Name,Configured Hostname,IP,Catalyst Center Reachability,Interface,Status,SNMP RO COMMUNITY,Switch status\n", string(data))
	})

	t.Run("runs in the same second keep separate reports", func(st *testing.T) {
		dir := st.TempDir()
		sink := report.NewCSVSink(dir, "LAB")
		first := []entities.ReportRow{{SwitchName: "first"}}
		second := []entities.ReportRow{{SwitchName: "second"}}

		firstPath, err := sink.Write(startedAt, first)
		require.NoError(st, err)
		secondPath, err := sink.Write(startedAt, second)
		require.NoError(st, err)

		assert.Equal(st, filepath.Join(dir, "LAB_2024-03-01_14-05-09.csv"), firstPath)
		assert.Equal(st, filepath.Join(dir, "LAB_2024-03-01_14-05-09_2.csv"), secondPath)

		data, err := os.ReadFile(firstPath)
		require.NoError(st, err)
		assert.Contains(st, string(data), "first")
		assert.NotContains(st, string(data), "second")
	})

	t.Run("unwritable directory", func(st *testing.T) {
		blocker := filepath.Join(st.TempDir(), "file")
		require.NoError(st, os.WriteFile(blocker, nil, 0644))

		_, err := report.NewCSVSink(filepath.Join(blocker, "logs"), "X").Write(startedAt, nil)
		assert.Error(st, err)
	})
}
