package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellos/cell/internal/provisioning"
)

func TestRecorder_Command(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveCommand("demo1", "create", 2*time.Second, nil)
	r.ObserveCommand("demo1", "create", time.Second, errors.New("boom"))
	r.ObserveCommand("demo1", "create", time.Second, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.commandsTotal.WithLabelValues("demo1", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commandsTotal.WithLabelValues("demo1", "create", "error")))
}

func TestObserver_RecordsPhases(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	inner := provisioning.NewRecordingObserver()
	o := NewObserver(inner, r)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o.Event(provisioning.Event{Type: provisioning.EventPhaseStarted, Phase: "bucket", Timestamp: start})
	o.WithFields(map[string]string{"cell": "demo1"}).Event(provisioning.Event{
		Type: provisioning.EventResourceCreated, Phase: "bucket", Fields: map[string]string{"type": "bucket"},
	})
	o.Event(provisioning.Event{Type: provisioning.EventPhaseCompleted, Phase: "bucket", Timestamp: start.Add(3 * time.Second)})
	provisioning.LogPhaseStart(o, "keypair")
	provisioning.LogPhaseFailed(o, "keypair", errors.New("conflict"))

	assert.Len(t, inner.Events, 5)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phasesTotal.WithLabelValues("bucket", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.phasesTotal.WithLabelValues("keypair", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resourcesTotal.WithLabelValues("bucket", string(provisioning.EventResourceCreated))))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveCommand("demo1", "list", 100*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), TextfileName)
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cell_cli_commands_total{cell="demo1",command="list",result="success"} 1`)
	assert.Contains(t, string(data), "cell_cli_command_duration_seconds_bucket")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", TextfileName)))
}
