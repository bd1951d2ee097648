package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/session"
	"github.com/ballsym/extension/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, interval time.Duration) (*Service, *session.Session) {
	t.Helper()
	sess := session.New(engine.NewReference())
	svc := NewService(Dependencies{
		Session:    sess,
		LogManager: logging.NewSlogManager(),
		StatusPath: filepath.Join(t.TempDir(), "status", "status.json"),
		Interval:   interval,
		Queues:     map[string]func() int{"latency": func() int { return 7 }},
	})
	return svc, sess
}

func TestGetStatus(t *testing.T) {
	svc, sess := newTestService(t, 0)
	require.NoError(t, sess.Load(core.PresetDropshot))

	st := svc.GetStatus()
	assert.Equal(t, sess.ID(), st.Session.ID)
	assert.Equal(t, core.PresetDropshot, st.Session.Preset)
	assert.Equal(t, map[string]int{"latency": 7}, st.Queues)
	assert.Equal(t, defaultInterval, svc.deps.Interval)
}

func TestStartWritesStatusFile(t *testing.T) {
	svc, sess := newTestService(t, 10*time.Millisecond)
	require.NoError(t, sess.Load(core.PresetHoops))

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start(), "second start is a no-op")
	assert.True(t, svc.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(svc.deps.StatusPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
	svc.Stop()
	assert.False(t, svc.IsRunning())

	data, err := os.ReadFile(svc.deps.StatusPath)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, core.PresetHoops, st.Session.Preset)
	assert.True(t, st.Session.Loaded)
}
