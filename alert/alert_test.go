package alert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/config"
	"github.com/nvr-ai/go-collision/pipeline"
	"github.com/nvr-ai/go-collision/severity"
)

func newTestAlerter(t *testing.T, saveEvidence bool) (*Alerter, *time.Time) {
	t.Helper()
	cfg := config.Default()
	cfg.EvidenceDir = t.TempDir()
	cfg.SaveEvidence = saveEvidence

	a, err := New(cfg)
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	return a, &now
}

func alertResult() pipeline.Result {
	return pipeline.Result{
		AccidentDetected:   true,
		Severity:           severity.LevelMajor,
		SeverityScore:      55,
		SeverityConfidence: 72,
		VehicleCount:       3,
		ShouldAlert:        true,
	}
}

func TestTriggerCooldown(t *testing.T) {
	a, now := newTestAlerter(t, false)
	frame := gocv.NewMat()
	defer frame.Close()

	dispatched, err := a.Trigger(frame, alertResult())
	require.NoError(t, err)
	assert.True(t, dispatched)

	// Inside the cooldown window nothing goes out.
	*now = now.Add(time.Second)
	dispatched, err = a.Trigger(frame, alertResult())
	require.NoError(t, err)
	assert.False(t, dispatched)

	// Past the window dispatch resumes.
	*now = now.Add(3 * time.Second)
	dispatched, err = a.Trigger(frame, alertResult())
	require.NoError(t, err)
	assert.True(t, dispatched)

	stats := a.Stats()
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, *now, stats.LastSent)
	assert.Equal(t, 3*time.Second, stats.Cooldown)
}

func TestTriggerWritesLog(t *testing.T) {
	cfg := config.Default()
	cfg.EvidenceDir = t.TempDir()
	cfg.SaveEvidence = false

	a, err := New(cfg)
	require.NoError(t, err)

	frame := gocv.NewMat()
	defer frame.Close()
	dispatched, err := a.Trigger(frame, alertResult())
	require.NoError(t, err)
	require.True(t, dispatched)

	data, err := os.ReadFile(filepath.Join(cfg.EvidenceDir, "alerts.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "MAJOR")
	assert.Contains(t, line, "confidence: 72.0%")
	assert.Contains(t, line, "vehicles: 3")
}

func TestTriggerSavesEvidenceFrame(t *testing.T) {
	cfg := config.Default()
	cfg.EvidenceDir = t.TempDir()
	cfg.SaveEvidence = true

	a, err := New(cfg)
	require.NoError(t, err)

	frame := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	dispatched, err := a.Trigger(frame, alertResult())
	require.NoError(t, err)
	require.True(t, dispatched)

	entries, err := os.ReadDir(cfg.EvidenceDir)
	require.NoError(t, err)

	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "accident_MAJOR_") && strings.HasSuffix(e.Name(), ".jpg") {
			found = true
		}
	}
	assert.True(t, found, "evidence JPEG written for the dispatched alert")
}

func TestNewCreatesEvidenceDir(t *testing.T) {
	cfg := config.Default()
	cfg.EvidenceDir = filepath.Join(t.TempDir(), "nested", "evidence")
	cfg.SaveEvidence = true

	_, err := New(cfg)
	require.NoError(t, err)

	info, err := os.Stat(cfg.EvidenceDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
