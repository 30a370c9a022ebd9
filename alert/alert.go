// Package alert - Cooldown-gated alert dispatch with evidence capture.
//
// The pipeline only decides ShouldAlert; actually notifying is this
// package's job. An Alerter rate-limits dispatches with a cooldown
// window, saves the triggering frame as JPEG evidence and appends to a
// plain-text alert log.
package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/config"
	"github.com/nvr-ai/go-collision/pipeline"
)

// Alerter dispatches accident alerts. Not safe for concurrent use.
type Alerter struct {
	cooldown     time.Duration
	saveEvidence bool
	evidenceDir  string

	sent     int
	lastSent time.Time

	// now is injectable for tests.
	now func() time.Time
}

// New creates an Alerter and ensures the evidence directory exists.
func New(cfg config.Config) (*Alerter, error) {
	if cfg.SaveEvidence {
		if err := os.MkdirAll(cfg.EvidenceDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating evidence directory")
		}
	}
	return &Alerter{
		cooldown:     cfg.AlertCooldown,
		saveEvidence: cfg.SaveEvidence,
		evidenceDir:  cfg.EvidenceDir,
		now:          time.Now,
	}, nil
}

// Trigger dispatches an alert for the result unless the cooldown window
// is still open. Returns true when an alert was actually dispatched.
func (a *Alerter) Trigger(frame gocv.Mat, res pipeline.Result) (bool, error) {
	now := a.now()
	if !a.lastSent.IsZero() && now.Sub(a.lastSent) < a.cooldown {
		return false, nil
	}

	evidencePath := ""
	if a.saveEvidence && !frame.Empty() {
		evidencePath = filepath.Join(a.evidenceDir,
			fmt.Sprintf("accident_%s_%s.jpg", res.Severity, now.Format("20060102_150405")))
		if ok := gocv.IMWrite(evidencePath, frame); !ok {
			return false, errors.Errorf("writing evidence frame to %s", evidencePath)
		}
	}

	if err := a.logAlert(now, res, evidencePath); err != nil {
		return false, err
	}

	a.sent++
	a.lastSent = now
	return true, nil
}

// logAlert appends one line to the alert log.
func (a *Alerter) logAlert(at time.Time, res pipeline.Result, evidencePath string) error {
	logPath := filepath.Join(a.evidenceDir, "alerts.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening alert log")
	}
	defer f.Close()

	line := fmt.Sprintf("%s | %s | confidence: %.1f%% | vehicles: %d | evidence: %s\n",
		at.Format("2006-01-02 15:04:05"), res.Severity, res.SeverityConfidence,
		res.VehicleCount, evidencePath)
	if _, err := f.WriteString(line); err != nil {
		return errors.Wrap(err, "writing alert log")
	}
	return nil
}

// Stats reports dispatch counters.
type Stats struct {
	Sent     int
	LastSent time.Time
	Cooldown time.Duration
}

// Stats returns the alerter's dispatch statistics.
func (a *Alerter) Stats() Stats {
	return Stats{Sent: a.sent, LastSent: a.lastSent, Cooldown: a.cooldown}
}
