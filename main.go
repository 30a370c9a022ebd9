package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/alert"
	"github.com/nvr-ai/go-collision/config"
	"github.com/nvr-ai/go-collision/pipeline"
	"github.com/nvr-ai/go-collision/severity"
)

func main() {
	var (
		videoPath    string
		deviceID     int
		modelPath    string
		evidenceDir  string
		saveEvidence bool
		forceLevel   string
		maxFrames    int
	)
	flag.StringVar(&videoPath, "video", "", "Path to a video file; empty uses the camera device")
	flag.IntVar(&deviceID, "device", 0, "Camera device ID")
	flag.StringVar(&modelPath, "model", "", "Path to an ONNX vehicle detection model (optional)")
	flag.StringVar(&evidenceDir, "evidence", "evidence", "Directory for evidence frames and the alert log")
	flag.BoolVar(&saveEvidence, "save-evidence", true, "Save evidence frames on alert")
	flag.StringVar(&forceLevel, "force", "", "Force one synthetic accident (MINOR, MAJOR or CRITICAL)")
	flag.IntVar(&maxFrames, "max-frames", 0, "Stop after this many frames (0 = unlimited)")
	flag.Parse()

	cfg := config.Default()
	cfg.ModelPath = modelPath
	cfg.EvidenceDir = evidenceDir
	cfg.SaveEvidence = saveEvidence

	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatalf("initializing pipeline: %v", err)
	}
	defer p.Close()

	alerter, err := alert.New(cfg)
	if err != nil {
		log.Fatalf("initializing alerter: %v", err)
	}

	if forceLevel != "" {
		level := severity.Level(strings.ToUpper(forceLevel))
		p.ForceAccident(level)
		fmt.Printf("🎮 Forcing one %s accident\n", level)
	}

	capture, err := openCapture(videoPath, deviceID)
	if err != nil {
		log.Fatalf("opening input: %v", err)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	processed := 0
	for {
		if ok := capture.Read(&frame); !ok {
			fmt.Printf("End of stream after %d frames\n", processed)
			break
		}
		if frame.Empty() {
			continue
		}

		result := p.ProcessFrame(frame)
		processed++

		if result.AccidentDetected {
			fmt.Printf("🚨 frame %d: %s accident, score %.1f, confidence %.1f%%, vehicles %d\n",
				processed, result.Severity, result.SeverityScore,
				result.SeverityConfidence, result.VehicleCount)
		} else if processed%30 == 0 {
			fmt.Printf("frame %d: %d vehicles, motion %.2f\n",
				processed, result.VehicleCount, result.Motion)
		}

		if result.ShouldAlert {
			dispatched, err := alerter.Trigger(frame, result)
			if err != nil {
				log.Printf("alert dispatch failed: %v", err)
			} else if dispatched {
				printAlert(result, alerter.Stats())
			}
		}

		if maxFrames > 0 && processed >= maxFrames {
			break
		}
	}

	stats := p.History().Statistics()
	fmt.Printf("Severity trend: current=%s minor=%d major=%d critical=%d (last %d)\n",
		stats.Current, stats.Minor, stats.Major, stats.Critical, stats.Total)
}

// openCapture opens either the video file or the camera device.
func openCapture(videoPath string, deviceID int) (*gocv.VideoCapture, error) {
	if videoPath != "" {
		return gocv.VideoCaptureFile(videoPath)
	}
	return gocv.VideoCaptureDevice(deviceID)
}

func printAlert(res pipeline.Result, stats alert.Stats) {
	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║            🚨 EMERGENCY ALERT            ║")
	fmt.Printf("║  Severity: %-8s  Confidence: %5.1f%%  ║\n", res.Severity, res.SeverityConfidence)
	fmt.Printf("║  Vehicles involved: %-2d   Alerts sent: %-2d ║\n", res.VehicleCount, stats.Sent)
	fmt.Println("╚══════════════════════════════════════════╝")
}
