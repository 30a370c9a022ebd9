// Package localize - ONNX model-based vehicle localization.
package localize

import (
	"os"
	"runtime"
	"sort"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-collision/geometry"
)

const (
	// modelInputSize is the square model input resolution (YOLO family).
	modelInputSize = 640
	// modelAnchors is the number of candidate boxes in the model output.
	modelAnchors = 8400
	// modelChannels is the per-anchor channel count: 4 box coordinates
	// followed by 80 COCO class scores.
	modelChannels = 84
)

// vehicleClasses maps the COCO class IDs treated as vehicles to their
// names: car(2), motorcycle(3), bus(5), truck(7).
var vehicleClasses = map[int]string{
	2: "car",
	3: "motorcycle",
	5: "bus",
	7: "truck",
}

// ModelConfig configures the ONNX model strategy.
type ModelConfig struct {
	// ModelPath is the ONNX model file.
	ModelPath string
	// ConfidenceThreshold drops detections scoring below it (default 0.5).
	ConfidenceThreshold float32
	// NMSThreshold is the IoU above which overlapping detections are
	// suppressed (default 0.7).
	NMSThreshold float32
	// LibraryPath overrides the ONNX Runtime shared library location.
	LibraryPath string
}

// ModelLocalizer runs an ONNX object detection model and keeps only the
// vehicle classes.
type ModelLocalizer struct {
	config  ModelConfig
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// sharedLibPath returns the platform default ONNX Runtime library path.
func sharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

// NewModelLocalizer creates the model strategy. Construction fails when
// the runtime library or the model file is unavailable; callers are
// expected to fall back to the color strategy in that case.
func NewModelLocalizer(config ModelConfig) (*ModelLocalizer, error) {
	if config.ConfidenceThreshold == 0 {
		config.ConfidenceThreshold = 0.5
	}
	if config.NMSThreshold == 0 {
		config.NMSThreshold = 0.7
	}
	libPath := config.LibraryPath
	if libPath == "" {
		libPath = sharedLibPath()
	}
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found at %s", config.ModelPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initializing ORT environment")
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, modelInputSize, modelInputSize))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, modelChannels, modelAnchors))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "creating ORT session options")
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "creating ORT session")
	}

	return &ModelLocalizer{
		config:  config,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// Name implements Localizer.
func (m *ModelLocalizer) Name() string { return "model" }

// Locate runs inference and returns vehicle-class detections mapped back
// into frame coordinates.
func (m *ModelLocalizer) Locate(frame gocv.Mat) ([]Detection, error) {
	if frame.Empty() {
		return nil, nil
	}
	if m.session == nil {
		return nil, errors.New("model session closed")
	}

	if err := m.prepareInput(frame); err != nil {
		return nil, errors.Wrap(err, "preparing model input")
	}
	if err := m.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}
	detections := m.decodeOutput(frame.Cols(), frame.Rows())
	return m.applyNMS(detections), nil
}

// prepareInput resizes the frame to the model resolution and fills the
// input tensor in CHW order, normalized to [0,1].
func (m *ModelLocalizer) prepareInput(frame gocv.Mat) error {
	img, err := frame.ToImage()
	if err != nil {
		return errors.Wrap(err, "converting frame")
	}
	img = resize.Resize(modelInputSize, modelInputSize, img, resize.Lanczos3)

	data := m.input.GetData()
	channelSize := modelInputSize * modelInputSize
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	i := 0
	for y := 0; y < modelInputSize; y++ {
		for x := 0; x < modelInputSize; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}

// decodeOutput walks the [84][8400] output tensor, keeps anchors whose
// best class is a vehicle scoring above the confidence threshold, and
// converts center-size boxes into frame-space corner boxes.
func (m *ModelLocalizer) decodeOutput(frameW, frameH int) []Detection {
	data := m.output.GetData()
	xScale := float32(frameW) / modelInputSize
	yScale := float32(frameH) / modelInputSize

	var detections []Detection
	for a := 0; a < modelAnchors; a++ {
		classID := 0
		best := float32(0)
		for c := 4; c < modelChannels; c++ {
			if score := data[c*modelAnchors+a]; score > best {
				best = score
				classID = c - 4
			}
		}
		if best < m.config.ConfidenceThreshold {
			continue
		}
		className, ok := vehicleClasses[classID]
		if !ok {
			continue
		}

		cx := data[0*modelAnchors+a]
		cy := data[1*modelAnchors+a]
		w := data[2*modelAnchors+a]
		h := data[3*modelAnchors+a]

		box := geometry.Box{
			X1: int((cx - w/2) * xScale),
			Y1: int((cy - h/2) * yScale),
			X2: int((cx + w/2) * xScale),
			Y2: int((cy + h/2) * yScale),
		}.Clamp(frameW, frameH)

		detections = append(detections, Detection{
			Box:        box,
			Confidence: best,
			Class:      className,
		})
	}
	return detections
}

// applyNMS suppresses overlapping detections greedily by IoU.
func (m *ModelLocalizer) applyNMS(detections []Detection) []Detection {
	if len(detections) == 0 {
		return detections
	}
	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	var result []Detection
	used := make([]bool, len(detections))
	for i := 0; i < len(detections); i++ {
		if used[i] {
			continue
		}
		result = append(result, detections[i])
		used[i] = true
		for j := i + 1; j < len(detections); j++ {
			if used[j] {
				continue
			}
			if detections[i].Box.IoU(detections[j].Box) > m.config.NMSThreshold {
				used[j] = true
			}
		}
	}
	return result
}

// Close releases the session and its tensors.
func (m *ModelLocalizer) Close() error {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	return nil
}
