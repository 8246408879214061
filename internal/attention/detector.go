package attention

import (
	"context"
	"time"
)

// Box is a detection bounding box in frame pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one detected face.
type Detection struct {
	Box   Box     `json:"box"`
	Score float64 `json:"score"`
}

// Frame is one captured frame. Sources that detect faces elsewhere, such
// as a browser, deliver their detections in Faces instead of pixels.
type Frame struct {
	At     time.Time
	Width  int
	Height int
	Pixels []byte
	Faces  []Detection
}

// Detector classifies frames.
type Detector interface {
	LoadModels(ctx context.Context) error
	DetectFaces(ctx context.Context, f Frame) ([]Detection, error)
}

// Camera is the capture device. The monitor closes it exactly once.
type Camera interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (Frame, error)
	Close() error
}

// passthrough is a Detector that trusts the detections carried on a Frame.
type passthrough struct{}

func (passthrough) DetectFaces(_ context.Context, f Frame) ([]Detection, error) {
	return f.Faces, nil
}

// present returns a single confident detection.
func present() []Detection {
	return []Detection{{Box: Box{Width: 1, Height: 1}, Score: 1}}
}
