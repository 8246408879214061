package attention

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Segment is one stretch of a presence script.
type Segment struct {
	Present bool
	For     time.Duration
}

// ParseScript parses a timeline like "1:2000,0:2100", where each item is
// presence (1 or 0) and a duration in milliseconds.
func ParseScript(s string) ([]Segment, error) {
	var segs []Segment
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		flag, ms, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("script item %q: want presence:millis", item)
		}
		var present bool
		switch strings.TrimSpace(flag) {
		case "1":
			present = true
		case "0":
		default:
			return nil, fmt.Errorf("script item %q: presence must be 0 or 1", item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(ms))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("script item %q: invalid duration", item)
		}
		segs = append(segs, Segment{Present: present, For: time.Duration(n) * time.Millisecond})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty script")
	}
	return segs, nil
}

// Script replays a presence timeline measured from Open. After the last
// segment, the last presence value holds. It is both the Camera and the
// Detector.
type Script struct {
	passthrough

	// ModelsErr and CameraErr simulate startup failures.
	ModelsErr error
	CameraErr error

	segs  []Segment
	clock Clock

	mu     sync.Mutex
	start  time.Time
	closes int
}

// NewScript creates a Script. A nil clock means the wall clock.
func NewScript(clock Clock, segs []Segment) *Script {
	if clock == nil {
		clock = RealClock{}
	}
	return &Script{segs: segs, clock: clock}
}

func (s *Script) LoadModels(context.Context) error { return s.ModelsErr }

func (s *Script) Open(context.Context) error {
	if s.CameraErr != nil {
		return s.CameraErr
	}
	s.mu.Lock()
	s.start = s.clock.Now()
	s.mu.Unlock()
	return nil
}

func (s *Script) Frame(context.Context) (Frame, error) {
	now := s.clock.Now()
	s.mu.Lock()
	elapsed := now.Sub(s.start)
	s.mu.Unlock()

	f := Frame{At: now}
	if s.PresentAt(elapsed) {
		f.Faces = present()
	}
	return f, nil
}

func (s *Script) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return nil
}

// Closes returns how many times Close was called.
func (s *Script) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// PresentAt reports presence at elapsed time since Open.
func (s *Script) PresentAt(elapsed time.Duration) bool {
	if len(s.segs) == 0 {
		return true
	}
	var end time.Duration
	for _, seg := range s.segs {
		end += seg.For
		if elapsed < end {
			return seg.Present
		}
	}
	return s.segs[len(s.segs)-1].Present
}

// Duration is the total scripted time.
func (s *Script) Duration() time.Duration {
	var d time.Duration
	for _, seg := range s.segs {
		d += seg.For
	}
	return d
}
