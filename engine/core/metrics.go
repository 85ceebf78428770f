package core

import (
	"time"

	"github.com/spaghettifunk/terra/engine/containers"
)

const AVG_COUNT int = 30

// PerformanceStatistics are the counters gathered while producing one
// frame. They are reset at the start of every frame.
type PerformanceStatistics struct {
	FrameTime      time.Duration
	LayerCount     int
	LayersRendered int
	LayerFailures  int
	PickedObjects  int

	ResourceCacheUsed     int64
	ResourceCacheCapacity int64
	ResourceCacheObjects  int
	HeapAlloc             uint64

	// Rolling values over the last AVG_COUNT frames.
	AverageFrameMS float64
	FPS            float64
}

func (ps *PerformanceStatistics) Reset() {
	*ps = PerformanceStatistics{}
}

// FrameTimer keeps the rolling frame time average and the frames per second.
type FrameTimer struct {
	frameTimes         *containers.RingQueue[float64]
	msAvg              float64
	frames             int
	accumulatedFrameMS float64
	fps                float64
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

func (ft *FrameTimer) Update(frameElapsed time.Duration) {
	// Calculate frame ms average
	frameMS := float64(frameElapsed) / float64(time.Millisecond)
	ft.frameTimes.Push(frameMS)
	sum := 0.0
	ft.frameTimes.Each(func(v float64) { sum += v })
	ft.msAvg = sum / float64(ft.frameTimes.Len())

	// Count all frames; publish the count once a second has accumulated.
	ft.frames++
	ft.accumulatedFrameMS += frameMS
	if ft.accumulatedFrameMS > 1000 {
		ft.fps = float64(ft.frames)
		ft.accumulatedFrameMS -= 1000
		ft.frames = 0
	}
}

func (ft *FrameTimer) FPS() float64 {
	return ft.fps
}

func (ft *FrameTimer) FrameTime() float64 {
	return ft.msAvg
}

func (ft *FrameTimer) Frame() (float64, float64) {
	return ft.fps, ft.msAvg
}
