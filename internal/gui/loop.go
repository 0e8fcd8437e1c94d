package gui

import (
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
)

// FrameLoop drives the controller at a fixed rate. Every frame is posted to
// the fyne main goroutine, so frame callbacks never run concurrently with
// widget callbacks.
type FrameLoop struct {
	interval time.Duration
	frame    func()
	post     func(func())

	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewFrameLoop(interval time.Duration, frame func()) *FrameLoop {
	return &FrameLoop{
		interval: interval,
		frame:    frame,
		post:     fyne.Do,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (l *FrameLoop) Start() {
	if l.started.Swap(true) {
		return
	}
	go l.run()
}

func (l *FrameLoop) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.post(l.frame)
		case <-l.stop:
			return
		}
	}
}

// Shutdown stops the ticker. Frames already posted may still run.
func (l *FrameLoop) Shutdown() {
	l.once.Do(func() {
		close(l.stop)
	})
	if l.started.Load() {
		<-l.done
	}
}
