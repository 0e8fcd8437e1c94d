// Package worker runs image decodes off the render goroutine and reports each
// outcome as exactly one message on a result channel.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"image-viewer/internal/decoder"
	"image-viewer/internal/logger"
	"image-viewer/internal/models"
)

// Request identifies one decode.
type Request struct {
	ID   string
	Path string
}

type Worker struct {
	decoder decoder.Service
	logger  logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup

	spawned      atomic.Uint64
	succeeded    atomic.Uint64
	failed       atomic.Uint64
	timedOut     atomic.Uint64
	sendFailures atomic.Uint64
	inFlight     atomic.Int64
	decodeNanos  atomic.Int64
}

// Stats is a snapshot of the worker counters.
type Stats struct {
	Spawned       uint64
	Succeeded     uint64
	Failed        uint64
	TimedOut      uint64
	SendFailures  uint64
	InFlight      int64
	AverageDecode time.Duration
}

// New creates a worker. A zero timeout lets a decode run as long as it takes.
func New(svc decoder.Service, log logger.Logger, timeout time.Duration) *Worker {
	return &Worker{
		decoder: svc,
		logger:  log.With("worker"),
		timeout: timeout,
	}
}

// Spawn starts a decode in the background and returns immediately. The result
// is sent on out exactly once; the send is abandoned only when ctx is done.
func (w *Worker) Spawn(ctx context.Context, req Request, out chan<- models.DecodeResult) {
	w.wg.Add(1)
	w.spawned.Add(1)
	w.inFlight.Add(1)

	go func() {
		defer w.wg.Done()
		defer w.inFlight.Add(-1)

		result := w.run(req)
		w.send(ctx, req, out, result)
	}()
}

// Decode performs one blocking decode and converts any error or panic into a
// Failure.
func (w *Worker) Decode(req Request) (result models.DecodeResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Decode panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"request_id": req.ID,
				"path":       req.Path,
			})
			result = models.Failure{RequestID: req.ID, Path: req.Path}
		}
	}()

	w.logger.Debug("Loading image", map[string]interface{}{
		"request_id": req.ID,
		"path":       req.Path,
	})

	payload, err := Load(w.decoder, req.Path)
	if err != nil {
		w.logger.Error("Image load failed", err, map[string]interface{}{
			"request_id": req.ID,
			"path":       req.Path,
		})
		return models.Failure{RequestID: req.ID, Path: req.Path}
	}

	w.logger.Debug("Image decoded", map[string]interface{}{
		"request_id": req.ID,
		"path":       req.Path,
		"width":      payload.Width,
		"height":     payload.Height,
		"channels":   payload.Pixels.Channels,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return models.Success{RequestID: req.ID, Payload: payload}
}

func (w *Worker) run(req Request) models.DecodeResult {
	start := time.Now()
	result := w.runWithTimeout(req)
	w.decodeNanos.Add(int64(time.Since(start)))

	switch result.(type) {
	case models.Success:
		w.succeeded.Add(1)
	default:
		w.failed.Add(1)
	}
	return result
}

func (w *Worker) runWithTimeout(req Request) models.DecodeResult {
	if w.timeout <= 0 {
		return w.Decode(req)
	}

	// a late result lands in the buffer and is dropped
	done := make(chan models.DecodeResult, 1)
	go func() {
		done <- w.Decode(req)
	}()

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		return result
	case <-timer.C:
		w.timedOut.Add(1)
		w.logger.Warning("Decode timed out", map[string]interface{}{
			"request_id": req.ID,
			"path":       req.Path,
			"timeout":    w.timeout.String(),
		})
		return models.Failure{RequestID: req.ID, Path: req.Path}
	}
}

func (w *Worker) send(ctx context.Context, req Request, out chan<- models.DecodeResult, result models.DecodeResult) {
	select {
	case out <- result:
		w.logger.Debug("Decode result sent", map[string]interface{}{
			"request_id": req.ID,
		})
	case <-ctx.Done():
		w.sendFailures.Add(1)
		w.logger.Error("Failed to send decode result", ctx.Err(), map[string]interface{}{
			"request_id": req.ID,
			"path":       req.Path,
		})
	}
}

func (w *Worker) Stats() Stats {
	s := Stats{
		Spawned:      w.spawned.Load(),
		Succeeded:    w.succeeded.Load(),
		Failed:       w.failed.Load(),
		TimedOut:     w.timedOut.Load(),
		SendFailures: w.sendFailures.Load(),
		InFlight:     w.inFlight.Load(),
	}
	if done := s.Succeeded + s.Failed; done > 0 {
		s.AverageDecode = time.Duration(w.decodeNanos.Load() / int64(done))
	}
	return s
}

// Shutdown blocks until every spawned decode has delivered or abandoned its
// result.
func (w *Worker) Shutdown() {
	w.wg.Wait()
	w.logger.Info("Worker stopped", map[string]interface{}{
		"spawned": w.spawned.Load(),
	})
}
