package app

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/capture"
)

// run is the detection loop. Each tick reads one camera frame, estimates
// the pose and advances the session.
//
// While nobody has been seen for AbsentFrames frames, the estimator only
// runs on frames where the wake gate sees motion. The loop ends when the
// stop channel closes or the camera runs out of frames.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	absent := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if !a.step(&absent) {
				return
			}
		}
	}
}

// step processes one frame and reports whether the loop should continue.
func (a *App) step(absent *int) bool {
	frame, err := a.camera.ReadFrame()
	if errors.Is(err, capture.ErrNoMoreFrames) {
		log.Info("camera has no more frames")
		return false
	}
	if err != nil {
		log.WithError(err).Warn("error reading frame")
		return true
	}

	if *absent >= AbsentFrames {
		if open, _ := a.wake.Open(frame); !open {
			frame.Close()
			return true
		}
	}

	a.mu.RLock()
	det, tracker, rec, exerciseID := a.detector, a.tracker, a.recorder, a.exercise
	a.mu.RUnlock()

	if det == nil || tracker == nil {
		frame.Close()
		return true
	}

	f, err := det.Detect(frame)
	frame.Close()
	if err != nil {
		log.WithError(err).Warn("error detecting pose")
		return true
	}

	if f == nil {
		*absent++
		if *absent == AbsentFrames {
			log.Info("nobody in view, waiting for motion")
		}
	} else {
		if *absent >= AbsentFrames {
			a.wake.Reset()
			log.Info("person detected")
		}
		*absent = 0

		if rec != nil {
			if err := rec.add(f); err != nil {
				log.WithError(err).Warn("failed to save recorded frames")
			}
		}
	}

	res := tracker.Process(f)
	a.notify(Update{Exercise: exerciseID, Result: res})
	return true
}
