package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestWakeGate_PrimesOnFirstFrame(t *testing.T) {
	g := NewWakeGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	open, changed := g.Open(&frame)
	if open || changed != 0 {
		t.Errorf("first frame should only prime the gate, got open=%v changed=%f", open, changed)
	}
	if !g.primed {
		t.Error("gate should be primed after the first frame")
	}
}

func TestWakeGate_StillScene(t *testing.T) {
	g := NewWakeGate(1.0)
	defer g.Close()

	a := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer b.Close()

	g.Open(&a)
	if open, changed := g.Open(&b); open {
		t.Errorf("identical frames should keep the gate closed, changed = %f", changed)
	}
}

func TestWakeGate_Movement(t *testing.T) {
	g := NewWakeGate(1.0)
	defer g.Close()

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g.Open(&black)
	open, changed := g.Open(&white)
	if !open {
		t.Errorf("black to white should open the gate, changed = %f", changed)
	}
	if changed < 50.0 {
		t.Errorf("changed = %f, expected > 50%%", changed)
	}
}

func TestWakeGate_NilAndEmpty(t *testing.T) {
	g := NewWakeGate(1.0)
	defer g.Close()

	if open, _ := g.Open(nil); open {
		t.Error("nil frame should keep the gate closed")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if open, _ := g.Open(&empty); open {
		t.Error("empty frame should keep the gate closed")
	}
}

func TestWakeGate_Reset(t *testing.T) {
	g := NewWakeGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	g.Open(&frame)
	g.Reset()
	if g.primed {
		t.Error("gate should not be primed after Reset")
	}
	if !g.prev.Empty() {
		t.Error("stored frame should be released after Reset")
	}

	g.Close()
	g.Close()
}
