package animation

import (
	gomath "math"
)

type LoopMode uint8

const (
	LoopOnce LoopMode = iota
	LoopRepeat
)

// Infinite repetitions for LoopRepeat.
const Infinite = -1

// ClipAction is a playable instance of a Clip.
type ClipAction struct {
	Clip *Clip

	Loop        LoopMode
	Repetitions int
	// Hold the last pose when a finite action ends instead of returning to
	// the first frame.
	ClampWhenFinished bool

	time    float32
	loops   int
	playing bool
}

func (a *ClipAction) SetLoop(mode LoopMode, repetitions int) *ClipAction {
	a.Loop = mode
	a.Repetitions = repetitions
	return a
}

func (a *ClipAction) Play() *ClipAction {
	a.playing = true
	return a
}

func (a *ClipAction) Stop() *ClipAction {
	a.playing = false
	a.time = 0
	a.loops = 0
	return a
}

func (a *ClipAction) IsRunning() bool {
	return a.playing
}

func (a *ClipAction) Time() float32 {
	return a.time
}

func (a *ClipAction) advance(delta float32) {
	if !a.playing {
		return
	}
	d := a.Clip.Duration
	if d <= 0 {
		a.apply(0)
		return
	}
	a.time += delta
	if a.time < d {
		a.apply(a.time)
		return
	}

	if a.Loop == LoopRepeat {
		wraps := int(a.time / d)
		a.loops += wraps
		if a.Repetitions == Infinite || a.loops < a.Repetitions {
			a.time = float32(gomath.Mod(float64(a.time), float64(d)))
			a.apply(a.time)
			return
		}
	}

	// Finished.
	a.playing = false
	if a.ClampWhenFinished {
		a.time = d
	} else {
		a.time = 0
	}
	a.apply(a.time)
}

func (a *ClipAction) apply(t float32) {
	for _, ch := range a.Clip.Channels {
		ch.Apply(t)
	}
}

// Mixer owns the actions of one model and advances them together.
type Mixer struct {
	actions map[*Clip]*ClipAction
	order   []*ClipAction
}

func NewMixer() *Mixer {
	return &Mixer{actions: make(map[*Clip]*ClipAction)}
}

// ClipAction returns the action bound to clip, creating it on first use.
// New actions default to LoopRepeat with infinite repetitions.
func (m *Mixer) ClipAction(clip *Clip) *ClipAction {
	if a, ok := m.actions[clip]; ok {
		return a
	}
	a := &ClipAction{Clip: clip, Loop: LoopRepeat, Repetitions: Infinite}
	m.actions[clip] = a
	m.order = append(m.order, a)
	return a
}

// Actions returns every action in creation order.
func (m *Mixer) Actions() []*ClipAction {
	return m.order
}

// Update advances every playing action by delta seconds.
func (m *Mixer) Update(delta float64) {
	for _, a := range m.order {
		a.advance(float32(delta))
	}
}
