package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// SoundManager plays short cues for search events
// Every method is a no-op until Initialize succeeds
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	ticks       bool
}

// NewSoundManager creates a manager; ticks enables a blip per expansion
func NewSoundManager(ticks bool) *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		ticks: ticks,
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences the mixer and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// PlayFound plays a rising two-note chime
func (sm *SoundManager) PlayFound() {
	sm.play(beep.Seq(
		beep.Take(sampleRate.N(90*time.Millisecond), NewToneGenerator(sampleRate, 660, 0.25)),
		beep.Take(sampleRate.N(160*time.Millisecond), NewToneGenerator(sampleRate, 990, 0.25)),
	))
}

// PlayExhausted plays a low falling buzz
func (sm *SoundManager) PlayExhausted() {
	sm.play(beep.Take(sampleRate.N(250*time.Millisecond), NewBuzzGenerator(sampleRate, 140)))
}

// PlayCancel plays a short click
func (sm *SoundManager) PlayCancel() {
	sm.play(beep.Take(sampleRate.N(30*time.Millisecond), NewToneGenerator(sampleRate, 330, 0.2)))
}

// PlayTick plays a very short blip when ticks are enabled
func (sm *SoundManager) PlayTick() {
	if !sm.ticks {
		return
	}
	sm.play(beep.Take(sampleRate.N(8*time.Millisecond), NewToneGenerator(sampleRate, 1760, 0.05)))
}
