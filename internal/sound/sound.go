//go:build !ci

package sound

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const (
	// soundDir holds optional <cue>.wav / <cue>.mp3 overrides
	soundDir   = "assets/sounds"
	sampleRate = beep.SampleRate(44100)
	// minRepeat drops a cue retriggered faster than this (auto-repeat on held keys)
	minRepeat = 30 * time.Millisecond
)

// cueGain is the volume offset per cue in beep's log2 units; quiet cues fire on every key
var cueGain = map[string]float64{
	CueMove:   -1.5,
	CueRotate: -1,
	CueLock:   -0.5,
	CueTetris: 0.5,
	CueKO:     0.5,
}

// SoundManager holds one decoded buffer per cue and plays them on demand
type SoundManager struct {
	dir      string
	buffers  map[string]*beep.Buffer
	lastPlay map[string]time.Time
	enabled  bool
}

// NewSoundManager creates a disabled manager; Init enables it
func NewSoundManager() *SoundManager {
	return &SoundManager{
		dir:      soundDir,
		buffers:  make(map[string]*beep.Buffer),
		lastPlay: make(map[string]time.Time),
	}
}

// Init opens the speaker and prepares every cue, from a file when present
func (sm *SoundManager) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	sm.enabled = true

	err := sm.loadCueFiles()
	sm.synthesizeMissing()
	return err
}

func format() beep.Format {
	return beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
}

// loadCueFiles looks for a file per cue; a broken file is reported but the cue still gets a tone
func (sm *SoundManager) loadCueFiles() error {
	var errs []error
	for _, cue := range Cues() {
		for _, ext := range []string{".wav", ".mp3"} {
			path := filepath.Join(sm.dir, cue+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			buf, err := decodeFile(path)
			if err != nil {
				errs = append(errs, fmt.Errorf("cue %s: %w", cue, err))
				continue
			}
			sm.buffers[cue] = buf
			break
		}
	}
	return errors.Join(errs...)
}

func decodeFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		srcFmt   beep.Format
	)
	if filepath.Ext(path) == ".mp3" {
		streamer, srcFmt, err = mp3.Decode(f)
	} else {
		streamer, srcFmt, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var s beep.Streamer = streamer
	if srcFmt.SampleRate != sampleRate {
		s = beep.Resample(4, srcFmt.SampleRate, sampleRate, streamer)
	}
	buf := beep.NewBuffer(format())
	buf.Append(s)
	return buf, nil
}

// synthesizeMissing gives every cue without a file a short sine tone
func (sm *SoundManager) synthesizeMissing() {
	for _, cue := range Cues() {
		if _, ok := sm.buffers[cue]; ok {
			continue
		}
		tone, err := generators.SineTone(sampleRate, cueTones[cue])
		if err != nil {
			continue
		}
		buf := beep.NewBuffer(format())
		buf.Append(beep.Take(sampleRate.N(cueLength), tone))
		sm.buffers[cue] = buf
	}
}

// Has reports whether a cue is ready to play
func (sm *SoundManager) Has(name string) bool {
	_, ok := sm.buffers[name]
	return ok
}

// Play starts a cue without blocking. Unknown cues and fast retriggers are ignored.
func (sm *SoundManager) Play(name string) {
	if !sm.enabled || !sm.due(name, time.Now()) {
		return
	}
	buf, ok := sm.buffers[name]
	if !ok {
		return
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if gain, ok := cueGain[name]; ok {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: gain}
	}
	speaker.Play(s)
}

// due records the play time and reports whether enough time passed since the last one
func (sm *SoundManager) due(name string, now time.Time) bool {
	if last, ok := sm.lastPlay[name]; ok && now.Sub(last) < minRepeat {
		return false
	}
	sm.lastPlay[name] = now
	return true
}

// Close stops further playback
func (sm *SoundManager) Close() {
	if sm.enabled {
		speaker.Clear()
	}
	sm.enabled = false
}
