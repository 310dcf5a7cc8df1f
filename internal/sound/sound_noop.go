//go:build ci

package sound

// SoundManager is silent in CI builds, where no audio device exists
type SoundManager struct{}

// NewSoundManager returns the silent manager
func NewSoundManager() *SoundManager { return &SoundManager{} }

// Init never fails without a speaker
func (*SoundManager) Init() error { return nil }

// Has is always false, nothing is loaded
func (*SoundManager) Has(string) bool { return false }

// Play discards the cue
func (*SoundManager) Play(string) {}

// Close has nothing to release
func (*SoundManager) Close() {}
