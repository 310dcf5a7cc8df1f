package sound

import "time"

// Cue names, matching file names under assets/sounds without extension
const (
	CueMove      = "move"
	CueRotate    = "rotate"
	CueLock      = "lock"
	CueLineClear = "line_clear"
	CueTetris    = "tetris"
	CueGarbage   = "garbage"
	CueAttack    = "attack"
	CueKO        = "ko"
	CueWin       = "win"
	CueLose      = "lose"
	CueCountdown = "countdown"
)

// cueTones are the fallback tone frequencies in Hz
var cueTones = map[string]float64{
	CueMove:      330,
	CueRotate:    392,
	CueLock:      262,
	CueLineClear: 523,
	CueTetris:    784,
	CueGarbage:   196,
	CueAttack:    659,
	CueKO:        147,
	CueWin:       1047,
	CueLose:      110,
	CueCountdown: 440,
}

// cueLength is the duration of a synthesized cue
const cueLength = 80 * time.Millisecond

// Cues lists every cue name
func Cues() []string {
	return []string{
		CueMove, CueRotate, CueLock, CueLineClear, CueTetris,
		CueGarbage, CueAttack, CueKO, CueWin, CueLose, CueCountdown,
	}
}
