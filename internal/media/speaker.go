package media

// SpeakerDetector maps periodic audio-level reports to a single "active
// speaker" designation. It uses a hysteresis band: a participant becomes
// active only at or above ActivateLevel, and the designation clears only
// once the current speaker drops below ReleaseLevel, so the highlight does
// not flicker around a single threshold.
type SpeakerDetector struct {
	ActivateLevel float64
	ReleaseLevel  float64

	current string
}

func NewSpeakerDetector() *SpeakerDetector {
	return &SpeakerDetector{
		ActivateLevel: 0.25,
		ReleaseLevel:  0.10,
	}
}

// Active returns the current active speaker id, or "" if nobody holds the
// designation.
func (d *SpeakerDetector) Active() string {
	return d.current
}

// Update consumes one level report and returns the active speaker id along
// with whether the designation changed.
func (d *SpeakerDetector) Update(levels map[string]float64) (string, bool) {
	var loudest string
	var max float64
	for id, level := range levels {
		if level > max {
			loudest, max = id, level
		}
	}

	prev := d.current
	switch {
	case loudest != "" && max >= d.ActivateLevel:
		d.current = loudest
	case d.current != "" && levels[d.current] < d.ReleaseLevel:
		d.current = ""
	}
	return d.current, d.current != prev
}
