package media

import "testing"

func TestSpeakerActivation(t *testing.T) {
	d := NewSpeakerDetector()

	if id, changed := d.Update(map[string]float64{"a": 0.05, "b": 0.08}); id != "" || changed {
		t.Errorf("quiet room: id=%q changed=%t", id, changed)
	}

	id, changed := d.Update(map[string]float64{"a": 0.5, "b": 0.1})
	if id != "a" || !changed {
		t.Errorf("loud speaker: id=%q changed=%t, want a/true", id, changed)
	}
}

func TestSpeakerHysteresis(t *testing.T) {
	d := NewSpeakerDetector()
	d.Update(map[string]float64{"a": 0.5})

	// Falling into the band between release and activate keeps the
	// designation.
	if id, changed := d.Update(map[string]float64{"a": 0.15}); id != "a" || changed {
		t.Errorf("in band: id=%q changed=%t, want a/false", id, changed)
	}

	// Only dropping below the release level clears it.
	if id, changed := d.Update(map[string]float64{"a": 0.05}); id != "" || !changed {
		t.Errorf("below release: id=%q changed=%t, want empty/true", id, changed)
	}

	// And it does not re-light in the band either.
	if id, _ := d.Update(map[string]float64{"a": 0.15}); id != "" {
		t.Errorf("in band from idle: id=%q, want empty", id)
	}
}

func TestSpeakerHandover(t *testing.T) {
	d := NewSpeakerDetector()
	d.Update(map[string]float64{"a": 0.5})

	id, changed := d.Update(map[string]float64{"a": 0.3, "b": 0.6})
	if id != "b" || !changed {
		t.Errorf("handover: id=%q changed=%t, want b/true", id, changed)
	}
}

func TestSpeakerLeavesSilently(t *testing.T) {
	d := NewSpeakerDetector()
	d.Update(map[string]float64{"a": 0.5})

	// Speaker disappears from the report entirely, level reads as zero.
	if id, changed := d.Update(map[string]float64{"b": 0.05}); id != "" || !changed {
		t.Errorf("vanished speaker: id=%q changed=%t, want empty/true", id, changed)
	}
}
