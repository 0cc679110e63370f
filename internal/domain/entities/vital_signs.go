package entities

// VitalSigns carries optional vital-sign measurements alongside a clinical
// note. Values arrive as free text from intake forms, so every field is a
// string and is coerced during evaluation; malformed values never fail a
// detection, they simply contribute nothing.
type VitalSigns struct {
	Temperature      string `json:"temperature,omitempty"`       // °C
	Pulse            string `json:"pulse,omitempty"`             // bpm
	RespiratoryRate  string `json:"respiratory_rate,omitempty"`  // breaths/min
	BloodPressure    string `json:"blood_pressure,omitempty"`    // "systolic/diastolic"
	OxygenSaturation string `json:"oxygen_saturation,omitempty"` // SpO2 %
}

// Empty reports whether no measurement is present at all.
func (v *VitalSigns) Empty() bool {
	if v == nil {
		return true
	}
	return v.Temperature == "" && v.Pulse == "" && v.RespiratoryRate == "" &&
		v.BloodPressure == "" && v.OxygenSaturation == ""
}

// VitalIndicators are per-family booleans derived from vital signs. They feed
// confidence boosts in the ensemble.
type VitalIndicators struct {
	Febrile          bool `json:"febrile"`
	Respiratory      bool `json:"respiratory"`
	Cardiovascular   bool `json:"cardiovascular"`
	Gastrointestinal bool `json:"gastrointestinal"`
}

// Any reports whether at least one indicator fired.
func (i *VitalIndicators) Any() bool {
	if i == nil {
		return false
	}
	return i.Febrile || i.Respiratory || i.Cardiovascular || i.Gastrointestinal
}
