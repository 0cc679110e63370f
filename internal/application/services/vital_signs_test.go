package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalusugan-health/condition-screening/internal/domain/entities"
)

func TestEvaluateVitalSigns(t *testing.T) {
	tests := []struct {
		name   string
		vitals entities.VitalSigns
		want   entities.VitalIndicators
	}{
		{
			name:   "empty vitals",
			vitals: entities.VitalSigns{},
			want:   entities.VitalIndicators{},
		},
		{
			name:   "high temperature only",
			vitals: entities.VitalSigns{Temperature: "38.2"},
			want:   entities.VitalIndicators{Febrile: true},
		},
		{
			name:   "temperature at threshold is not febrile",
			vitals: entities.VitalSigns{Temperature: "37.5"},
			want:   entities.VitalIndicators{},
		},
		{
			name:   "elevated pulse fires febrile, respiratory and gastrointestinal",
			vitals: entities.VitalSigns{Pulse: "85"},
			want:   entities.VitalIndicators{Febrile: true, Respiratory: true, Gastrointestinal: true},
		},
		{
			name:   "tachycardia adds cardiovascular",
			vitals: entities.VitalSigns{Pulse: "105"},
			want:   entities.VitalIndicators{Febrile: true, Respiratory: true, Cardiovascular: true, Gastrointestinal: true},
		},
		{
			name:   "bradycardia is cardiovascular only",
			vitals: entities.VitalSigns{Pulse: "50"},
			want:   entities.VitalIndicators{Cardiovascular: true},
		},
		{
			name:   "fast respiratory rate",
			vitals: entities.VitalSigns{RespiratoryRate: "24"},
			want:   entities.VitalIndicators{Respiratory: true},
		},
		{
			name:   "hypertension",
			vitals: entities.VitalSigns{BloodPressure: "150/95"},
			want:   entities.VitalIndicators{Cardiovascular: true},
		},
		{
			name:   "hypotension fires cardiovascular and gastrointestinal",
			vitals: entities.VitalSigns{BloodPressure: "85/55"},
			want:   entities.VitalIndicators{Cardiovascular: true, Gastrointestinal: true},
		},
		{
			name:   "low-normal systolic fires gastrointestinal only",
			vitals: entities.VitalSigns{BloodPressure: "105/70"},
			want:   entities.VitalIndicators{Gastrointestinal: true},
		},
		{
			name:   "normal readings",
			vitals: entities.VitalSigns{Temperature: "36.8", Pulse: "72", RespiratoryRate: "16", BloodPressure: "120/80"},
			want:   entities.VitalIndicators{},
		},
		{
			name:   "values with units are coerced",
			vitals: entities.VitalSigns{Temperature: "38.2 C", Pulse: "88bpm"},
			want:   entities.VitalIndicators{Febrile: true, Respiratory: true, Gastrointestinal: true},
		},
		{
			name:   "malformed blood pressure resolves to false",
			vitals: entities.VitalSigns{BloodPressure: "abc/xyz"},
			want:   entities.VitalIndicators{},
		},
		{
			name:   "blood pressure without a slash is ignored",
			vitals: entities.VitalSigns{BloodPressure: "120"},
			want:   entities.VitalIndicators{},
		},
		{
			name:   "malformed temperature is ignored, pulse still counts",
			vitals: entities.VitalSigns{Temperature: "hot", Pulse: "90"},
			want:   entities.VitalIndicators{Febrile: true, Respiratory: true, Gastrointestinal: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateVitalSigns(&tt.vitals)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateVitalSignsNeverPanicsOnGarbage(t *testing.T) {
	garbage := entities.VitalSigns{
		Temperature:      "../../",
		Pulse:            "-",
		RespiratoryRate:  "++12",
		BloodPressure:    "///",
		OxygenSaturation: "ninety eight",
	}
	got := EvaluateVitalSigns(&garbage)
	assert.False(t, got.Any())
}

func TestVitalIndicatorsAny(t *testing.T) {
	assert.False(t, (&entities.VitalIndicators{}).Any())
	assert.True(t, (&entities.VitalIndicators{Febrile: true}).Any())

	var nilIndicators *entities.VitalIndicators
	assert.False(t, nilIndicators.Any())
}
