package models

import "time"

// MedicalChecks holds the vitals captured at the camp desk. Fields are
// pointers so partial submissions merge without clobbering earlier readings.
type MedicalChecks struct {
	HemoglobinGDL   *float64 `json:"hemoglobin_g_dl,omitempty"`
	SystolicBPMMHG  *int     `json:"systolic_bp_mmhg,omitempty"`
	DiastolicBPMMHG *int     `json:"diastolic_bp_mmhg,omitempty"`
	PulseBPM        *int     `json:"pulse_bpm,omitempty"`
	TemperatureC    *float64 `json:"temperature_c,omitempty"`
	WeightKG        *float64 `json:"weight_kg,omitempty"`
}

// Merge overlays the supplied fields onto m, keeping existing values where the
// input is absent.
func (m MedicalChecks) Merge(in MedicalChecks) MedicalChecks {
	if in.HemoglobinGDL != nil {
		m.HemoglobinGDL = in.HemoglobinGDL
	}
	if in.SystolicBPMMHG != nil {
		m.SystolicBPMMHG = in.SystolicBPMMHG
	}
	if in.DiastolicBPMMHG != nil {
		m.DiastolicBPMMHG = in.DiastolicBPMMHG
	}
	if in.PulseBPM != nil {
		m.PulseBPM = in.PulseBPM
	}
	if in.TemperatureC != nil {
		m.TemperatureC = in.TemperatureC
	}
	if in.WeightKG != nil {
		m.WeightKG = in.WeightKG
	}
	return m
}

// HealthScreening holds the questionnaire answers. Same partial-merge
// semantics as MedicalChecks.
type HealthScreening struct {
	RecentIllness          *bool `json:"recent_illness,omitempty"`
	OnMedication           *bool `json:"on_medication,omitempty"`
	RecentTattooOrPiercing *bool `json:"recent_tattoo_or_piercing,omitempty"`
	RecentSurgery          *bool `json:"recent_surgery,omitempty"`
	PregnantOrNursing      *bool `json:"pregnant_or_nursing,omitempty"`
}

// Merge overlays the supplied answers onto h.
func (h HealthScreening) Merge(in HealthScreening) HealthScreening {
	if in.RecentIllness != nil {
		h.RecentIllness = in.RecentIllness
	}
	if in.OnMedication != nil {
		h.OnMedication = in.OnMedication
	}
	if in.RecentTattooOrPiercing != nil {
		h.RecentTattooOrPiercing = in.RecentTattooOrPiercing
	}
	if in.RecentSurgery != nil {
		h.RecentSurgery = in.RecentSurgery
	}
	if in.PregnantOrNursing != nil {
		h.PregnantOrNursing = in.PregnantOrNursing
	}
	return h
}

// DonationDetails records the physical draw. StartedAt is pinned when the
// details are recorded; EndedAt when the verification completes.
type DonationDetails struct {
	BloodBagNumber string     `json:"blood_bag_number"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	Complications  []string   `json:"complications,omitempty"`
}

// PostDonationCare is captured at completion.
type PostDonationCare struct {
	RestMinutes       *int   `json:"rest_minutes,omitempty"`
	RefreshmentsGiven *bool  `json:"refreshments_given,omitempty"`
	AdverseReaction   string `json:"adverse_reaction,omitempty"`
	Instructions      string `json:"instructions,omitempty"`
}
