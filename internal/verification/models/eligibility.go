package models

import "fmt"

// Decision is the single yes/no outcome of the clinical rule, with a
// donor-facing reason when ineligible.
type Decision struct {
	Eligible bool
	Reason   string
}

// EligibilityRule decides whether the merged clinical payloads disqualify the
// donor. The rule runs after every merge; a donor who passed an earlier check
// can still be disqualified by a later partial update. The exact thresholds
// are organizational policy, which is why this is an interface rather than a
// function baked into the pipeline.
type EligibilityRule interface {
	Evaluate(medical MedicalChecks, screening HealthScreening) Decision
}

// BaselineRule applies the standard pre-donation screening thresholds. Only
// fields that have been submitted are judged; absent fields never disqualify,
// since the payloads fill in over multiple partial updates.
type BaselineRule struct{}

const (
	minHemoglobinGDL = 12.5
	minWeightKG      = 50.0
	maxTemperatureC  = 37.5
	minSystolicMMHG  = 90
	maxSystolicMMHG  = 180
	minDiastolicMMHG = 50
	maxDiastolicMMHG = 100
	minPulseBPM      = 50
	maxPulseBPM      = 100
)

func (BaselineRule) Evaluate(medical MedicalChecks, screening HealthScreening) Decision {
	if v := medical.HemoglobinGDL; v != nil && *v < minHemoglobinGDL {
		return ineligible("hemoglobin %.1f g/dL below minimum %.1f", *v, minHemoglobinGDL)
	}
	if v := medical.WeightKG; v != nil && *v < minWeightKG {
		return ineligible("weight %.1f kg below minimum %.1f", *v, minWeightKG)
	}
	if v := medical.TemperatureC; v != nil && *v > maxTemperatureC {
		return ineligible("temperature %.1f C above maximum %.1f", *v, maxTemperatureC)
	}
	if v := medical.SystolicBPMMHG; v != nil && (*v < minSystolicMMHG || *v > maxSystolicMMHG) {
		return ineligible("systolic pressure %d mmHg outside %d-%d", *v, minSystolicMMHG, maxSystolicMMHG)
	}
	if v := medical.DiastolicBPMMHG; v != nil && (*v < minDiastolicMMHG || *v > maxDiastolicMMHG) {
		return ineligible("diastolic pressure %d mmHg outside %d-%d", *v, minDiastolicMMHG, maxDiastolicMMHG)
	}
	if v := medical.PulseBPM; v != nil && (*v < minPulseBPM || *v > maxPulseBPM) {
		return ineligible("pulse %d bpm outside %d-%d", *v, minPulseBPM, maxPulseBPM)
	}
	if v := screening.RecentIllness; v != nil && *v {
		return ineligible("recent illness reported")
	}
	if v := screening.OnMedication; v != nil && *v {
		return ineligible("currently on medication")
	}
	if v := screening.RecentTattooOrPiercing; v != nil && *v {
		return ineligible("tattoo or piercing within deferral period")
	}
	if v := screening.RecentSurgery; v != nil && *v {
		return ineligible("surgery within deferral period")
	}
	if v := screening.PregnantOrNursing; v != nil && *v {
		return ineligible("pregnant or nursing")
	}
	return Decision{Eligible: true}
}

func ineligible(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}
