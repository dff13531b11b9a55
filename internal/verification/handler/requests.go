package handler

import (
	"strings"

	"hemocamp/internal/verification/models"
	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
)

// StartVerificationRequest is the HTTP request body for POST /verifications.
// The verifying staff member is the authenticated caller.
type StartVerificationRequest struct {
	DonorID string `json:"donor_id"`
	CampID  string `json:"camp_id"`

	// Parsed values (populated by Validate)
	parsedDonorID id.DonorID
	parsedCampID  id.CampID
}

// Validate validates and parses the request.
func (r *StartVerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	donorID, err := id.ParseDonorID(strings.TrimSpace(r.DonorID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "donor_id must be a valid UUID")
	}
	campID, err := id.ParseCampID(strings.TrimSpace(r.CampID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "camp_id must be a valid UUID")
	}
	r.parsedDonorID = donorID
	r.parsedCampID = campID
	return nil
}

func (r *StartVerificationRequest) ParsedDonorID() id.DonorID { return r.parsedDonorID }
func (r *StartVerificationRequest) ParsedCampID() id.CampID   { return r.parsedCampID }

// MedicalChecksRequest is the PATCH body for the medical-checks stage. All
// fields are optional; present fields merge into the stored payload.
type MedicalChecksRequest struct {
	models.MedicalChecks
}

func (r *MedicalChecksRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.HemoglobinGDL == nil && r.SystolicBPMMHG == nil && r.DiastolicBPMMHG == nil &&
		r.PulseBPM == nil && r.TemperatureC == nil && r.WeightKG == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one medical field is required")
	}
	if r.HemoglobinGDL != nil && *r.HemoglobinGDL <= 0 {
		return dErrors.New(dErrors.CodeValidation, "hemoglobin_g_dl must be positive")
	}
	if r.WeightKG != nil && *r.WeightKG <= 0 {
		return dErrors.New(dErrors.CodeValidation, "weight_kg must be positive")
	}
	return nil
}

// HealthScreeningRequest is the PATCH body for the health-screening stage.
type HealthScreeningRequest struct {
	models.HealthScreening
}

func (r *HealthScreeningRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.RecentIllness == nil && r.OnMedication == nil && r.RecentTattooOrPiercing == nil &&
		r.RecentSurgery == nil && r.PregnantOrNursing == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one screening answer is required")
	}
	return nil
}

// DonationDetailsRequest is the POST body for recording the draw.
type DonationDetailsRequest struct {
	BloodBagNumber string `json:"blood_bag_number"`
}

func (r *DonationDetailsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.BloodBagNumber = strings.TrimSpace(r.BloodBagNumber)
	if r.BloodBagNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "blood_bag_number is required")
	}
	if len(r.BloodBagNumber) > 64 {
		return dErrors.New(dErrors.CodeValidation, "blood_bag_number must be at most 64 characters")
	}
	return nil
}

// CompleteRequest is the POST body for the completion transition. Everything
// is optional; an empty body completes with no care notes.
type CompleteRequest struct {
	PostDonationCare models.PostDonationCare `json:"post_donation_care"`
	Complications    []string                `json:"complications"`
}

func (r *CompleteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for _, c := range r.Complications {
		if strings.TrimSpace(c) == "" {
			return dErrors.New(dErrors.CodeValidation, "complications must not contain empty entries")
		}
	}
	return nil
}
