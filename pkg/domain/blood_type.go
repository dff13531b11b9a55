package domain

import dErrors "hemocamp/pkg/domain-errors"

// BloodType is the ABO/Rh group recorded on a donor profile. Donations carry
// a snapshot of this value taken when verification starts, not a live
// reference to the profile.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

var validBloodTypes = map[BloodType]bool{
	BloodTypeAPos: true, BloodTypeANeg: true,
	BloodTypeBPos: true, BloodTypeBNeg: true,
	BloodTypeABPos: true, BloodTypeABNeg: true,
	BloodTypeOPos: true, BloodTypeONeg: true,
}

// ParseBloodType validates a blood group string at trust boundaries.
func ParseBloodType(raw string) (BloodType, error) {
	bt := BloodType(raw)
	if !validBloodTypes[bt] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown blood type: "+raw)
	}
	return bt, nil
}
