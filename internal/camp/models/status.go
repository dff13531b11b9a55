package models

// CampStatus is the camp lifecycle state.
type CampStatus string

const (
	CampStatusPending   CampStatus = "pending"
	CampStatusApproved  CampStatus = "approved"
	CampStatusOngoing   CampStatus = "ongoing"
	CampStatusCompleted CampStatus = "completed"
	CampStatusCancelled CampStatus = "cancelled"
)

// campTransitions is the full set of legal status edges. Completed and
// cancelled are terminal.
var campTransitions = map[CampStatus][]CampStatus{
	CampStatusPending:  {CampStatusApproved, CampStatusCancelled},
	CampStatusApproved: {CampStatusOngoing, CampStatusCancelled},
	CampStatusOngoing:  {CampStatusCompleted, CampStatusCancelled},
}

// CanTransitionTo reports whether the edge from s to target is legal.
func (s CampStatus) CanTransitionTo(target CampStatus) bool {
	for _, allowed := range campTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status value.
func (s CampStatus) IsValid() bool {
	switch s {
	case CampStatusPending, CampStatusApproved, CampStatusOngoing, CampStatusCompleted, CampStatusCancelled:
		return true
	}
	return false
}
