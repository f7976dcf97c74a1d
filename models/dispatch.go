package models

// Audience selects the recipients of a dispatch. Exactly one selector is
// used, chosen by Kind.
type Audience struct {
	Kind    string   `json:"kind" binding:"required"` // user | users | role | unit | all
	UserID  string   `json:"userId,omitempty"`
	UserIDs []string `json:"userIds,omitempty"`
	Role    string   `json:"role,omitempty"`
	UnitID  string   `json:"unitId,omitempty"`
}

// DispatchFailure describes one recipient that could not be notified.
type DispatchFailure struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// DispatchResult is the partial-delivery outcome of a bulk dispatch. The
// operation as a whole succeeds even when individual recipients fail; callers
// compare Requested against len(Notifications) to detect gaps.
type DispatchResult struct {
	Requested     int               `json:"requested"`
	Notifications []*Notification   `json:"notifications"`
	Failures      []DispatchFailure `json:"failures,omitempty"`
}
