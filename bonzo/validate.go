package bonzo

// AssignmentResult reports each assignment check independently so callers can
// diagnose partial mismatches instead of staring at one collapsed boolean.
type AssignmentResult struct {
	UserEmailMatch  bool `json:"user_email_match"`
	UserIDMatch     bool `json:"user_id_match"`
	TeamIDMatch     bool `json:"team_id_match"`
	AssignedToMatch bool `json:"assigned_to_match"`
}

// AllMatch reports whether every check passed.
func (r AssignmentResult) AllMatch() bool {
	return r.UserEmailMatch && r.UserIDMatch && r.TeamIDMatch && r.AssignedToMatch
}

// ValidateAssignment checks that a prospect landed on the expected user and
// team. The team check compares the prospect's business entity.
func ValidateAssignment(p Prospect, expectedEmail string, expectedUserID, expectedTeamID int) AssignmentResult {
	return AssignmentResult{
		UserEmailMatch:  p.AssignedUser.Email == expectedEmail,
		UserIDMatch:     p.AssignedUser.ID == expectedUserID,
		TeamIDMatch:     p.BusinessEntityID == expectedTeamID,
		AssignedToMatch: p.AssignedTo == expectedUserID,
	}
}
