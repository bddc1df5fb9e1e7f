package domain

import "time"

// DefaultAttendanceLocation is recorded for member self check-ins.
const DefaultAttendanceLocation = "Main Gym"

// AttendanceStatus describes a member's state for the current day.
type AttendanceStatus string

const (
	AttendanceNone       AttendanceStatus = "none"
	AttendanceCheckedIn  AttendanceStatus = "in"
	AttendanceCheckedOut AttendanceStatus = "out"
)

// AttendanceRecord is one gym visit.
type AttendanceRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Location     string     `json:"location"`
	CreatedBy    string     `json:"created_by"`
}

// Status derives the day status from the latest record of the day.
func (r *AttendanceRecord) Status() AttendanceStatus {
	if r == nil {
		return AttendanceNone
	}
	if r.CheckOutTime != nil {
		return AttendanceCheckedOut
	}
	return AttendanceCheckedIn
}

// AdminAttendanceRow joins a visit with member details.
type AdminAttendanceRow struct {
	AttendanceRecord
	FullName             string `json:"full_name"`
	Email                string `json:"email"`
	MembershipPlan       string `json:"membership_plan"`
	DurationMinutes      *int   `json:"duration_minutes,omitempty"`
	IsCurrentlyCheckedIn bool   `json:"is_currently_checked_in"`
}

// MemberStats summarises a member's activity.
type MemberStats struct {
	UserID             string `json:"user_id"`
	RecentVisits       int    `json:"recent_visits"`
	TotalVisitsMonth   int    `json:"total_visits_month"`
	MembershipStatus   string `json:"membership_status"`
	MembershipDaysLeft int    `json:"membership_days_left"`
}
