package models

import "time"

// Slot is a bookable consultation start time.
type Slot struct {
	StartTime time.Time `json:"startTime"`
}

// ReminderPayload is the task body for consultation reminders.
type ReminderPayload struct {
	ReminderID  string      `json:"reminderId"`
	BookingID   string      `json:"bookingId"`
	UserID      string      `json:"userId"`
	ServiceType ServiceType `json:"serviceType"`
	StartTime   time.Time   `json:"startTime"`
	MeetingLink string      `json:"meetingLink,omitempty"`
}
