package models

import "time"

// ServiceType is one of the consultation categories offered for booking.
type ServiceType string

const (
	ServiceCreditRepair     ServiceType = "credit_repair"
	ServiceCreditCoaching   ServiceType = "credit_coaching"
	ServiceDebtConsultation ServiceType = "debt_consultation"
	ServiceBusinessCredit   ServiceType = "business_credit"
)

// Valid reports whether the service type is one we offer.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceCreditRepair, ServiceCreditCoaching, ServiceDebtConsultation, ServiceBusinessCredit:
		return true
	}
	return false
}

// ServiceOffering describes a service type for the selection step.
type ServiceOffering struct {
	Type        ServiceType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Minutes     int         `json:"minutes"`
}

// BookingDraft holds what the user has entered so far in the booking wizard.
type BookingDraft struct {
	ServiceType    ServiceType `json:"serviceType,omitempty"`
	SelectedDate   string      `json:"selectedDate,omitempty"` // "2006-01-02"
	AvailableSlots []Slot      `json:"availableSlots"`
	StartTime      *time.Time  `json:"startTime,omitempty"`
	Notes          string      `json:"notes,omitempty"`
}

// BookingRequest is the body posted to the backend to reserve a consultation.
type BookingRequest struct {
	ServiceType ServiceType `json:"serviceType"`
	StartTime   time.Time   `json:"startTime"`
	Notes       string      `json:"notes"`
}

// BookingConfirmation is the record the backend returns for a reservation.
type BookingConfirmation struct {
	ID          string      `json:"id,omitempty"`
	MeetingLink string      `json:"meetingLink,omitempty"`
	StartTime   time.Time   `json:"startTime"`
	ServiceType ServiceType `json:"serviceType,omitempty"`
	Status      string      `json:"status,omitempty"`
}
