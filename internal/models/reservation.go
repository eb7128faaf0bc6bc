package models

import "fmt"

// ReservationStatus is podcore's fixed status vocabulary. Statuses are
// mutually exclusive and assigned exclusively by podcore; podgate only
// requests creation and renders whatever state the server reports.
type ReservationStatus string

const (
	StatusDropPending     ReservationStatus = "DropPending"
	StatusPickupPending   ReservationStatus = "PickupPending"
	StatusPickupCompleted ReservationStatus = "PickupCompleted"
	StatusDropCancelled   ReservationStatus = "DropCancelled"
	StatusRTOPending      ReservationStatus = "RTOPending"
	StatusRTOCompleted    ReservationStatus = "RTOCompleted"
)

var reservationStatuses = map[ReservationStatus]struct{}{
	StatusDropPending:     {},
	StatusPickupPending:   {},
	StatusPickupCompleted: {},
	StatusDropCancelled:   {},
	StatusRTOPending:      {},
	StatusRTOCompleted:    {},
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if _, ok := reservationStatuses[status]; !ok {
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
	return status, nil
}

type Reservation struct {
	ID           string            `json:"id"`
	Type         string            `json:"reservation_type"`
	Status       ReservationStatus `json:"reservation_status"`
	PodName      string            `json:"pod_name"`
	LocationName string            `json:"location_name"`
	UserName     string            `json:"user_name"`
	UserPhone    string            `json:"user_phone"`
	AWBNumber    string            `json:"awb_number"`
	Description  string            `json:"package_description"`
	DropOTP      string            `json:"drop_otp"`
	PickupOTP    string            `json:"pickup_otp"`
	RTOOTP       string            `json:"rto_otp"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// NewReservation is the creation request sent to podcore; the reservation id,
// status and locker OTPs all come back server-assigned.
type NewReservation struct {
	UserID         int64  `json:"user_id"`
	LocationID     string `json:"location_id"`
	AWBNumber      string `json:"awb_number"`
	ExecutivePhone string `json:"executive_phone"`
	Description    string `json:"package_description,omitempty"`
}
