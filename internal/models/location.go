package models

type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
	Status  string `json:"status"`
}

type PodStatus string

const (
	PodStatusAvailable   PodStatus = "available"
	PodStatusOccupied    PodStatus = "occupied"
	PodStatusMaintenance PodStatus = "maintenance"
)

// Pod is a physical locker unit grouped under a Location. Read-only here.
type Pod struct {
	ID         string    `json:"id"`
	Name       string    `json:"pod_name"`
	LocationID string    `json:"location_id"`
	Status     PodStatus `json:"status"`
	DoorCount  int       `json:"pod_numdoors"`
}
