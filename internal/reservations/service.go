package reservations

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"podgate/api/internal/models"
	"podgate/api/internal/podcore"
)

var ErrNoFreeDoor = errors.New("no doors available at this location")

// Service fetches reservation lists from podcore. It always pulls the full
// status-filtered set eagerly; search and paging run in memory afterwards.
type Service struct {
	podcore *podcore.Client
	log     zerolog.Logger
}

func NewService(client *podcore.Client, log zerolog.Logger) *Service {
	return &Service{podcore: client, log: log}
}

// ForUser lists one user's reservations at a location in one status. A
// missing location id is the degraded no-context state: an empty list, no
// upstream call.
func (s *Service) ForUser(ctx context.Context, userPhone, locationID string, status models.ReservationStatus) ([]models.Reservation, error) {
	if locationID == "" {
		return []models.Reservation{}, nil
	}
	items, err := s.podcore.Reservations(ctx, userPhone, locationID, status)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Reservation{}
	}
	return items, nil
}

// ForLocation is the admin/security variant: every user's reservations at the
// location in one status.
func (s *Service) ForLocation(ctx context.Context, locationID string, status models.ReservationStatus) ([]models.Reservation, error) {
	if locationID == "" {
		return []models.Reservation{}, nil
	}
	items, err := s.podcore.LocationReservations(ctx, locationID, status)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Reservation{}
	}
	return items, nil
}

// Dashboard is the customer landing payload: the four status lists, fetched
// concurrently into independent slots. The slots have no ordering dependency,
// so one slow or failing status does not hold up or poison the others.
type Dashboard struct {
	DropPending     []models.Reservation `json:"drop_pending"`
	PickupPending   []models.Reservation `json:"pickup_pending"`
	PickupCompleted []models.Reservation `json:"pickup_completed"`
	DropCancelled   []models.Reservation `json:"drop_cancelled"`
}

func (s *Service) Dashboard(ctx context.Context, userPhone, locationID string) (Dashboard, error) {
	dash := Dashboard{
		DropPending:     []models.Reservation{},
		PickupPending:   []models.Reservation{},
		PickupCompleted: []models.Reservation{},
		DropCancelled:   []models.Reservation{},
	}
	if locationID == "" {
		return dash, nil
	}

	slots := []struct {
		status models.ReservationStatus
		out    *[]models.Reservation
	}{
		{models.StatusDropPending, &dash.DropPending},
		{models.StatusPickupPending, &dash.PickupPending},
		{models.StatusPickupCompleted, &dash.PickupCompleted},
		{models.StatusDropCancelled, &dash.DropCancelled},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(slots))
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, status models.ReservationStatus, out *[]models.Reservation) {
			defer wg.Done()
			items, err := s.podcore.Reservations(ctx, userPhone, locationID, status)
			if err != nil {
				errs[i] = err
				return
			}
			if items != nil {
				*out = items
			}
		}(i, slot.status, slot.out)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return dash, err
		}
	}
	return dash, nil
}

// Create places a drop reservation after confirming the location still has a
// free door. Podcore assigns the id, status and locker OTPs.
func (s *Service) Create(ctx context.Context, input models.NewReservation) (models.Reservation, error) {
	free, err := s.podcore.FreeDoorAvailable(ctx, input.LocationID)
	if err != nil {
		return models.Reservation{}, err
	}
	if !free {
		return models.Reservation{}, ErrNoFreeDoor
	}
	return s.podcore.CreateReservation(ctx, input)
}
