package reservations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"podgate/api/internal/models"
)

func sampleReservations() []models.Reservation {
	return []models.Reservation{
		{ID: "1", UserName: "Asha Rao", UserPhone: "9876543210", AWBNumber: "AWB-1001", PodName: "POD-KOR-A1"},
		{ID: "2", UserName: "Vikram Shetty", UserPhone: "9123456780", AWBNumber: "AWB-2002", PodName: "POD-KOR-B2"},
		{ID: "3", UserName: "Meera Nair", UserPhone: "9000000001", AWBNumber: "XYZ-3003", PodName: "POD-WHT-C3"},
	}
}

func TestFilterMatchesAnyField(t *testing.T) {
	items := sampleReservations()

	assert.Len(t, Filter(items, "asha"), 1)
	assert.Len(t, Filter(items, "912345"), 1)
	assert.Len(t, Filter(items, "awb-"), 2)
	assert.Len(t, Filter(items, "pod-kor"), 2)
	assert.Len(t, Filter(items, "POD-WHT"), 1)
	assert.Empty(t, Filter(items, "nothing matches this"))
}

func TestFilterEmptyQueryReturnsAll(t *testing.T) {
	items := sampleReservations()
	assert.Equal(t, items, Filter(items, ""))
	assert.Equal(t, items, Filter(items, "   "))
}

func TestFilterIsExact(t *testing.T) {
	// The displayed subset must be exactly the items where at least one
	// field contains the query, case-insensitively.
	items := sampleReservations()
	got := Filter(items, "NAIR")
	assert.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestPaginate(t *testing.T) {
	items := make([]models.Reservation, 25)
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}

	page := Paginate(items, 1, 10)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 25, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)

	page = Paginate(items, 3, 10)
	assert.Len(t, page.Items, 5)

	// Past the end clamps to the last page; zero and negative reset to 1.
	page = Paginate(items, 99, 10)
	assert.Equal(t, 3, page.Page)
	page = Paginate(items, 0, 10)
	assert.Equal(t, 1, page.Page)
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate(nil, 1, 10)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.TotalItems)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 10, ClampPageSize(10))
	assert.Equal(t, 20, ClampPageSize(20))
	assert.Equal(t, 50, ClampPageSize(50))
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(37))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-5))
}
