package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for sessions and login flows.
func New() string {
	return ksuid.New().String()
}
