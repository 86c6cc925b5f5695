package id

import "github.com/oklog/ulid/v2"

// New returns a time-sortable ULID string. Pass records use these as
// primary keys so a plain ORDER BY pass_id is also chronological.
func New() string {
	return ulid.Make().String()
}
