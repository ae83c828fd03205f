package core

import "time"

// EditWindow is how long after creation a transaction stays editable.
const EditWindow = 12 * time.Hour

// CanEdit reports whether a record created at createdAt may still be changed at now.
// The boundary is inclusive: exactly 12h after creation is still editable.
func CanEdit(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= EditWindow
}
