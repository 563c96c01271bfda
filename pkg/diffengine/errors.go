package diffengine

import "fmt"

// InsufficientHistoryError reports fewer than two snapshots for a
// host/category.
type InsufficientHistoryError struct {
	Host     string
	Category string
	Found    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("need 2 snapshots for %s/%s to compare, found %d", e.Host, e.Category, e.Found)
}
