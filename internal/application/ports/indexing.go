package ports

import (
	"cloudy/internal/domain/file"
)

// IndexScheduler hands work to the background indexing pipeline. Calls never
// block and never fail from the caller's point of view.
type IndexScheduler interface {
	ScheduleIndex(f *file.File)
	ScheduleRemove(id file.ID)
}
