package usage

import (
	"time"

	"cloudy/internal/domain/file"
)

// Quota is the storage available to one account.
const Quota int64 = 2 * 1024 * 1024 * 1024

type (
	Bucket struct {
		Size           int64
		LatestModified time.Time
	}
	Summary struct {
		Buckets map[file.Type]Bucket
		Used    int64
		All     int64
	}
)

// Summarize buckets files by type. Files with an unknown type are ignored.
func Summarize(files file.Files) Summary {
	s := Summary{
		Buckets: make(map[file.Type]Bucket, len(file.Types)),
		All:     Quota,
	}
	for _, t := range file.Types {
		s.Buckets[t] = Bucket{}
	}

	for _, f := range files {
		b, ok := s.Buckets[f.Type]
		if !ok {
			continue
		}
		b.Size += f.Size
		if f.UpdatedAt.After(b.LatestModified) {
			b.LatestModified = f.UpdatedAt
		}
		s.Buckets[f.Type] = b
		s.Used += f.Size
	}

	return s
}
