package usage

import (
	"time"

	"cloudy/internal/domain/file"
	"cloudy/internal/domain/usage"
)

type (
	Bucket struct {
		Size           int64     `json:"size"`
		LatestModified time.Time `json:"latestModified"`
	}
	Response struct {
		Image    Bucket `json:"image"`
		Document Bucket `json:"document"`
		Video    Bucket `json:"video"`
		Audio    Bucket `json:"audio"`
		Other    Bucket `json:"other"`
		Used     int64  `json:"used"`
		All      int64  `json:"all"`
	}
)

func ToResponse(s usage.Summary) Response {
	b := func(t file.Type) Bucket {
		v := s.Buckets[t]
		return Bucket{Size: v.Size, LatestModified: v.LatestModified}
	}
	return Response{
		Image:    b(file.TypeImage),
		Document: b(file.TypeDocument),
		Video:    b(file.TypeVideo),
		Audio:    b(file.TypeAudio),
		Other:    b(file.TypeOther),
		Used:     s.Used,
		All:      s.All,
	}
}
