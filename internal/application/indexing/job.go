package indexing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cloudy/internal/domain/file"
)

type Kind string

const (
	KindIndex  Kind = "index"
	KindRemove Kind = "remove"
)

// RoutingKey is the broker routing key jobs of kind k are published with.
func (k Kind) RoutingKey() string { return "file." + string(k) }

// KindFromRoutingKey is the inverse of Kind.RoutingKey.
func KindFromRoutingKey(rk string) (Kind, error) {
	switch rk {
	case KindIndex.RoutingKey():
		return KindIndex, nil
	case KindRemove.RoutingKey():
		return KindRemove, nil
	}
	return "", fmt.Errorf("unknown routing key %q", rk)
}

// RoutingKeys lists every routing key a job can be published with.
func RoutingKeys() []string {
	return []string{KindIndex.RoutingKey(), KindRemove.RoutingKey()}
}

// Target is the snapshot of a file record the pipeline works on. It is
// taken at scheduling time so a job never reads a half-updated record.
type Target struct {
	FileID       file.ID   `json:"file_id"`
	Name         string    `json:"name"`
	Extension    string    `json:"extension"`
	Type         file.Type `json:"type"`
	Size         int64     `json:"size"`
	BucketFileID string    `json:"bucket_file_id"`
	URL          string    `json:"url"`
}

func TargetOf(f *file.File) Target {
	return Target{
		FileID:       f.ID,
		Name:         f.Name,
		Extension:    f.Extension,
		Type:         f.Type,
		Size:         f.Size,
		BucketFileID: f.BucketFileID,
		URL:          f.URL,
	}
}

type Job struct {
	ID         uuid.UUID `json:"job_id"`
	Kind       Kind      `json:"kind"`
	Target     Target    `json:"target"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewIndexJob(f *file.File) Job {
	return Job{ID: uuid.New(), Kind: KindIndex, Target: TargetOf(f), EnqueuedAt: time.Now().UTC()}
}

func NewRemoveJob(id file.ID) Job {
	return Job{ID: uuid.New(), Kind: KindRemove, Target: Target{FileID: id}, EnqueuedAt: time.Now().UTC()}
}

func (j Job) Encode() ([]byte, error) { return json.Marshal(j) }

func DecodeJob(b []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	switch j.Kind {
	case KindIndex, KindRemove:
	default:
		return Job{}, fmt.Errorf("decode job: unknown kind %q", j.Kind)
	}
	if j.Target.FileID == uuid.Nil {
		return Job{}, fmt.Errorf("decode job %s: missing file id", j.ID)
	}
	return j, nil
}
