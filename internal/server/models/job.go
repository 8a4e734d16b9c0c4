package models

import "time"

// ThumbnailJob is the queue payload asking the pipeline to render thumbnails
// for one uploaded image.
type ThumbnailJob struct {
	FileID  string `json:"fileId"`
	OwnerID string `json:"userId"`
}

// JobStatus tracks a queued job through the pipeline.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	// JobFailed is a permanent failure; the job will never succeed.
	JobFailed JobStatus = "failed"
	// JobDead means the retry budget is exhausted.
	JobDead JobStatus = "dead"
)

// Job is a queue row carrying a ThumbnailJob.
type Job struct {
	ID        string
	Payload   ThumbnailJob
	Status    JobStatus
	Attempts  int
	LastError string
	VisibleAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
