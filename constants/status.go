package constants

// JobStatus is the canonical status for rows in analysis_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued   JobStatus = "QUEUED"   // accepted, waiting for a worker
	JobStatusRunning  JobStatus = "RUNNING"  // in progress
	JobStatusAnalyzed JobStatus = "ANALYZED" // report built and stored
	JobStatusFailed   JobStatus = "FAILED"   // terminal failure
)
