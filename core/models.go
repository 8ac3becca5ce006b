package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for derived entities such as chunks.
// It is generated by content-based hashing so that re-deriving the same
// entity always yields the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the identifier for a chunk from its collection, source
// filename and position. Re-ingesting the same file into the same collection
// produces identical chunk IDs, which is what makes upserts into the vector
// index overwrite instead of duplicate.
func ChunkID(collection, filename string, index int) ID {
	return IDFromContent(fmt.Sprintf("%s/%s#%d", collection, filename, index))
}

// String renders the ID as a fixed-width hex string, usable as an external
// vector-index key.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// JobStatus is the lifecycle state of an ingestion job.
// Transitions only ever move forward; completed and failed are terminal.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether a job in this status can never change again.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether next is a legal forward transition from s.
// The legal moves are pending→processing, processing→completed and
// processing→failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Job is a unit of ingestion work: one or more files destined for one
// logical collection. ID, Collection, Files and CreatedAt are immutable
// after creation; only Status and Result change, and only through the
// job store's Transition operation.
type Job struct {
	ID         string     `json:"id"`
	Collection string     `json:"db"`
	Files      []string   `json:"files"`
	Status     JobStatus  `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	Result     *JobResult `json:"result,omitempty"`
}

// JobResult is the terminal payload of a job, set exactly once on the
// transition into completed or failed.
type JobResult struct {
	ProcessedFiles []string `json:"processed_files,omitempty"`
	SkippedFiles   []string `json:"skipped_files,omitempty"`
	ChunkCount     int      `json:"chunk_count"`
	Error          string   `json:"error,omitempty"`
}

// NewJob creates a pending job with a fresh unique ID and the current time.
// The caller is expected to validate collection and files first.
func NewJob(collection string, files []string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Collection: collection,
		Files:      append([]string(nil), files...),
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// Chunk is a bounded-length fragment of extracted text, the unit of
// embedding. Index is the zero-based position of the chunk within its
// source document.
type Chunk struct {
	Index int
	Text  string
}
