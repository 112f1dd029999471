package catalog

import "time"

// TranscriptStatus is the outcome of one transcript download.
type TranscriptStatus string

const (
	TranscriptDownloaded TranscriptStatus = "downloaded"
	TranscriptFailed     TranscriptStatus = "failed"
)

// ArtifactKind names a generated file.
type ArtifactKind string

const (
	ArtifactManuscript ArtifactKind = "manuscript"
	ArtifactQuiz       ArtifactKind = "quiz"
)

// Source is one downloaded video or playlist folder.
type Source struct {
	Hash      string
	Title     string
	Type      string
	URL       string
	RunID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transcript is one per-video download attempt.
type Transcript struct {
	ID         int64
	RunID      string
	SourceHash string
	VideoID    string
	Order      int
	Title      string
	Path       string
	Status     TranscriptStatus
	Error      string
	Chars      int
	CreatedAt  time.Time
}

// Artifact is a generated manuscript or quiz.
type Artifact struct {
	ID        int64
	RunID     string
	Kind      ArtifactKind
	Path      string
	Detail    string
	Bytes     int64
	CreatedAt time.Time
}

// Event is one row of the merged history view. For downloads Path is the
// folder hash and Bytes the transcript character total.
type Event struct {
	Kind      string
	Title     string
	Detail    string
	Path      string
	Bytes     int64
	RunID     string
	CreatedAt time.Time
}
