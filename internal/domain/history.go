package domain

import "time"

// HistoryRetention caps the local scan history.
const HistoryRetention = 50

const (
	UnknownFilename   = "Unknown file"
	DefaultConfidence = 0.5
)

type Verdict string

const (
	VerdictAuthentic Verdict = "authentic"
	VerdictDeepfake  Verdict = "deepfake"
)

type ScanHistoryEntry struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MediaType  FileType  `json:"type"`
	Verdict    Verdict   `json:"verdict"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewScanHistoryEntry(id string, filename string, mediaType FileType, result DetectionResult, at time.Time) ScanHistoryEntry {
	return ScanHistoryEntry{
		ID:         id,
		Filename:   filename,
		MediaType:  mediaType,
		Verdict:    result.Verdict(),
		Confidence: result.Confidence,
		Timestamp:  at,
	}
}

// PrependHistory returns a new slice with entry first, truncated to limit.
// A non-positive limit means HistoryRetention.
func PrependHistory(existing []ScanHistoryEntry, entry ScanHistoryEntry, limit int) []ScanHistoryEntry {
	if limit <= 0 {
		limit = HistoryRetention
	}

	size := len(existing) + 1
	if size > limit {
		size = limit
	}

	updated := make([]ScanHistoryEntry, 0, size)
	updated = append(updated, entry)
	for _, previous := range existing {
		if len(updated) == limit {
			break
		}
		updated = append(updated, previous)
	}

	return updated
}

// HistoryUpload is the body stored remotely for one completed scan.
type HistoryUpload struct {
	Filename  string
	FileType  FileType
	Timestamp time.Time
	Result    DetectionResult
}

type HistorySource string

const (
	HistorySourceRemote HistorySource = "remote"
	HistorySourceLocal  HistorySource = "local"
)
