package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

var _ ports.HistoryAPI = Client{}

// Timestamps come back in whatever form the server stored them; naive
// datetimes are read as UTC.
var historyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

type historyRecord struct {
	ID                string          `json:"id"`
	Filename          string          `json:"filename"`
	FileType          string          `json:"file_type"`
	OverallPrediction string          `json:"overall_prediction"`
	Confidence        float64         `json:"confidence"`
	OverallScore      float64         `json:"overall_score"`
	Timestamp         string          `json:"timestamp"`
	Results           json.RawMessage `json:"results"`
}

type historyResults struct {
	Filename          string  `json:"filename"`
	FileType          string  `json:"file_type"`
	OverallPrediction string  `json:"overall_prediction"`
	Confidence        float64 `json:"confidence"`
	OverallScore      float64 `json:"overall_score"`
}

type historyUploadBody struct {
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	Timestamp string `json:"timestamp"`
	Results   string `json:"results"`
}

func (c Client) ListHistory(ctx context.Context, token string) ([]domain.ScanHistoryEntry, error) {
	endpoint, err := c.endpoint(historyPath)
	if err != nil {
		return nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	resp, err := c.do(req, "list history")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var records []historyRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode history response: %w: %w", domain.ErrMalformedPayload, err)
	}

	entries := make([]domain.ScanHistoryEntry, 0, len(records))
	for i, record := range records {
		entry, err := record.toDomain()
		if err != nil {
			return nil, fmt.Errorf("history record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// CreateHistory stores one completed scan. The result travels as a JSON
// string inside the body, the shape the server persists verbatim.
func (c Client) CreateHistory(ctx context.Context, token string, upload domain.HistoryUpload) error {
	endpoint, err := c.endpoint(historyPath)
	if err != nil {
		return err
	}

	results, err := json.Marshal(upload.Result)
	if err != nil {
		return fmt.Errorf("encode history results: %w", err)
	}
	body, err := json.Marshal(historyUploadBody{
		Filename:  upload.Filename,
		FileType:  string(upload.FileType),
		Timestamp: upload.Timestamp.UTC().Format(time.RFC3339Nano),
		Results:   string(results),
	})
	if err != nil {
		return fmt.Errorf("encode history request: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create history upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := c.do(req, "create history")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	return nil
}

func (r historyRecord) toDomain() (domain.ScanHistoryEntry, error) {
	r.fillFromResults()

	timestamp, err := parseHistoryTime(r.Timestamp)
	if err != nil {
		return domain.ScanHistoryEntry{}, err
	}

	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	filename := r.Filename
	if filename == "" {
		filename = domain.UnknownFilename
	}

	mediaType := domain.FileTypeVideo
	if r.FileType == string(domain.FileTypeImage) {
		mediaType = domain.FileTypeImage
	}

	verdict := domain.VerdictAuthentic
	if r.OverallPrediction == string(domain.PredictionFake) {
		verdict = domain.VerdictDeepfake
	}

	confidence := r.Confidence
	if confidence == 0 {
		confidence = r.OverallScore
	}
	if confidence == 0 {
		confidence = domain.DefaultConfidence
	}

	return domain.ScanHistoryEntry{
		ID:         id,
		Filename:   filename,
		MediaType:  mediaType,
		Verdict:    verdict,
		Confidence: confidence,
		Timestamp:  timestamp,
	}, nil
}

// fillFromResults copies missing top-level fields out of the stored results
// blob. The blob is either a JSON object or a string holding one; anything
// else is ignored.
func (r *historyRecord) fillFromResults() {
	if len(r.Results) == 0 {
		return
	}

	raw := []byte(r.Results)
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var results historyResults
	if err := json.Unmarshal(raw, &results); err != nil {
		return
	}

	if r.Filename == "" {
		r.Filename = results.Filename
	}
	if r.FileType == "" {
		r.FileType = results.FileType
	}
	if r.OverallPrediction == "" {
		r.OverallPrediction = results.OverallPrediction
	}
	if r.Confidence == 0 {
		r.Confidence = results.Confidence
	}
	if r.OverallScore == 0 {
		r.OverallScore = results.OverallScore
	}
}

func parseHistoryTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, malformed("timestamp is missing")
	}

	for _, layout := range historyTimeLayouts {
		parsed, err := time.ParseInLocation(layout, trimmed, time.UTC)
		if err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, malformed(fmt.Sprintf("timestamp %q is not recognised", raw))
}
