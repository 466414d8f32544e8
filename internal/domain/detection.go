package domain

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

type Prediction string

const (
	PredictionReal Prediction = "real"
	PredictionFake Prediction = "fake"
)

func ParsePrediction(raw string) (Prediction, error) {
	switch Prediction(strings.ToLower(strings.TrimSpace(raw))) {
	case PredictionReal:
		return PredictionReal, nil
	case PredictionFake:
		return PredictionFake, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownPrediction, raw)
	}
}

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

func ParseFileType(raw string) (FileType, error) {
	switch FileType(strings.ToLower(strings.TrimSpace(raw))) {
	case FileTypeImage:
		return FileTypeImage, nil
	case FileTypeVideo:
		return FileTypeVideo, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFileType, raw)
	}
}

// FileTypeForContentType classifies a declared media type. Only video/*
// selects the video pipeline.
func FileTypeForContentType(contentType string) FileType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return FileTypeVideo
	}
	return FileTypeImage
}

type ResultSource string

const (
	SourceBackend  ResultSource = "backend"
	SourceFallback ResultSource = "fallback"
	SourceStream   ResultSource = "stream"
)

type MediaFile struct {
	Path        string
	Name        string
	ContentType string
}

func NewMediaFile(path string, contentType string) MediaFile {
	return MediaFile{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
	}
}

func (m MediaFile) FileType() FileType {
	return FileTypeForContentType(m.ContentType)
}

type DetectionRequest struct {
	Media   MediaFile
	Token   string
	Explain bool
}

type DetectionResult struct {
	OverallScore          float64      `json:"overall_score"`
	OverallPrediction     Prediction   `json:"overall_prediction"`
	Confidence            float64      `json:"confidence"`
	VisionScore           float64      `json:"vision_score"`
	VisionPrediction      Prediction   `json:"vision_prediction"`
	AudioSyncScore        *float64     `json:"audio_sync_score,omitempty"`
	PhysiologicalScore    *float64     `json:"physiological_score,omitempty"`
	Explanation           string       `json:"explanation,omitempty"`
	HeatmapURL            string       `json:"heatmap_url,omitempty"`
	ProcessingTimeSeconds float64      `json:"processing_time"`
	ModelVersion          string       `json:"model_version"`
	FileType              FileType     `json:"file_type"`
	FrameID               int64        `json:"frame_id,omitempty"`
	Source                ResultSource `json:"source,omitempty"`
}

func (r DetectionResult) IsDeepfake() bool {
	return r.OverallPrediction == PredictionFake
}

func (r DetectionResult) HasHeatmap() bool {
	return r.HeatmapURL != ""
}

func (r DetectionResult) Verdict() Verdict {
	if r.IsDeepfake() {
		return VerdictDeepfake
	}
	return VerdictAuthentic
}

// MarshalJSON adds the derived flags so serialized results stay readable by
// consumers that expect them. They are recomputed on every encode.
func (r DetectionResult) MarshalJSON() ([]byte, error) {
	type plain DetectionResult
	return json.Marshal(struct {
		plain
		IsDeepfake bool `json:"is_deepfake"`
		HasHeatmap bool `json:"has_heatmap"`
	}{
		plain:      plain(r),
		IsDeepfake: r.IsDeepfake(),
		HasHeatmap: r.HasHeatmap(),
	})
}
