package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

var _ ports.Detector = Client{}

type detectionResponse struct {
	OverallScore       *float64 `json:"overall_score"`
	OverallPrediction  *string  `json:"overall_prediction"`
	Confidence         *float64 `json:"confidence"`
	VisionScore        *float64 `json:"vision_score"`
	VisionPrediction   *string  `json:"vision_prediction"`
	AudioSyncScore     *float64 `json:"audio_sync_score"`
	PhysiologicalScore *float64 `json:"physiological_score"`
	Explanation        string   `json:"explanation"`
	HeatmapURL         string   `json:"heatmap_url"`
	ProcessingTime     *float64 `json:"processing_time"`
	ModelVersion       string   `json:"model_version"`
	FileType           *string  `json:"file_type"`
}

// Detect uploads req.Media to the image or video detector, depending on its
// declared content type.
func (c Client) Detect(ctx context.Context, req domain.DetectionRequest) (domain.DetectionResult, error) {
	fileType := req.Media.FileType()
	path := detectImagePath
	if fileType == domain.FileTypeVideo {
		path = detectVideoPath
	}

	endpoint, err := c.endpoint(path)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	if req.Explain && fileType == domain.FileTypeImage {
		endpoint += "?" + url.Values{"explain": []string{"true"}}.Encode()
	}

	file, err := os.Open(req.Media.Path)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("open media %q: %w", req.Media.Path, err)
	}
	defer func() { _ = file.Close() }()

	body, contentType := multipartBody(file, req.Media)

	requestCtx, cancel := c.detectContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, body)
	if err != nil {
		_ = body.Close()
		return domain.DetectionResult{}, fmt.Errorf("create detect request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	setBearer(httpReq, req.Token)

	resp, err := c.do(httpReq, "detect "+string(fileType))
	if err != nil {
		return domain.DetectionResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	result, err := decodeDetection(io.LimitReader(resp.Body, maxResponseBytes), fileType)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	result.Source = domain.SourceBackend

	return result, nil
}

// multipartBody streams file as the "file" field. The declared content type
// is kept on the part so the server sees the same media class as the client.
func multipartBody(file io.Reader, media domain.MediaFile) (io.ReadCloser, string) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", multipart.FileContentDisposition("file", media.Name))
		contentType := media.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			_ = pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pipeWriter.CloseWithError(err)
			return
		}
		_ = pipeWriter.CloseWithError(writer.Close())
	}()

	return pipeReader, writer.FormDataContentType()
}

func decodeDetection(r io.Reader, requested domain.FileType) (domain.DetectionResult, error) {
	var payload detectionResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return domain.DetectionResult{}, fmt.Errorf("decode detection response: %w: %w", domain.ErrMalformedPayload, err)
	}

	result, err := payload.toDomain(requested)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("detection response: %w", err)
	}

	return result, nil
}

func (p detectionResponse) toDomain(requested domain.FileType) (domain.DetectionResult, error) {
	if p.OverallPrediction == nil {
		return domain.DetectionResult{}, malformed("overall_prediction is missing")
	}
	if p.OverallScore == nil {
		return domain.DetectionResult{}, malformed("overall_score is missing")
	}

	overall, err := domain.ParsePrediction(*p.OverallPrediction)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}

	result := domain.DetectionResult{
		OverallScore:       *p.OverallScore,
		OverallPrediction:  overall,
		Confidence:         valueOr(p.Confidence, domain.DefaultConfidence),
		VisionScore:        valueOr(p.VisionScore, *p.OverallScore),
		VisionPrediction:   overall,
		AudioSyncScore:     p.AudioSyncScore,
		PhysiologicalScore: p.PhysiologicalScore,
		Explanation:        p.Explanation,
		HeatmapURL:         p.HeatmapURL,
		ModelVersion:       p.ModelVersion,
		FileType:           requested,
	}

	if p.VisionPrediction != nil {
		vision, err := domain.ParsePrediction(*p.VisionPrediction)
		if err != nil {
			return domain.DetectionResult{}, fmt.Errorf("%w: vision: %w", domain.ErrMalformedPayload, err)
		}
		result.VisionPrediction = vision
	}

	if p.FileType != nil {
		fileType, err := domain.ParseFileType(*p.FileType)
		if err != nil {
			return domain.DetectionResult{}, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
		}
		result.FileType = fileType
	}

	if p.ProcessingTime != nil {
		if *p.ProcessingTime < 0 {
			return domain.DetectionResult{}, malformed("processing_time is negative")
		}
		result.ProcessingTimeSeconds = *p.ProcessingTime
	}

	scores := map[string]*float64{
		"overall_score":       &result.OverallScore,
		"confidence":          &result.Confidence,
		"vision_score":        &result.VisionScore,
		"audio_sync_score":    result.AudioSyncScore,
		"physiological_score": result.PhysiologicalScore,
	}
	for name, score := range scores {
		if score == nil {
			continue
		}
		if *score < 0 || *score > 1 {
			return domain.DetectionResult{}, malformed(fmt.Sprintf("%s %v out of range", name, *score))
		}
	}

	return result, nil
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedPayload, reason)
}

func valueOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}
