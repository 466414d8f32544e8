package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionRequiresIdentityAndToken(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		token   string
		wantErr bool
	}{
		{name: "complete", user: UserFromUsername("alice"), token: "T"},
		{name: "missing token", user: UserFromUsername("alice"), token: "", wantErr: true},
		{name: "blank token", user: UserFromUsername("alice"), token: "   ", wantErr: true},
		{name: "missing identity", user: User{}, token: "T", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := NewSession(tt.user, tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncompleteSession)
				assert.False(t, session.IsAuthenticated())
				assert.Nil(t, session.User)
				return
			}

			require.NoError(t, err)
			assert.True(t, session.IsAuthenticated())
			require.NotNil(t, session.User)
			assert.Equal(t, "alice", session.User.ID)
		})
	}
}

func TestFileTypeForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        FileType
	}{
		{contentType: "video/mp4", want: FileTypeVideo},
		{contentType: "VIDEO/quicktime", want: FileTypeVideo},
		{contentType: "image/png", want: FileTypeImage},
		{contentType: "application/octet-stream", want: FileTypeImage},
		{contentType: "", want: FileTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, FileTypeForContentType(tt.contentType))
		})
	}
}

func TestParsePredictionRejectsUnknownValues(t *testing.T) {
	got, err := ParsePrediction(" FAKE ")
	require.NoError(t, err)
	assert.Equal(t, PredictionFake, got)

	_, err = ParsePrediction("maybe")
	require.ErrorIs(t, err, ErrUnknownPrediction)

	_, err = ParseFileType("audio")
	require.ErrorIs(t, err, ErrUnknownFileType)
}

func TestIsDeepfakeFollowsOverallPrediction(t *testing.T) {
	fake := DetectionResult{OverallPrediction: PredictionFake, VisionPrediction: PredictionReal}
	authentic := DetectionResult{OverallPrediction: PredictionReal, VisionPrediction: PredictionFake}

	assert.True(t, fake.IsDeepfake())
	assert.Equal(t, VerdictDeepfake, fake.Verdict())
	assert.False(t, authentic.IsDeepfake())
	assert.Equal(t, VerdictAuthentic, authentic.Verdict())
}

func TestDetectionResultJSONCarriesDerivedFlags(t *testing.T) {
	result := DetectionResult{
		OverallScore:      0.9,
		OverallPrediction: PredictionFake,
		Confidence:        0.88,
		HeatmapURL:        "/static/heatmaps/1.png",
		FileType:          FileTypeImage,
	}

	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Equal(t, true, fields["is_deepfake"])
	assert.Equal(t, true, fields["has_heatmap"])
	assert.Equal(t, "fake", fields["overall_prediction"])

	var decoded DetectionResult
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, result, decoded)
}

func TestPrependHistoryKeepsNewestFirstAndCaps(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var history []ScanHistoryEntry
	for i := 0; i < HistoryRetention+7; i++ {
		entry := ScanHistoryEntry{ID: fmt.Sprintf("scan-%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		history = PrependHistory(history, entry, HistoryRetention)
		require.LessOrEqual(t, len(history), HistoryRetention)
	}

	require.Len(t, history, HistoryRetention)
	assert.Equal(t, fmt.Sprintf("scan-%d", HistoryRetention+6), history[0].ID)
	assert.Equal(t, "scan-7", history[len(history)-1].ID)
}

func TestPrependHistoryDoesNotAliasInput(t *testing.T) {
	existing := []ScanHistoryEntry{{ID: "a"}, {ID: "b"}}

	updated := PrependHistory(existing, ScanHistoryEntry{ID: "new"}, 2)

	assert.Equal(t, []string{"new", "a"}, ids(updated))
	assert.Equal(t, []string{"a", "b"}, ids(existing))
}

func TestNewScanHistoryEntryUsesResultVerdict(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	result := DetectionResult{OverallPrediction: PredictionFake, Confidence: 0.93}

	entry := NewScanHistoryEntry("id-1", "a.png", FileTypeImage, result, at)

	assert.Equal(t, ScanHistoryEntry{
		ID:         "id-1",
		Filename:   "a.png",
		MediaType:  FileTypeImage,
		Verdict:    VerdictDeepfake,
		Confidence: 0.93,
		Timestamp:  at,
	}, entry)
}

func TestNewJPEGFrameMessageBuildsDataURL(t *testing.T) {
	msg := NewJPEGFrameMessage(7, []byte{0xff, 0xd8, 0xff})

	assert.Equal(t, FrameMessageType, msg.Type)
	assert.Equal(t, int64(7), msg.FrameID)
	prefix, payload, ok := strings.Cut(msg.Data, ",")
	require.True(t, ok)
	assert.Equal(t, "data:image/jpeg;base64", prefix)
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, decoded)
}

func ids(entries []ScanHistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.ID)
	}
	return out
}
