package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/haloguard/haloguard-cli/internal/domain"
)

const barWidth = 24

type Options struct {
	// Now anchors relative timestamps. Zero prints absolute times.
	Now time.Time
	// Filename labels a detection report.
	Filename string
}

// Detection renders a single analysis result.
func Detection(result domain.DetectionResult, opts Options) (string, error) {
	return run(func(s styles) string {
		return renderDetection(result, opts, s)
	})
}

// History renders the scan history listing.
func History(entries []domain.ScanHistoryEntry, source domain.HistorySource, opts Options) (string, error) {
	return run(func(s styles) string {
		return renderHistory(entries, source, opts, s)
	})
}

// StreamLine is the one-line summary printed for each live result.
func StreamLine(result domain.DetectionResult) string {
	return fmt.Sprintf("frame %d: %s (confidence %.0f%%, %.2fs)",
		result.FrameID,
		verdictLabel(result.Verdict()),
		result.Confidence*100,
		result.ProcessingTimeSeconds,
	)
}

func renderDetection(result domain.DetectionResult, opts Options, s styles) string {
	title := "Detection Result"
	if opts.Filename != "" {
		title += ": " + opts.Filename
	}

	lines := []string{
		s.title.Render(title),
		verdictStyle(result.Verdict(), s).Render(strings.ToUpper(verdictLabel(result.Verdict()))),
	}

	if result.Source == domain.SourceFallback {
		lines = append(lines, s.warning.Render("[offline] backend unreachable, result synthesized locally"))
	}

	scores := []string{
		scoreLine("overall", result.OverallScore, s),
		scoreLine("confidence", result.Confidence, s),
		scoreLine("vision", result.VisionScore, s),
	}
	if result.AudioSyncScore != nil {
		scores = append(scores, scoreLine("audio sync", *result.AudioSyncScore, s))
	}
	if result.PhysiologicalScore != nil {
		scores = append(scores, scoreLine("physiological", *result.PhysiologicalScore, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, scores...)))

	details := []string{
		s.detail.Render(fmt.Sprintf("type: %s", result.FileType)),
		s.detail.Render(fmt.Sprintf("model: %s", valueOrNA(result.ModelVersion))),
		s.detail.Render(fmt.Sprintf("processing: %.2fs", result.ProcessingTimeSeconds)),
	}
	if result.HasHeatmap() {
		details = append(details, s.detail.Render("heatmap: "+result.HeatmapURL))
	}
	if result.Explanation != "" {
		details = append(details, s.detail.Render("explanation: "+result.Explanation))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, details...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHistory(entries []domain.ScanHistoryEntry, source domain.HistorySource, opts Options, s styles) string {
	lines := []string{
		s.title.Render("Scan History"),
		s.header.Render(fmt.Sprintf("scans: %d (source: %s)", len(entries), source)),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No scans recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, historyRow(entry, opts, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func historyRow(entry domain.ScanHistoryEntry, opts Options, s styles) string {
	verdict := verdictStyle(entry.Verdict, s).Render(fmt.Sprintf("%-9s", verdictLabel(entry.Verdict)))
	confidence := lipgloss.NewStyle().
		Foreground(interpolateColor(entry.Confidence, 0, 1)).
		Render(fmt.Sprintf("%3.0f%%", clampPercent(entry.Confidence*100)))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		verdict,
		" ",
		confidence,
		" ",
		s.detail.Render(fmt.Sprintf("%-5s", entry.MediaType)),
		" ",
		s.detail.Render(entry.Filename),
		" ",
		s.header.Render("("+formatWhen(entry.Timestamp, opts.Now)+")"),
	)
}

func scoreLine(label string, score float64, s styles) string {
	percent := clampPercent(score * 100)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.scoreKey.Render(fmt.Sprintf("%-14s", label+":")),
		renderProgressBar(percent, barWidth, s),
		" ",
		lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100)).Render(fmt.Sprintf("%3.0f%%", percent)),
	)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func verdictLabel(verdict domain.Verdict) string {
	if verdict == domain.VerdictDeepfake {
		return "deepfake"
	}
	return "authentic"
}

func verdictStyle(verdict domain.Verdict, s styles) lipgloss.Style {
	if verdict == domain.VerdictDeepfake {
		return s.deepfake
	}
	return s.authentic
}

func valueOrNA(value string) string {
	if value == "" {
		return "n/a"
	}
	return value
}

func formatWhen(at time.Time, now time.Time) string {
	if now.IsZero() || at.After(now) {
		return at.Local().Format("2006-01-02 15:04")
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(elapsed.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	colorCode := int(240.0 + 15.0*normalized)
	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
