package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/haloguard/haloguard-cli/internal/ports"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth    = 640
	DefaultJPEGQuality = 80
)

var ErrSourceClosed = errors.New("frame source closed")

var frameExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// DirectorySource replays the still images of a directory in name order,
// looping forever. It stands in for a camera.
type DirectorySource struct {
	paths    []string
	maxWidth int
	quality  int

	mu     sync.Mutex
	next   int
	closed bool
}

var _ ports.FrameSource = (*DirectorySource)(nil)

type FrameOption func(*DirectorySource)

func WithMaxWidth(width int) FrameOption {
	return func(s *DirectorySource) {
		if width > 0 {
			s.maxWidth = width
		}
	}
}

func NewDirectorySource(dir string, opts ...FrameOption) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(frameExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("frame directory %q has no images", dir)
	}
	slices.Sort(paths)

	source := &DirectorySource{
		paths:    paths,
		maxWidth: DefaultMaxWidth,
		quality:  DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(source)
	}

	return source, nil
}

// NextFrame decodes the next still, scales it down to the maximum width and
// returns it as JPEG.
func (s *DirectorySource) NextFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSourceClosed
	}
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)
	s.mu.Unlock()

	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}

	return EncodeJPEG(Fit(img, s.maxWidth), s.quality)
}

func (s *DirectorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame %q: %w", path, err)
	}
	return img, nil
}

// Fit scales img down so its width does not exceed maxWidth, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
	return scaled
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
