// Package imagery acquires camera snapshots and turns them into observations.
package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// Image is one snapshot. CapturedAt becomes the observation timestamp.
type Image struct {
	Data        []byte
	ContentType string
	CapturedAt  time.Time
}

// Provider returns the current image of the site.
type Provider interface {
	Get(ctx context.Context) (Image, error)
}

// Classifier labels an image with a confidence in [0, 100].
type Classifier interface {
	Classify(ctx context.Context, img Image) (types.Label, float64, error)
}

const maxImageBytes = 32 << 20

// Live downloads the newest roundshot frame. The camera URL redirects to a
// storage path carrying the capture time, e.g.
// /544a1a9d451563.40343637/2021-07-02/14-40-00/2021-07-02-14-40-00_original.jpg
type Live struct {
	url    string
	zone   *time.Location
	client *http.Client
	now    func() time.Time
}

func NewLive(url string, zone *time.Location, client *http.Client) *Live {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Live{url: url, zone: zone, client: client, now: time.Now}
}

func (l *Live) Get(ctx context.Context) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("download %s: %w", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("download %s -> %s: status %d", l.url, resp.Request.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}

	captured, ok := CaptureTime(resp.Request.URL.Path, l.zone)
	if !ok {
		captured = l.now().In(l.zone)
	}
	return Image{Data: data, ContentType: resp.Header.Get("Content-Type"), CapturedAt: captured}, nil
}

var capturePathRe = regexp.MustCompile(`/(\d{4}-\d{2}-\d{2})/(\d{2}-\d{2}-\d{2})(?:/|$)`)

// CaptureTime extracts the /YYYY-MM-DD/HH-MM-SS/ segment of a storage path as
// a wall-clock time in zone.
func CaptureTime(path string, zone *time.Location) (time.Time, bool) {
	m := capturePathRe.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15-04-05", m[1]+" "+m[2], zone)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// File serves a fixed image from disk, stamped with its modification time.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get(ctx context.Context) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return Image{}, fmt.Errorf("stat image: %w", err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return Image{Data: data, ContentType: http.DetectContentType(data), CapturedAt: info.ModTime()}, nil
}
