package videos

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/videoserver/provider/internal/models"
)

type stubExporter struct {
	files map[string][]byte
	err   error
	calls []string
}

func (s *stubExporter) Export(_ context.Context, path string, w io.Writer) error {
	s.calls = append(s.calls, path)
	if s.err != nil {
		return s.err
	}
	data, ok := s.files[path]
	if !ok {
		return errors.New("no such file")
	}
	_, err := w.Write(data)
	return err
}

func TestMetadataPathSourceRejectsMissingPath(t *testing.T) {
	for _, videoPath := range []string{"", "   "} {
		exporter := &stubExporter{}
		source := NewMetadataPathSource(exporter)

		_, err := source.Fetch(context.Background(), models.VideoAsset{ContentID: "C1", VideoPath: videoPath})
		if !errors.Is(err, ErrStreamNotFound) {
			t.Fatalf("expected ErrStreamNotFound for %q, got %v", videoPath, err)
		}
		if len(exporter.calls) != 0 {
			t.Fatalf("expected exporter not to be invoked, got %v", exporter.calls)
		}
	}
}

func TestMetadataPathSourceFetch(t *testing.T) {
	exporter := &stubExporter{files: map[string][]byte{"/videos/a.mp4": []byte("video-bytes")}}
	source := NewMetadataPathSource(exporter)
	asset := models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"}

	stream, err := source.Fetch(context.Background(), asset)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("unexpected payload: %q", data)
	}

	name, err := source.Filename(context.Background(), asset)
	if err != nil || name != "/videos/a.mp4" {
		t.Fatalf("unexpected filename %q err %v", name, err)
	}
}

func TestExportSourceProducesFreshStreams(t *testing.T) {
	exporter := &stubExporter{files: map[string][]byte{"/videos/a.mp4": []byte("abc")}}
	source := NewExportSource(exporter)
	asset := models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"}

	for i := 0; i < 2; i++ {
		stream, err := source.Fetch(context.Background(), asset)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		data, _ := io.ReadAll(stream)
		stream.Close()
		if string(data) != "abc" {
			t.Fatalf("unexpected payload on call %d: %q", i, data)
		}
	}
	if len(exporter.calls) != 2 {
		t.Fatalf("expected an export per fetch, got %d", len(exporter.calls))
	}
}

func TestExportSourcePropagatesExportErrors(t *testing.T) {
	boom := errors.New("storage offline")
	source := NewExportSource(&stubExporter{err: boom})

	_, err := source.Fetch(context.Background(), models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected export error, got %v", err)
	}
}

func TestExportSourceWithoutExporter(t *testing.T) {
	source := NewExportSource(nil)
	if _, err := source.Fetch(context.Background(), models.VideoAsset{VideoPath: "x"}); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
