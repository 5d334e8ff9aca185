package videos

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/videoserver/provider/internal/config"
	"github.com/videoserver/provider/internal/models"
)

const testSecret = "shared-secret"

type stubConfigStore struct {
	cfg config.ProviderConfig
	err error
}

func (s stubConfigStore) Load(context.Context) (config.ProviderConfig, error) {
	return s.cfg, s.err
}

type stubUUIDWriter struct {
	saved map[string]string
	err   error
}

func (s *stubUUIDWriter) SaveVideoUUID(_ context.Context, contentID, videoUUID string) error {
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = make(map[string]string)
	}
	s.saved[contentID] = videoUUID
	return nil
}

type capturedUpload struct {
	contentType string
	fields      map[string]string
	file        []byte
	fileName    string
}

type backendStub struct {
	server *httptest.Server
	status int

	mu      sync.Mutex
	uploads []capturedUpload
	paths   []string
}

func newBackendStub(t *testing.T, status int) *backendStub {
	t.Helper()
	b := &backendStub{status: status}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		upload := capturedUpload{contentType: r.Header.Get("Content-Type"), fields: map[string]string{}}
		for name, values := range r.MultipartForm.Value {
			upload.fields[name] = values[0]
		}
		if files := r.MultipartForm.File["file"]; len(files) == 1 {
			f, err := files[0].Open()
			if err == nil {
				upload.file, _ = io.ReadAll(f)
				f.Close()
			}
			upload.fileName = files[0].Filename
		}

		b.mu.Lock()
		b.uploads = append(b.uploads, upload)
		b.paths = append(b.paths, r.URL.Path)
		b.mu.Unlock()

		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backendStub) last(t *testing.T) capturedUpload {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.uploads, "expected an upload to reach the backend")
	return b.uploads[len(b.uploads)-1]
}

func (b *backendStub) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.uploads)
}

type fixture struct {
	provider    config.ProviderConfig
	ancestors   stubAncestors
	integration *stubIntegration
	exporter    *stubExporter
	uuids       *stubUUIDWriter
}

func newFixture(backendURL string) *fixture {
	return &fixture{
		provider: config.ProviderConfig{BackendURL: backendURL, JWTSecret: testSecret},
		ancestors: stubAncestors{chain: []models.Container{
			{ContentID: "2.10", ExternalID: "section"},
			{ContentID: "2.5", ExternalID: "site-42", IsSite: true},
			{ContentID: "2.1", ExternalID: "root"},
		}},
		integration: &stubIntegration{url: "http://hooks.example"},
		exporter:    &stubExporter{files: map[string][]byte{"/videos/a.mp4": []byte("raw-video")}},
		uuids:       &stubUUIDWriter{},
	}
}

func (f *fixture) uploader(t *testing.T) *Uploader {
	t.Helper()
	u, err := NewUploader(Dependencies{
		Config:      stubConfigStore{cfg: f.provider},
		Sites:       f.ancestors,
		Integration: f.integration,
		Source:      NewMetadataPathSource(f.exporter),
		UUIDs:       f.uuids,
		Client:      &http.Client{Timeout: 5 * time.Second},
	})
	require.NoError(t, err)
	return u
}

func TestUploaderProcessEndToEnd(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)

	asset := models.VideoAsset{ContentID: "C1", Name: "Clip", VideoPath: "/videos/a.mp4"}
	require.NoError(t, f.uploader(t).Process(context.Background(), asset))

	require.Equal(t, []string{"/api/video/upload"}, backend.paths)
	got := backend.last(t)

	assert.Contains(t, got.contentType, "multipart/form-data")
	assert.Equal(t, "raw-video", string(got.file))
	assert.Equal(t, "a.mp4", got.fileName)
	assert.Equal(t, "C1", got.fields["contentId"])
	assert.Equal(t, "Clip", got.fields["videoName"])
	assert.Equal(t, "/videos/a.mp4", got.fields["fileName"])
	assert.Equal(t, "site-42", got.fields["siteCode"])
	assert.Equal(t, "http://hooks.example/videomanager/C1", got.fields["webhook"])

	_, err := uuid.Parse(got.fields["videoUUID"])
	assert.NoError(t, err, "expected a generated uuid")

	claims := parseToken(t, got.fields["jwt"], testSecret)
	assert.Equal(t, "C1", claims.Subject)
	assert.Equal(t, "C1", claims.ContentID)
	assert.Equal(t, ProviderClaim, claims.Provider)

	assert.Empty(t, f.uuids.saved, "uuid must not be persisted by default")
}

func TestUploaderKeepsExistingVideoUUID(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)
	f.provider.PersistGeneratedUUID = true

	asset := models.VideoAsset{ContentID: "C1", Name: "Clip", VideoPath: "/videos/a.mp4", VideoUUID: "existing-uuid"}
	require.NoError(t, f.uploader(t).Process(context.Background(), asset))

	assert.Equal(t, "existing-uuid", backend.last(t).fields["videoUUID"])
	assert.Empty(t, f.uuids.saved)
}

func TestUploaderGeneratesDistinctUUIDs(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	u := newFixture(backend.server.URL).uploader(t)

	asset := models.VideoAsset{ContentID: "C1", Name: "Clip", VideoPath: "/videos/a.mp4"}
	seen := map[string]struct{}{}
	for i := 0; i < 3; i++ {
		require.NoError(t, u.Process(context.Background(), asset))
		id := backend.last(t).fields["videoUUID"]
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 3)
}

func TestUploaderPersistsGeneratedUUIDWhenEnabled(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)
	f.provider.PersistGeneratedUUID = true

	asset := models.VideoAsset{ContentID: "C1", Name: "Clip", VideoPath: "/videos/a.mp4"}
	require.NoError(t, f.uploader(t).Process(context.Background(), asset))

	assert.Equal(t, backend.last(t).fields["videoUUID"], f.uuids.saved["C1"])
}

func TestUploaderWithoutSiteOrWebhook(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)
	f.ancestors = stubAncestors{chain: []models.Container{{ExternalID: "root"}}}
	f.integration.url = ""

	asset := models.VideoAsset{ContentID: "C1", Name: "Clip", VideoPath: "/videos/a.mp4"}
	require.NoError(t, f.uploader(t).Process(context.Background(), asset))

	got := backend.last(t)
	assert.Equal(t, "", got.fields["siteCode"])
	assert.Equal(t, "", got.fields["webhook"])
}

func TestUploaderStreamNotFoundSendsNothing(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)

	err := f.uploader(t).Process(context.Background(), models.VideoAsset{ContentID: "C1", Name: "Clip"})
	require.ErrorIs(t, err, ErrStreamNotFound)
	assert.Empty(t, f.exporter.calls)
	assert.Equal(t, 0, backend.count())
}

func TestUploaderConfigurationErrors(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	asset := models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"}

	f := newFixture(backend.server.URL)
	u, err := NewUploader(Dependencies{
		Config: stubConfigStore{err: errors.New("policy missing")},
		Sites:  f.ancestors,
		Source: NewMetadataPathSource(f.exporter),
	})
	require.NoError(t, err)
	require.ErrorIs(t, u.Process(context.Background(), asset), ErrConfiguration)

	f.provider.JWTSecret = ""
	require.ErrorIs(t, f.uploader(t).Process(context.Background(), asset), ErrConfiguration)

	f = newFixture("")
	require.ErrorIs(t, f.uploader(t).Process(context.Background(), asset), ErrConfiguration)

	assert.Equal(t, 0, backend.count())
}

func TestUploaderSigningError(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)
	f.provider.JWTSecret = string([]byte{0xff})

	err := f.uploader(t).Process(context.Background(), models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"})
	require.ErrorIs(t, err, ErrSigning)
	assert.Equal(t, 0, backend.count())
}

func TestUploaderUnreachableBackend(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := newFixture(url)
	f.provider.PersistGeneratedUUID = true

	err := f.uploader(t).Process(context.Background(), models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"})
	require.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, f.uuids.saved)
}

func TestUploaderResponseStatusValidation(t *testing.T) {
	backend := newBackendStub(t, http.StatusInternalServerError)
	asset := models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"}

	f := newFixture(backend.server.URL)
	require.NoError(t, f.uploader(t).Process(context.Background(), asset))

	f.provider.ValidateResponseStatus = true
	require.ErrorIs(t, f.uploader(t).Process(context.Background(), asset), ErrTransport)
	assert.Equal(t, 2, backend.count())
}

func TestUploaderPersistWithoutWriter(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)
	f.provider.PersistGeneratedUUID = true

	u, err := NewUploader(Dependencies{
		Config: stubConfigStore{cfg: f.provider},
		Sites:  f.ancestors,
		Source: NewMetadataPathSource(f.exporter),
	})
	require.NoError(t, err)

	err = u.Process(context.Background(), models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"})
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 0, backend.count())
}

func TestUploaderLimiterHonoursContext(t *testing.T) {
	backend := newBackendStub(t, http.StatusOK)
	f := newFixture(backend.server.URL)

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	u, err := NewUploader(Dependencies{
		Config:  stubConfigStore{cfg: f.provider},
		Sites:   f.ancestors,
		Source:  NewMetadataPathSource(f.exporter),
		Limiter: limiter,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = u.Process(ctx, models.VideoAsset{ContentID: "C1", VideoPath: "/videos/a.mp4"})
	require.Error(t, err)
	assert.Equal(t, 0, backend.count())
}

func TestNewUploaderRequiresCollaborators(t *testing.T) {
	_, err := NewUploader(Dependencies{})
	assert.Error(t, err)

	_, err = NewUploader(Dependencies{Config: stubConfigStore{}})
	assert.Error(t, err)

	_, err = NewUploader(Dependencies{Config: stubConfigStore{}, Sites: stubAncestors{}})
	assert.Error(t, err)
}
