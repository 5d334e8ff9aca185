package httpserver

import (
	"net/http"
	"testing"
	"time"
)

func TestNewWriteTimeoutCoversUpload(t *testing.T) {
	srv := New(9000, http.NotFoundHandler(), time.Minute)
	if srv.Addr() != ":9000" {
		t.Fatalf("unexpected addr %q", srv.Addr())
	}
	if srv.inner.WriteTimeout <= time.Minute {
		t.Fatalf("expected write timeout beyond upload timeout, got %v", srv.inner.WriteTimeout)
	}

	srv = New(9000, http.NotFoundHandler(), 0)
	if srv.inner.WriteTimeout <= 2*time.Minute {
		t.Fatalf("expected default upload timeout to apply, got %v", srv.inner.WriteTimeout)
	}
}
