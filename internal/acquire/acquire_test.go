package acquire

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const body = "Job Log\n\"Start Date/Time\",\"Log ID\"\n\"2024/01/15 10:05:30\",\"1001\"\n"

// serve starts an in-memory fasthttp server and points h at it.
func serve(t *testing.T, h *HTTP, handler fasthttp.RequestHandler) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })
	h.client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}
}

func TestHTTP_Acquire(t *testing.T) {
	h := NewHTTP(5*time.Second, false)
	var gotAuth, gotPath string
	serve(t, h, func(ctx *fasthttp.RequestCtx) {
		gotAuth = string(ctx.Request.Header.Peek("Authorization"))
		gotPath = string(ctx.Path())
		ctx.SetBodyString(body)
	})

	dir := filepath.Join(t.TempDir(), "IMC3000_logs")
	path, err := h.Acquire(context.Background(), Request{
		Source:   "HQ_IMC3000",
		URL:      "http://10.0.0.5/joblog/export.csv",
		Username: "admin",
		Password: "secret",
		Dir:      dir,
		FileName: "20240131_101500_HQ-IMC3000_JobLog.csv",
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if path != filepath.Join(dir, "20240131_101500_HQ-IMC3000_JobLog.csv") {
		t.Errorf("path: got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != body {
		t.Errorf("saved body: %q err=%v", data, err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	if gotAuth != want {
		t.Errorf("authorization: got %q, want %q", gotAuth, want)
	}
	if gotPath != "/joblog/export.csv" {
		t.Errorf("request path: got %q", gotPath)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestHTTP_UnexpectedStatus(t *testing.T) {
	h := NewHTTP(5*time.Second, false)
	serve(t, h, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	})

	dir := t.TempDir()
	_, err := h.Acquire(context.Background(), Request{Source: "P", URL: "http://printer/x", Dir: dir, FileName: "a.csv"})
	var ae *Error
	if !errors.As(err, &ae) || ae.Source != "P" {
		t.Fatalf("expected *Error for P, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Error("failed download must not leave a file")
	}
}

func TestHTTP_NoURL(t *testing.T) {
	if _, err := NewHTTP(time.Second, false).Acquire(context.Background(), Request{Source: "P"}); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestLocal_Acquire(t *testing.T) {
	src := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "logs")

	path, err := Local{}.Acquire(context.Background(), Request{Source: "P", SourcePath: src, Dir: dir, FileName: "copy.csv"})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != body {
		t.Errorf("copied body: %q err=%v", data, err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source export must be left in place")
	}
}

func TestLocal_MissingSource(t *testing.T) {
	_, err := Local{}.Acquire(context.Background(), Request{
		Source: "P", SourcePath: filepath.Join(t.TempDir(), "missing.csv"), Dir: t.TempDir(), FileName: "x.csv",
	})
	var ae *Error
	if !errors.As(err, &ae) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v", err)
	}
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Local{}).Acquire(ctx, Request{Source: "P"}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
