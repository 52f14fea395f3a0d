package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: time.Second}
}

func TestShutdown_ComponentsStopInReverseOrder(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), testOptions(), nil)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"postgres", "redis", "gemini"} {
		srv.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	if err := srv.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	want := []string{"gemini", "redis", "postgres"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestShutdown_CollectsErrors(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), testOptions(), nil)
	errRedis := errors.New("redis close failed")
	ran := false

	srv.OnShutdown("postgres", func(context.Context) error { ran = true; return nil })
	srv.OnShutdown("redis", func(context.Context) error { return errRedis })

	err := srv.Shutdown()
	if !errors.Is(err, errRedis) {
		t.Fatalf("Shutdown() error = %v, want %v", err, errRedis)
	}
	if !ran {
		t.Error("a failing component must not stop the rest")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), testOptions(), nil)

	stopped := make(chan struct{})
	srv.OnShutdown("marker", func(context.Context) error { close(stopped); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := waitForServer("http://" + ln.Addr().String())
	if err != nil {
		cancel()
		t.Fatalf("server never answered: %v", err)
	}
	_ = resp.Body.Close()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	select {
	case <-stopped:
	default:
		t.Error("shutdown hooks did not run")
	}
}

func waitForServer(url string) (*http.Response, error) {
	var lastErr error
	for range 50 {
		resp, err := http.Get(url)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	return nil, lastErr
}
