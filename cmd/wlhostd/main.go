//go:build cgo

// wlhostd runs a headless compositor core and logs every bus event it
// publishes. It is a minimal stand-in for a real embedding host: it
// demonstrates both ways of driving the compositor's event loop
// (self-driven Run, and an external epoll reactor over GetEventLoopFD)
// and exits cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/wlhost/compositor/bus"
	"github.com/wlhost/compositor/compositor"
	"github.com/wlhost/compositor/wlnative"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	outputWidth := envInt("WLHOSTD_OUTPUT_WIDTH", 1920)
	outputHeight := envInt("WLHOSTD_OUTPUT_HEIGHT", 1080)
	externalReactor := os.Getenv("WLHOSTD_EXTERNAL_REACTOR") == "true"

	c := compositor.New(compositor.Config{
		Logger:       logger,
		NewBackend:   wlnative.NewBackend,
		OutputWidth:  int32(outputWidth),
		OutputHeight: int32(outputHeight),
	})

	socket, err := c.Initialize()
	if err != nil {
		logger.Error("initialize compositor", "err", err)
		os.Exit(1)
	}
	logger.Info("compositor listening", "socket", socket)

	registerLoggingListeners(c, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var runErr error
	if externalReactor {
		runErr = runExternalReactor(ctx, c, logger)
	} else {
		runErr = c.Run(ctx)
	}
	if runErr != nil {
		logger.Error("compositor run loop exited with error", "err", runErr)
	}

	if err := c.Cleanup(); err != nil {
		logger.Error("cleanup compositor", "err", err)
	}
	logger.Info("wlhostd shutdown complete")
}

// runExternalReactor drives the compositor's native event loop through an
// epoll instance instead of the self-driven Run loop, the shape an
// embedder with its own reactor (e.g. one multiplexing several unrelated
// file descriptors) would use instead of Run.
func runExternalReactor(ctx context.Context, c *compositor.Compositor, logger *slog.Logger) error {
	fd, err := c.GetEventLoopFD()
	if err != nil {
		return fmt.Errorf("get event loop fd: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	defer unix.Close(epfd)

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add: %w", err)
	}

	events := make([]unix.EpollEvent, 8)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.EpollWait(epfd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			if err := c.ProcessEvents(); err != nil {
				logger.Warn("process native events", "err", err)
			}
		}
	}
}

func registerLoggingListeners(c *compositor.Compositor, logger *slog.Logger) {
	log := func(name bus.EventName) bus.Listener {
		return func(args ...any) {
			logger.Debug("bus event", "event", string(name), "args", args)
		}
	}
	for _, name := range []bus.EventName{
		bus.NewSurface, bus.Map, bus.Unmap, bus.Destroy, bus.Commit,
		bus.SurfaceImage, bus.Move, bus.Resize, bus.Maximize,
		bus.Fullscreen, bus.Minimize, bus.SSD, bus.SetTitle, bus.SetAppID,
		bus.KeyboardLED,
	} {
		c.AddEventListener(name, log(name))
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
		return def
	}
	return n
}
