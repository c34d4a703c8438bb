//go:build !console

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	webview "github.com/webview/webview_go"
	"go.uber.org/zap"
)

var errNoDisplay = errors.New("no graphical display available (DISPLAY and WAYLAND_DISPLAY are unset)")

// checkDisplay reports errNoDisplay on X11/Wayland systems without a display,
// where creating the window would abort the process instead of failing
func checkDisplay(goos string, getenv func(string) string) error {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		if getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
			return errNoDisplay
		}
	}
	return nil
}

// runEmbeddedUI starts the web server and opens an embedded browser window.
// It returns when the window is closed or ctx is cancelled, and returns an
// error without opening anything when no window can be created.
func runEmbeddedUI(ctx context.Context, session *Session, logger *zap.Logger) error {
	if err := checkDisplay(runtime.GOOS, os.Getenv); err != nil {
		return err
	}

	ws := NewWebServer(session, "localhost:0", logger)

	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	// Create webview window (false = no debug mode)
	w := webview.New(false)
	if w == nil {
		return errors.New("failed to create webview window")
	}
	defer w.Destroy()

	if icon, err := renderAppIcon(128); err == nil {
		SetWindowIcon(w.Window(), icon)
	} else {
		logger.Warn("Window icon unavailable", zap.Error(err))
	}

	w.SetTitle("BTC Projection")
	w.SetSize(1280, 820, webview.HintNone)
	w.Navigate(url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("Interrupt received, closing window")
			w.Dispatch(w.Terminate)
		case <-done:
		}
	}()

	// Run blocks until window is closed
	w.Run()
	return nil
}
