package redirect

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
)

// OpenBrowser opens url in the default web browser on Linux, macOS and
// Windows. It does not wait for the browser to exit.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// BrowserNavigator opens the system browser. When that fails it prints the
// URL to Fallback so the user can open it by hand.
type BrowserNavigator struct {
	Open     func(url string) error
	Fallback io.Writer
}

// NewBrowserNavigator returns a BrowserNavigator using OpenBrowser.
func NewBrowserNavigator(fallback io.Writer) *BrowserNavigator {
	return &BrowserNavigator{Open: OpenBrowser, Fallback: fallback}
}

func (n *BrowserNavigator) Navigate(_ context.Context, url string) error {
	open := n.Open
	if open == nil {
		open = OpenBrowser
	}
	err := open(url)
	if err == nil {
		return nil
	}
	if n.Fallback == nil {
		return err
	}
	_, werr := fmt.Fprintf(n.Fallback, "Could not open browser automatically.\n\nPlease open this URL in your browser:\n  %s\n\n", url)
	return werr
}

// PrintNavigator only prints the URL, for headless sessions.
type PrintNavigator struct {
	Out io.Writer
}

func (n PrintNavigator) Navigate(_ context.Context, url string) error {
	_, err := fmt.Fprintf(n.Out, "Open this URL in your browser to connect Google Drive:\n  %s\n", url)
	return err
}

// RecordingNavigator records URLs instead of opening them.
type RecordingNavigator struct {
	mu   sync.Mutex
	urls []string
	Err  error
}

func (n *RecordingNavigator) Navigate(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.urls = append(n.urls, url)
	return nil
}

// URLs returns every URL navigated to.
func (n *RecordingNavigator) URLs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.urls))
	copy(out, n.urls)
	return out
}
