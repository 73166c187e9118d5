// Package callback runs the local listener that receives the browser after
// the Google Drive consent screen.
//
// The backend finishes the OAuth exchange and then redirects the browser to
// /google-auth-callback?drive_auth=success. The listener records the
// connection in the shared app state, clears the redirect flag and shows a
// page naming where to continue. Any other outcome shows an error page and
// leaves the session flags untouched so the user can retry manually.
//
// Like a browser page, the listener handles exactly one callback.
package callback

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"

	"teamdocs/internal/appstate"
	"teamdocs/internal/sessionflags"
	"teamdocs/pkg/logging"
)

const (
	// DefaultAddr is where the backend redirects the browser.
	DefaultAddr = "127.0.0.1:3000"

	// Path is the callback route.
	Path = "/google-auth-callback"

	// DefaultReturnPath is used when no return path was stored.
	DefaultReturnPath = "/view/documents"

	// FailureMessage is shown for anything other than drive_auth=success.
	FailureMessage = "Authentication failed or was cancelled"

	// Timeout bounds how long a caller waits for the callback.
	Timeout = 10 * time.Minute
)

// ErrAlreadyHandled is reported for callback requests after the first.
var ErrAlreadyHandled = errors.New("callback already processed")

//go:embed templates/success.html
var successHTML string

//go:embed templates/error.html
var errorHTML string

var (
	successTmpl = template.Must(template.New("success").Funcs(sprig.HtmlFuncMap()).Parse(successHTML))
	errorTmpl   = template.Must(template.New("error").Funcs(sprig.HtmlFuncMap()).Parse(errorHTML))
)

// Result describes the handled callback.
type Result struct {
	RequestID  string
	Success    bool
	ReturnPath string
	// Reason is the provider's drive_auth or error value on failure.
	Reason string
}

// Server is a single-shot local callback listener.
type Server struct {
	addr        string
	store       *appstate.Store
	flags       sessionflags.Store
	frontendURL string

	server   *http.Server
	listener net.Listener
	resultCh chan *Result
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
	baseURL  string
}

// Option configures a Server.
type Option func(*Server)

// WithFrontendURL makes the success page link to the frontend rather than
// show a bare path.
func WithFrontendURL(u string) Option {
	return func(s *Server) {
		s.frontendURL = u
	}
}

// NewServer creates a listener for addr. An empty addr means DefaultAddr.
func NewServer(addr string, store *appstate.Store, flags sessionflags.Store, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		addr:     addr,
		store:    store,
		flags:    flags,
		resultCh: make(chan *Result, 1),
		errorCh:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleCallback)
	return mux
}

// Start listens and serves until ctx is cancelled or Stop is called. It
// returns the callback URL.
func (s *Server) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.baseURL = "http://" + listener.Addr().String()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("Callback", "Listening on %s", s.baseURL)
	return s.baseURL + Path, nil
}

// WaitForResult blocks until the callback has been handled.
func (s *Server) WaitForResult(ctx context.Context) (*Result, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var handled bool
	s.once.Do(func() {
		handled = true
		s.process(w, r)
	})
	if !handled {
		http.Error(w, ErrAlreadyHandled.Error(), http.StatusBadRequest)
	}
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	query := r.URL.Query()
	result := &Result{RequestID: uuid.NewString()}

	var (
		tmpl *template.Template
		data map[string]interface{}
	)
	if query.Get("drive_auth") == "success" {
		result.Success = true
		result.ReturnPath = s.complete()
		tmpl = successTmpl
		data = map[string]interface{}{
			"RequestID":   result.RequestID,
			"ReturnPath":  result.ReturnPath,
			"Destination": s.destination(result.ReturnPath),
			"At":          time.Now(),
		}
		logging.Info("Callback", "Google Drive connected, returning to %s", result.ReturnPath)
	} else {
		result.Reason = query.Get("drive_auth")
		if result.Reason == "" {
			result.Reason = query.Get("error")
		}
		w.WriteHeader(http.StatusBadRequest)
		tmpl = errorTmpl
		data = map[string]interface{}{
			"RequestID": result.RequestID,
			"Message":   FailureMessage,
			"Reason":    result.Reason,
		}
		logging.Warn("Callback", "Google Drive authorization did not succeed (reason %q)", result.Reason)
	}

	if err := tmpl.Execute(w, data); err != nil {
		logging.Error("Callback", err, "Failed to render callback page")
	}

	select {
	case s.resultCh <- result:
	default:
	}

	if s.server != nil {
		go func() {
			time.Sleep(1 * time.Second)
			s.Stop()
		}()
	}
}

// complete records the connection and consumes the session flags. Failures
// are logged; the browser still sees the success page.
func (s *Server) complete() string {
	if err := s.store.SetConnected(true); err != nil {
		logging.Error("Callback", err, "Failed to persist connection status")
	}
	if err := s.flags.Remove(sessionflags.KeyRedirecting); err != nil {
		logging.Error("Callback", err, "Failed to clear redirect flag")
	}
	path, err := sessionflags.ConsumeReturnPath(s.flags, DefaultReturnPath)
	if err != nil {
		logging.Error("Callback", err, "Failed to read return path")
	}
	return path
}

func (s *Server) destination(returnPath string) string {
	if s.frontendURL == "" {
		return returnPath
	}
	u, err := url.Parse(s.frontendURL)
	if err != nil {
		return returnPath
	}
	ref, err := url.Parse(returnPath)
	if err != nil {
		return returnPath
	}
	return u.ResolveReference(ref).String()
}
