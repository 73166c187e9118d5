package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"teamdocs/internal/model"
)

// FakeProviderAuthURL is the authorization endpoint embedded in auth_url.
const FakeProviderAuthURL = "https://accounts.example.test/o/oauth2/auth"

// DriveScope is the scope the fake backend asks the provider for.
const DriveScope = "https://www.googleapis.com/auth/drive.file"

// Request is one request received by the Backend.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	SessionCookie string
}

type failure struct {
	status int
	body   string
}

// Backend is a fake teamdocs backend served over httptest.
type Backend struct {
	server *httptest.Server
	oauth  *oauth2.Config
	clock  Clock
	token  string

	mu          sync.Mutex
	teams       map[int]model.Team
	tasks       []model.Task
	documents   map[int][]model.Document
	failures    map[string][]failure
	requests    []Request
	deleted     []int
	loginDelay  time.Duration
	loginStates int
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithToken makes the backend require "Authorization: Bearer <token>".
func WithToken(token string) BackendOption {
	return func(b *Backend) {
		b.token = token
	}
}

// WithClock sets the clock used to stamp documents without a creation time.
func WithClock(clock Clock) BackendOption {
	return func(b *Backend) {
		b.clock = clock
	}
}

// NewBackend starts a fake backend. Call Close when done.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		clock:     RealClock{},
		teams:     make(map[int]model.Team),
		documents: make(map[int][]model.Document),
		failures:  make(map[string][]failure),
	}
	for _, opt := range opts {
		opt(b)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/teams/{id}/", b.handleTeam)
	mux.HandleFunc("GET /api/tasks/", b.handleTasks)
	mux.HandleFunc("GET /api/documents/team/{id}/", b.handleTeamDocuments)
	mux.HandleFunc("DELETE /api/documents/{id}/", b.handleDeleteDocument)
	mux.HandleFunc("GET /api/google-drive/login/", b.handleDriveLogin)

	b.server = httptest.NewServer(b.middleware(mux))
	b.oauth = &oauth2.Config{
		ClientID:    "teamdocs-test-client",
		RedirectURL: b.server.URL + "/api/google-drive/callback/",
		Scopes:      []string{DriveScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  FakeProviderAuthURL,
			TokenURL: "https://oauth2.example.test/token",
		},
	}
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close shuts the server down.
func (b *Backend) Close() {
	b.server.Close()
}

// AddTeam registers or replaces a team.
func (b *Backend) AddTeam(team model.Team) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teams[team.ID] = team
}

// AddTasks appends tasks to the global task list.
func (b *Backend) AddTasks(tasks ...model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, tasks...)
}

// AddDocuments appends documents to a team's collection.
func (b *Backend) AddDocuments(teamID int, docs ...model.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range docs {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = b.clock.Now().UTC()
		}
		if d.Team == nil {
			id := teamID
			d.Team = &id
		}
		b.documents[teamID] = append(b.documents[teamID], d)
	}
}

// FailNext makes the next request matching method and path return status.
// Repeated calls queue further failures.
func (b *Backend) FailNext(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, body: http.StatusText(status)})
}

// SetLoginDelay delays every Drive login response by d.
func (b *Backend) SetLoginDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginDelay = d
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Calls counts the requests received for method and path.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Deleted returns the ids of documents deleted so far.
func (b *Backend) Deleted() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.deleted))
	copy(out, b.deleted)
	return out
}

func (b *Backend) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		}
		if c, err := r.Cookie("sessionid"); err == nil {
			rec.SessionCookie = c.Value
		}

		b.mu.Lock()
		b.requests = append(b.requests, rec)
		key := r.Method + " " + r.URL.Path
		var fail *failure
		if queued := b.failures[key]; len(queued) > 0 {
			fail = &queued[0]
			b.failures[key] = queued[1:]
		}
		b.mu.Unlock()

		if b.token != "" && rec.Authorization != "Bearer "+b.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		if fail != nil {
			http.Error(w, fail.body, fail.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	team, found := b.teams[id]
	b.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (b *Backend) handleTasks(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	tasks := make([]model.Task, len(b.tasks))
	copy(tasks, b.tasks)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, tasks)
}

func (b *Backend) handleTeamDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	docs := make([]model.Document, len(b.documents[id]))
	copy(docs, b.documents[id])
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, docs)
}

func (b *Backend) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for teamID, docs := range b.documents {
		for i, d := range docs {
			if d.ID == id {
				b.documents[teamID] = append(docs[:i:i], docs[i+1:]...)
				b.deleted = append(b.deleted, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (b *Backend) handleDriveLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	delay := b.loginDelay
	b.loginStates++
	state := fmt.Sprintf("state-%d", b.loginStates)
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	authURL := b.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
