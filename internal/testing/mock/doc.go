// Package mock provides an in-process fake of the teamdocs backend for tests.
//
// Backend serves the five endpoints the client uses from an httptest server
// and records every request, so tests can assert both on what the client
// rendered and on what it asked for:
//
//	backend := mock.NewBackend(mock.WithToken("secret"))
//	defer backend.Close()
//
//	backend.AddTeam(model.Team{ID: 1, Name: "Platform"})
//	backend.FailNext(http.MethodGet, "/api/tasks/", http.StatusInternalServerError)
//
// The Drive login endpoint builds its auth_url with golang.org/x/oauth2 the
// same way the real backend does, pointing at a fake provider host.
//
// Clock and MockClock let tests pin "now" for due-date filtering.
package mock
