package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/cli"
	"teamdocs/internal/model"
	"teamdocs/internal/redirect"
	"teamdocs/internal/testing/mock"
	"teamdocs/pkg/logging"
)

const (
	ownerID  = 10
	memberID = 11
	teamID   = 7
)

func intPtr(i int) *int { return &i }

func newTestBackend(t *testing.T) *mock.Backend {
	t.Helper()
	b := mock.NewBackend()
	t.Cleanup(b.Close)

	b.AddTeam(model.Team{
		ID:   teamID,
		Name: "Platform",
		Members: []model.Member{
			{ID: 1, User: ownerID, UserName: "ana", Role: model.RoleOwner},
			{ID: 2, User: memberID, UserName: "ben", Role: model.RoleMember},
		},
	})
	b.AddTasks(
		model.Task{ID: 1, Description: "Write runbook", Team: intPtr(teamID), Status: model.TaskInProgress, DueDate: "2030-01-01"},
		model.Task{ID: 2, Description: "Other team", Team: intPtr(8), Status: model.TaskNotStarted},
	)
	b.AddDocuments(teamID,
		model.Document{ID: 100, Title: "Runbook", Owner: memberID},
		model.Document{ID: 101, Title: "Budget", Owner: ownerID},
	)
	return b
}

type testEnv struct {
	configDir string
	stateDir  string
	out       *bytes.Buffer
	errOut    *bytes.Buffer
}

// writeConfig writes config.yaml for backend and returns the environment.
func writeConfig(t *testing.T, backend *mock.Backend, userID int, callbackAddr string) *testEnv {
	t.Helper()
	logging.Discard()

	env := &testEnv{
		configDir: t.TempDir(),
		stateDir:  t.TempDir(),
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
	}
	if callbackAddr == "" {
		callbackAddr = "127.0.0.1:0"
	}
	cfg := fmt.Sprintf(`apiUrl: %s
frontendUrl: http://frontend.test
user:
  id: %d
session:
  id: test-session
  backend: file
  stateDir: %s
callback:
  addr: %s
drive:
  debounce: 10ms
  openBrowser: false
`, backend.URL(), userID, env.stateDir, callbackAddr)
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte(cfg), 0600))
	return env
}

// runtimeFor builds a runtime the way a command would.
func (e *testEnv) runtime(t *testing.T) *runtime {
	t.Helper()
	c := &cobra.Command{}
	c.SetOut(e.out)
	c.SetErr(e.errOut)
	c.SetContext(context.Background())

	rt, err := newRuntime(c, &cli.CommandFlags{ConfigPath: e.configDir, OutputFormat: "table", Quiet: true})
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

// execute runs a fresh root command with args.
func (e *testEnv) execute(args ...string) error {
	root := newRootCmd()
	root.SetOut(e.out)
	root.SetErr(e.errOut)
	root.SetArgs(append([]string{"--config-path", e.configDir, "--quiet"}, args...))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return root.ExecuteContext(ctx)
}

func useNavigator(rt *runtime, nav redirect.Navigator) {
	rt.nav = nav
	rt.login = redirect.NewCoordinator(rt.flags, rt.client, nav, rt.notifier)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}
