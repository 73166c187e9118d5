package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"teamdocs/internal/model"
	"teamdocs/internal/permission"
	"teamdocs/internal/workspace"
	textutil "teamdocs/pkg/strings"
)

// TeamView is the rendered form of a team workspace.
type TeamView struct {
	ID          int           `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	YourRole    string        `json:"yourRole,omitempty" yaml:"yourRole,omitempty"`
	CanInvite   bool          `json:"canInvite" yaml:"canInvite"`
	Members     []MemberRow   `json:"members" yaml:"members"`
	Tasks       []TaskRow     `json:"tasks" yaml:"tasks"`
	Documents   []DocumentRow `json:"documents" yaml:"documents"`
	LoadedAt    time.Time     `json:"loadedAt" yaml:"loadedAt"`
}

// MemberRow is one team member.
type MemberRow struct {
	User int        `json:"user" yaml:"user"`
	Name string     `json:"name" yaml:"name"`
	Role model.Role `json:"role" yaml:"role"`
}

// TaskRow is one active task.
type TaskRow struct {
	ID          int              `json:"id" yaml:"id"`
	Description string           `json:"description" yaml:"description"`
	Status      model.TaskStatus `json:"status" yaml:"status"`
	DueDate     string           `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	AssignedTo  *int             `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
	Overdue     bool             `json:"overdue" yaml:"overdue"`
}

// DocumentRow is one team document.
type DocumentRow struct {
	ID        int       `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Owner     int       `json:"owner" yaml:"owner"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	CanDelete bool      `json:"canDelete" yaml:"canDelete"`
}

// BuildTeamView derives the view from a snapshot. Permissions are evaluated
// here on every call.
func BuildTeamView(snap *workspace.Snapshot, user *model.CurrentUser, now time.Time) TeamView {
	if snap == nil || snap.Team == nil {
		return TeamView{}
	}
	team := snap.Team
	perms := permission.Evaluate(user, team)

	v := TeamView{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CanInvite:   perms.Invite,
		Members:     make([]MemberRow, 0, len(team.Members)),
		Tasks:       []TaskRow{},
		Documents:   make([]DocumentRow, 0, len(snap.Documents)),
		LoadedAt:    snap.LoadedAt,
	}
	if user != nil {
		if m, ok := team.MemberFor(user.ID); ok {
			v.YourRole = string(m.Role)
		}
	}

	for _, m := range team.Members {
		v.Members = append(v.Members, MemberRow{User: m.User, Name: m.UserName, Role: m.Role})
	}
	for _, t := range snap.ActiveTasks(now) {
		v.Tasks = append(v.Tasks, TaskRow{
			ID:          t.ID,
			Description: t.Description,
			Status:      t.Status,
			DueDate:     t.DueDate,
			AssignedTo:  t.AssignedTo,
			Overdue:     model.IsPastDue(t, now),
		})
	}
	for i := range snap.Documents {
		d := snap.Documents[i]
		v.Documents = append(v.Documents, DocumentRow{
			ID:        d.ID,
			Title:     d.Title,
			Owner:     d.Owner,
			CreatedAt: d.CreatedAt,
			CanDelete: perms.CanDelete(&d),
		})
	}
	return v
}

// RenderTeamView prints the view as tables.
func RenderTeamView(w io.Writer, v TeamView) {
	fmt.Fprintf(w, "%s %s\n", text.Bold.Sprint(v.Name), text.FgHiBlack.Sprintf("(team %d)", v.ID))
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}
	fmt.Fprintln(w)

	members := newTable(w, "Members")
	members.AppendHeader(table.Row{"User", "Name", "Role"})
	for _, m := range v.Members {
		role := model.TitleCase(string(m.Role))
		if m.Role == model.RoleOwner {
			role = text.FgYellow.Sprint("★ " + role)
		}
		members.AppendRow(table.Row{m.User, m.Name, role})
	}
	members.Render()
	if v.CanInvite {
		fmt.Fprintln(w, text.FgCyan.Sprint("You can invite members to this team."))
	}
	fmt.Fprintln(w)

	if len(v.Tasks) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No active tasks"))
	} else {
		tasks := newTable(w, "Active tasks")
		tasks.AppendHeader(table.Row{"ID", "Description", "Status", "Due"})
		for _, t := range v.Tasks {
			due := model.FormatDueDate(t.DueDate)
			if t.Overdue {
				due = text.FgRed.Sprint(due + " (overdue)")
			}
			tasks.AppendRow(table.Row{t.ID, textutil.Cell(t.Description, textutil.CellMaxLen), model.TitleCase(string(t.Status)), due})
		}
		tasks.Render()
	}
	fmt.Fprintln(w)

	if len(v.Documents) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No documents"))
		return
	}
	docs := newTable(w, "Documents")
	docs.AppendHeader(table.Row{"ID", "Title", "Owner", "Created", "Deletable"})
	for _, d := range v.Documents {
		docs.AppendRow(table.Row{d.ID, textutil.Cell(d.Title, textutil.CellMaxLen), d.Owner, model.FormatDate(d.CreatedAt), yesNo(d.CanDelete)})
	}
	docs.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func yesNo(b bool) string {
	if b {
		return text.FgGreen.Sprint("yes")
	}
	return "no"
}

// StatusView is printed by drive status.
type StatusView struct {
	Session     string `json:"session" yaml:"session"`
	Connection  string `json:"connection" yaml:"connection"`
	Redirecting bool   `json:"redirecting" yaml:"redirecting"`
	ReturnPath  string `json:"returnPath,omitempty" yaml:"returnPath,omitempty"`
}

// RenderStatus prints the status as a key/value table.
func RenderStatus(w io.Writer, s StatusView) {
	t := newTable(w, "Google Drive")
	connection := s.Connection
	if connection == "connected" {
		connection = text.FgGreen.Sprint(connection)
	} else {
		connection = text.FgYellow.Sprint(connection)
	}
	t.AppendRow(table.Row{"Session", s.Session})
	t.AppendRow(table.Row{"Connection", connection})
	t.AppendRow(table.Row{"Redirect in progress", strconv.FormatBool(s.Redirecting)})
	if s.ReturnPath != "" {
		t.AppendRow(table.Row{"Return path", s.ReturnPath})
	}
	t.Render()
}
