package model

import "time"

// Role is a member's role within a team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// TaskStatus is the progression state of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskComplete   TaskStatus = "complete"
)

// Member is one user's membership of a team. A team holds at most one
// Member per user.
type Member struct {
	ID       int    `json:"id" yaml:"id" validate:"gt=0"`
	User     int    `json:"user" yaml:"user" validate:"gt=0"`
	UserName string `json:"user_name" yaml:"user_name"`
	Role     Role   `json:"role" yaml:"role" validate:"oneof=owner admin member"`
}

// Team is an immutable snapshot of a team as returned by the backend. It is
// replaced wholesale on refetch.
type Team struct {
	ID          int      `json:"id" yaml:"id" validate:"gt=0"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Members     []Member `json:"members" yaml:"members" validate:"dive"`
}

// Task is a work item, optionally owned by a team.
type Task struct {
	ID          int        `json:"id" yaml:"id" validate:"gt=0"`
	Description string     `json:"description" yaml:"description"`
	Team        *int       `json:"team" yaml:"team"`
	Status      TaskStatus `json:"status" yaml:"status"`
	AssignedTo  *int       `json:"assigned_to" yaml:"assigned_to"`
	// DueDate is a calendar date in YYYY-MM-DD form.
	DueDate string `json:"due_date" yaml:"due_date"`
}

// Document is the metadata of a stored document. Team is nil for personal
// documents.
type Document struct {
	ID        int       `json:"id" yaml:"id" validate:"gt=0"`
	Title     string    `json:"title" yaml:"title"`
	Owner     int       `json:"owner" yaml:"owner" validate:"gt=0"`
	Team      *int      `json:"team" yaml:"team"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// CurrentUser identifies the signed-in user. It is supplied by configuration
// and never modified here.
type CurrentUser struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// BelongsTo reports whether the task is assigned to the given team.
func (t Task) BelongsTo(teamID int) bool {
	return t.Team != nil && *t.Team == teamID
}

// MemberFor returns the membership of userID in the team, if any.
func (t *Team) MemberFor(userID int) (Member, bool) {
	if t == nil {
		return Member{}, false
	}
	for _, m := range t.Members {
		if m.User == userID {
			return m, true
		}
	}
	return Member{}, false
}
