package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
	TaskStatusOnHold     TaskStatus = "OnHold"
)

func ParseTaskStatus(v string) (TaskStatus, error) {
	switch s := TaskStatus(v); s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled, TaskStatusOnHold:
		return s, nil
	}
	return "", Errorf("invalid task status: %s", v)
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityUrgent TaskPriority = "Urgent"
)

type TaskType string

const (
	TaskTypeCall     TaskType = "Call"
	TaskTypeMeeting  TaskType = "Meeting"
	TaskTypeEmail    TaskType = "Email"
	TaskTypeFollowUp TaskType = "FollowUp"
	TaskTypeDocument TaskType = "Document"
	TaskTypeOther    TaskType = "Other"
)

// Task is a unit of CRM work, optionally linked to a customer and contact.
type Task struct {
	Root

	Title       string
	Description string
	Type        TaskType
	Status      TaskStatus
	Priority    TaskPriority

	DueDate       *time.Time
	StartDate     *time.Time
	CompletedDate *time.Time

	CustomerID       string
	ContactID        string
	AssignedToUserID string
	CreatedByUserID  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewTask(title string, typ TaskType, priority TaskPriority, createdByUserID, description string, dueDate, startDate *time.Time) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, Errorf("task title cannot be empty")
	}
	if dueDate != nil && startDate != nil && dueDate.Before(*startDate) {
		return nil, Errorf("due date cannot be before start date")
	}

	t := &Task{
		Root:            NewRoot(uuid.NewString()),
		Title:           title,
		Description:     description,
		Type:            typ,
		Status:          TaskStatusToDo,
		Priority:        priority,
		DueDate:         dueDate,
		StartDate:       startDate,
		CreatedByUserID: createdByUserID,
		CreatedAt:       time.Now().UTC(),
	}
	t.Raise(TaskCreated{
		eventStamp: stampNow(),
		TaskID:     t.ID(),
		Title:      t.Title,
		TaskType:   string(t.Type),
		CreatedAt:  t.CreatedAt,
	})
	return t, nil
}

func (t *Task) AssignToUser(userID string) error {
	if t.Status == TaskStatusCompleted {
		return Errorf("cannot assign completed task")
	}
	if t.Status == TaskStatusCancelled {
		return Errorf("cannot assign cancelled task")
	}
	oldUserID := t.AssignedToUserID
	t.AssignedToUserID = userID
	t.UpdatedAt = time.Now().UTC()

	t.Raise(TaskAssigned{
		eventStamp: stampNow(),
		TaskID:     t.ID(),
		OldUserID:  oldUserID,
		NewUserID:  userID,
		AssignedAt: t.UpdatedAt,
	})
	return nil
}

// ChangeStatus validates the transition and raises TaskStatusChanged; reaching
// Completed additionally raises TaskCompleted.
func (t *Task) ChangeStatus(newStatus TaskStatus) error {
	if t.Status == newStatus {
		return nil
	}
	if t.Status == TaskStatusCompleted {
		return Errorf("cannot change status from Completed")
	}
	if t.Status == TaskStatusCancelled {
		return Errorf("cannot change status from Cancelled")
	}

	oldStatus := t.Status
	t.Status = newStatus
	t.UpdatedAt = time.Now().UTC()

	if newStatus == TaskStatusCompleted {
		now := time.Now().UTC()
		t.CompletedDate = &now
		t.Raise(TaskCompleted{
			eventStamp:  stampNow(),
			TaskID:      t.ID(),
			CompletedAt: now,
		})
	} else {
		t.CompletedDate = nil
	}

	t.Raise(TaskStatusChanged{
		eventStamp: stampNow(),
		TaskID:     t.ID(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		ChangedAt:  t.UpdatedAt,
	})
	return nil
}

func (t *Task) UpdateDueDate(newDueDate *time.Time) error {
	if t.Status == TaskStatusCompleted {
		return Errorf("cannot update due date for completed task")
	}
	if newDueDate != nil && t.StartDate != nil && newDueDate.Before(*t.StartDate) {
		return Errorf("due date cannot be before start date")
	}
	t.DueDate = newDueDate
	t.UpdatedAt = time.Now().UTC()

	if newDueDate != nil && newDueDate.Before(time.Now()) {
		t.Raise(TaskOverdue{
			eventStamp:       stampNow(),
			TaskID:           t.ID(),
			DueDate:          *newDueDate,
			AssignedToUserID: t.AssignedToUserID,
		})
	}
	return nil
}

func (t *Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now()) && t.Status != TaskStatusCompleted
}

type TaskCreated struct {
	eventStamp
	TaskID    string    `json:"taskId"`
	Title     string    `json:"title"`
	TaskType  string    `json:"taskType"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TaskCreated) Kind() string { return "TaskCreated" }

type TaskAssigned struct {
	eventStamp
	TaskID     string    `json:"taskId"`
	OldUserID  string    `json:"oldUserId,omitempty"`
	NewUserID  string    `json:"newUserId"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (TaskAssigned) Kind() string { return "TaskAssigned" }

type TaskCompleted struct {
	eventStamp
	TaskID      string    `json:"taskId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (TaskCompleted) Kind() string { return "TaskCompleted" }

type TaskStatusChanged struct {
	eventStamp
	TaskID    string    `json:"taskId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedAt time.Time `json:"changedAt"`
}

func (TaskStatusChanged) Kind() string { return "TaskStatusChanged" }

type TaskOverdue struct {
	eventStamp
	TaskID           string    `json:"taskId"`
	DueDate          time.Time `json:"dueDate"`
	AssignedToUserID string    `json:"assignedToUserId,omitempty"`
}

func (TaskOverdue) Kind() string { return "TaskOverdue" }
