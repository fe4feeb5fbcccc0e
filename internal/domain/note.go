package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNoteContentLength = 10000
	maxNoteAttachments   = 10
)

type NoteType string

const (
	NoteTypeCall     NoteType = "Call"
	NoteTypeMeeting  NoteType = "Meeting"
	NoteTypeEmail    NoteType = "Email"
	NoteTypeTask     NoteType = "Task"
	NoteTypeGeneral  NoteType = "General"
	NoteTypeFollowUp NoteType = "FollowUp"
	NoteTypeDocument NoteType = "Document"
)

type NoteCategory string

const (
	NoteCategorySales     NoteCategory = "Sales"
	NoteCategorySupport   NoteCategory = "Support"
	NoteCategoryMarketing NoteCategory = "Marketing"
	NoteCategoryGeneral   NoteCategory = "General"
	NoteCategoryLegal     NoteCategory = "Legal"
)

type NoteAttachment struct {
	ID       string
	FileName string
	FileURL  string
}

// Note is free-form text attached to a customer, contact or task. A note must
// be linked to at least one of them.
type Note struct {
	Root

	Content  string
	Title    string
	Type     NoteType
	Category NoteCategory

	CustomerID string
	ContactID  string
	TaskID     string

	Attachments []NoteAttachment

	CreatedByUserID string
	UpdatedByUserID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewNote(content string, typ NoteType, createdByUserID, title string, category NoteCategory, customerID, contactID, taskID string) (*Note, error) {
	if err := validateNoteContent(content); err != nil {
		return nil, err
	}
	if customerID == "" && contactID == "" && taskID == "" {
		return nil, Errorf("note must be linked to customer, contact, or task")
	}

	n := &Note{
		Root:            NewRoot(uuid.NewString()),
		Content:         content,
		Title:           title,
		Type:            typ,
		Category:        category,
		CustomerID:      customerID,
		ContactID:       contactID,
		TaskID:          taskID,
		CreatedByUserID: createdByUserID,
		CreatedAt:       time.Now().UTC(),
	}
	n.Raise(NoteCreated{
		eventStamp: stampNow(),
		NoteID:     n.ID(),
		NoteType:   string(n.Type),
		CreatedAt:  n.CreatedAt,
		CustomerID: n.CustomerID,
		ContactID:  n.ContactID,
		TaskID:     n.TaskID,
	})
	return n, nil
}

func (n *Note) UpdateContent(newContent, updatedByUserID string) error {
	if err := validateNoteContent(newContent); err != nil {
		return err
	}
	n.Content = newContent
	n.UpdatedAt = time.Now().UTC()
	n.UpdatedByUserID = updatedByUserID

	n.Raise(NoteUpdated{
		eventStamp: stampNow(),
		NoteID:     n.ID(),
		UpdatedAt:  n.UpdatedAt,
	})
	return nil
}

func (n *Note) AddAttachment(att NoteAttachment) error {
	if len(n.Attachments) >= maxNoteAttachments {
		return Errorf("maximum %d attachments per note", maxNoteAttachments)
	}
	n.Attachments = append(n.Attachments, att)

	n.Raise(NoteAttachmentAdded{
		eventStamp: stampNow(),
		NoteID:     n.ID(),
		FileName:   att.FileName,
		AddedAt:    time.Now().UTC(),
	})
	return nil
}

// Delete marks the note deleted. The row removal itself is the storage
// layer's concern; this only records the fact.
func (n *Note) Delete(deletedByUserID string) {
	n.Raise(NoteDeleted{
		eventStamp:      stampNow(),
		NoteID:          n.ID(),
		DeletedByUserID: deletedByUserID,
		DeletedAt:       time.Now().UTC(),
	})
}

func validateNoteContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return Errorf("note content cannot be empty")
	}
	if len(content) > maxNoteContentLength {
		return Errorf("note content is too long (max %d characters)", maxNoteContentLength)
	}
	return nil
}

type NoteCreated struct {
	eventStamp
	NoteID     string    `json:"noteId"`
	NoteType   string    `json:"noteType"`
	CreatedAt  time.Time `json:"createdAt"`
	CustomerID string    `json:"customerId,omitempty"`
	ContactID  string    `json:"contactId,omitempty"`
	TaskID     string    `json:"taskId,omitempty"`
}

func (NoteCreated) Kind() string { return "NoteCreated" }

type NoteUpdated struct {
	eventStamp
	NoteID    string    `json:"noteId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (NoteUpdated) Kind() string { return "NoteUpdated" }

type NoteDeleted struct {
	eventStamp
	NoteID          string    `json:"noteId"`
	DeletedByUserID string    `json:"deletedByUserId"`
	DeletedAt       time.Time `json:"deletedAt"`
}

func (NoteDeleted) Kind() string { return "NoteDeleted" }

type NoteAttachmentAdded struct {
	eventStamp
	NoteID   string    `json:"noteId"`
	FileName string    `json:"fileName"`
	AddedAt  time.Time `json:"addedAt"`
}

func (NoteAttachmentAdded) Kind() string { return "NoteAttachmentAdded" }
