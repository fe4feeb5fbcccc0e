package domain

import (
	"strings"
	"testing"
)

func TestNewNote_RequiresALink(t *testing.T) {
	if _, err := NewNote("hello", NoteTypeGeneral, "user-1", "", "", "", "", ""); err == nil {
		t.Fatal("expected error for unlinked note")
	}

	note, err := NewNote("hello", NoteTypeGeneral, "user-1", "", "", "cust-1", "", "")
	if err != nil {
		t.Fatalf("new note: %v", err)
	}
	pending := note.PendingEvents()
	if len(pending) != 1 || pending[0].Kind() != "NoteCreated" {
		t.Fatalf("expected NoteCreated, got %v", pending)
	}
}

func TestNote_ContentLimits(t *testing.T) {
	if _, err := NewNote("   ", NoteTypeGeneral, "user-1", "", "", "cust-1", "", ""); err == nil {
		t.Fatal("expected error for blank content")
	}
	long := strings.Repeat("x", maxNoteContentLength+1)
	if _, err := NewNote(long, NoteTypeGeneral, "user-1", "", "", "cust-1", "", ""); err == nil {
		t.Fatal("expected error for oversized content")
	}
}

func TestNote_AttachmentCap(t *testing.T) {
	note, err := NewNote("hello", NoteTypeGeneral, "user-1", "", "", "cust-1", "", "")
	if err != nil {
		t.Fatalf("new note: %v", err)
	}
	note.ClearEvents()

	for i := 0; i < maxNoteAttachments; i++ {
		if err := note.AddAttachment(NoteAttachment{FileName: "f.txt"}); err != nil {
			t.Fatalf("attachment %d: %v", i, err)
		}
	}
	if err := note.AddAttachment(NoteAttachment{FileName: "over.txt"}); err == nil {
		t.Fatal("expected error above attachment cap")
	}
	if n := len(note.PendingEvents()); n != maxNoteAttachments {
		t.Fatalf("expected %d NoteAttachmentAdded events, got %d", maxNoteAttachments, n)
	}
}
