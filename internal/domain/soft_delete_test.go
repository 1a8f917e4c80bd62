package domain

import (
	"testing"
	"time"
)

func TestSoftDeleteToggle(t *testing.T) {
	var s SoftDelete
	first := time.Date(2025, 5, 24, 11, 0, 0, 0, time.UTC)

	if !s.MarkDeleted(first) {
		t.Fatal("MarkDeleted() on live entity should report a change")
	}
	if !s.IsDeleted || s.IsDeletedTimestamp == nil || !s.IsDeletedTimestamp.Equal(first) {
		t.Fatalf("unexpected state after delete: %+v", s)
	}

	if s.MarkDeleted(first.Add(time.Hour)) {
		t.Error("second MarkDeleted() should be a no-op")
	}
	if !s.IsDeletedTimestamp.Equal(first) {
		t.Error("second MarkDeleted() must keep the original timestamp")
	}

	if !s.Restore() {
		t.Fatal("Restore() on deleted entity should report a change")
	}
	if s.IsDeleted || s.IsDeletedTimestamp != nil {
		t.Fatalf("unexpected state after restore: %+v", s)
	}
	if s.Restore() {
		t.Error("second Restore() should be a no-op")
	}
}

func TestParticipantInputIsReference(t *testing.T) {
	tests := []struct {
		name  string
		input ParticipantInput
		want  bool
	}{
		{name: "bare id", input: ParticipantInput{ID: "p1"}, want: true},
		{name: "id with name", input: ParticipantInput{ID: "p1", FirstName: "A"}, want: false},
		{name: "new participant", input: ParticipantInput{FirstName: "A"}, want: false},
		{name: "empty", input: ParticipantInput{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.IsReference(); got != tt.want {
				t.Errorf("IsReference() = %v, want %v", got, tt.want)
			}
		})
	}
}
