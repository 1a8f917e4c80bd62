package service

import (
	"context"
	"testing"

	"private-scribe-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantService(t *testing.T) {
	_, uow := setupDB(t)
	s := NewParticipantService(uow)
	ctx := context.Background()

	a, err := s.Create(ctx, "u1", &domain.CreateParticipantRequest{FirstName: "Jane", Email: "same@x.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u1", &domain.CreateParticipantRequest{FirstName: "Jim", LastName: "Doe", Email: "same@x.com"})
	require.NoError(t, err, "participant email is not unique")
	_, err = s.Create(ctx, "u2", &domain.CreateParticipantRequest{FirstName: "Other"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "u1", a.AuthorID)

	list, err := s.ListByUser(ctx, "u1", "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.ListByUser(ctx, "u1", "u2")
	assert.ErrorIs(t, err, ErrAccessDenied)
}
