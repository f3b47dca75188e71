package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

func TestClientServiceCreateDefaultsSkill(t *testing.T) {
	repo := newClientRepoStub()
	svc := NewClientService(repo, newStaffRepoStub(), nil, nil, zap.NewNop())

	client, err := svc.Create(context.Background(), ClientRequest{FirstName: " Ana ", LastName: "Lopez", PrescribedHours: 12})
	require.NoError(t, err)
	assert.Equal(t, "Ana", client.FirstName)
	assert.Equal(t, models.MinSkillLevel, client.ReqSkillLevel)
	assert.Equal(t, "Ana Lopez", client.DisplayName())
}

func TestClientServiceCreateValidation(t *testing.T) {
	svc := NewClientService(newClientRepoStub(), newStaffRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), ClientRequest{FirstName: "Ana"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), ClientRequest{FirstName: "Ana", LastName: "Lopez", ReqSkillLevel: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClientServiceUpdateInvalidatesSummary(t *testing.T) {
	repo := newClientRepoStub(models.Client{ID: "c1", FirstName: "Ana", LastName: "Lopez", PrescribedHours: 10})
	summaries := &invalidationRecorder{}
	svc := NewClientService(repo, newStaffRepoStub(), summaries, nil, nil)

	client, err := svc.Update(context.Background(), "c1", ClientRequest{FirstName: "Ana", LastName: "Lopez", PrescribedHours: 15, IsManuallyMaxedOut: true})
	require.NoError(t, err)
	assert.Equal(t, 15, client.PrescribedHours)
	assert.True(t, repo.items["c1"].IsManuallyMaxedOut)
	assert.Equal(t, []models.Owner{models.ClientOwner("c1")}, summaries.owners)

	_, err = svc.Update(context.Background(), "ghost", ClientRequest{FirstName: "A", LastName: "B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClientServiceDeleteInvalidatesStaffSummaries(t *testing.T) {
	repo := newClientRepoStub(models.Client{ID: "c1", FirstName: "Ana", LastName: "Lopez"})
	summaries := &invalidationRecorder{}
	svc := NewClientService(repo, newStaffRepoStub(), summaries, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Equal(t, []models.OwnerKind{models.OwnerKindStaff}, summaries.kinds)

	err := svc.Delete(context.Background(), "c1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClientServiceReplacePastStaff(t *testing.T) {
	repo := newClientRepoStub(models.Client{ID: "c1", FirstName: "Ana", LastName: "Lopez"})
	staff := newStaffRepoStub(
		models.Staff{ID: "s1", FirstName: "Ben", LastName: "Hart"},
		models.Staff{ID: "s2", FirstName: "Cara", LastName: "Diaz"},
	)
	svc := NewClientService(repo, staff, nil, nil, nil)
	ctx := context.Background()

	result, err := svc.ReplacePastStaff(ctx, "c1", PastStaffRequest{StaffIDs: []string{"s1", "s2", "s1"}})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, []string{"s1", "s2"}, repo.replaced)

	listed, err := svc.PastStaff(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.ReplacePastStaff(ctx, "c1", PastStaffRequest{StaffIDs: []string{"s1", "ghost"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	result, err = svc.ReplacePastStaff(ctx, "c1", PastStaffRequest{})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, repo.replaced)
}
