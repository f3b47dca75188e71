package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

func TestStaffServiceCreateAppliesDefaults(t *testing.T) {
	repo := newStaffRepoStub()
	svc := NewStaffService(repo, nil, nil, nil)

	member, err := svc.Create(context.Background(), StaffRequest{FirstName: "Ben", LastName: "Hart", BgColor: "#aabbcc"})
	require.NoError(t, err)
	assert.Equal(t, 40, member.RequestedHours)
	assert.Equal(t, 8, member.MaxHoursPerDay)
	assert.Equal(t, 1, member.SkillLevel)

	zero := 0
	member, err = svc.Create(context.Background(), StaffRequest{FirstName: "Cara", LastName: "Diaz", MaxHoursPerDay: &zero, SkillLevel: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, member.MaxHoursPerDay)
	assert.Equal(t, 3, member.SkillLevel)
}

func TestStaffServiceCreateRejectsBadColor(t *testing.T) {
	svc := NewStaffService(newStaffRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), StaffRequest{FirstName: "Ben", LastName: "Hart", BgColor: "blue"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceUpdateKeepsOmittedQuotas(t *testing.T) {
	repo := newStaffRepoStub(models.Staff{ID: "s1", FirstName: "Ben", LastName: "Hart", RequestedHours: 25, MaxHoursPerDay: 6, SkillLevel: 2})
	summaries := &invalidationRecorder{}
	svc := NewStaffService(repo, summaries, nil, nil)

	member, err := svc.Update(context.Background(), "s1", StaffRequest{FirstName: "Ben", LastName: "Hart", SkillLevel: 2, SpeaksLanguage: true})
	require.NoError(t, err)
	assert.Equal(t, 25, member.RequestedHours)
	assert.Equal(t, 6, member.MaxHoursPerDay)
	assert.True(t, member.SpeaksLanguage)
	assert.Equal(t, []models.Owner{models.StaffOwner("s1")}, summaries.owners)
}

func TestStaffServiceDelete(t *testing.T) {
	repo := newStaffRepoStub(models.Staff{ID: "s1", FirstName: "Ben", LastName: "Hart"})
	summaries := &invalidationRecorder{}
	svc := NewStaffService(repo, summaries, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Equal(t, []models.OwnerKind{models.OwnerKindClient}, summaries.kinds)

	_, err := svc.Get(context.Background(), "s1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
