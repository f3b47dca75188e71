package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

func TestBlockServiceLifecycle(t *testing.T) {
	repo := &blockRepoStub{}
	svc := NewBlockService(repo, nil, nil)
	ctx := context.Background()

	block, err := svc.Create(ctx, BlockRequest{Label: "Morning", Color: "#ffeeaa", StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "9:00 AM to 12:00 PM", block.Range().Display())

	block, err = svc.Update(ctx, block.ID, BlockRequest{Label: "Morning", StartTime: "08:30", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "08:30:00", block.StartTime.String())

	require.NoError(t, svc.Delete(ctx, block.ID))
	_, err = svc.Get(ctx, block.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBlockServiceRejectsInvertedRange(t *testing.T) {
	svc := NewBlockService(&blockRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), BlockRequest{Label: "Late", StartTime: "19:00", EndTime: "16:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
