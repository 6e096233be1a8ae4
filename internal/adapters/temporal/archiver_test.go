package temporaladapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	temporaladapter "github.com/samirrijal/isstrack/internal/adapters/temporal"
	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/workflows"
)

func TestArchiver_StartsWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("segment-archive-abc")
	run.On("GetRunID").Return("run-1")

	seg := &domain.ArchivedSegment{ID: "abc", Points: []domain.GeoPoint{{Lat: 1, Lon: 2}}}

	c.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.ID == "segment-archive-abc" && o.TaskQueue == "isstrack-archive"
		}),
		mock.Anything,
		workflows.SegmentArchiveInput{Segment: *seg},
	).Return(run, nil).Once()

	a := temporaladapter.NewArchiver(c, "isstrack-archive")
	require.NoError(t, a.Archive(context.Background(), seg))
	c.AssertExpectations(t)
}

func TestArchiver_StartError(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable")).Once()

	a := temporaladapter.NewArchiver(c, "q")
	err := a.Archive(context.Background(), &domain.ArchivedSegment{ID: "x"})
	require.Error(t, err)
}
