package workflows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	temporalmocks "go.temporal.io/sdk/mocks"

	"github.com/feral-file/gpp-indexer/internal/mocks"
	"github.com/feral-file/gpp-indexer/internal/workflows"
)

func TestStartSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockTemporalOrchestrator(ctrl)
	w := workflows.NewWorker(mocks.NewMockExecutor(ctrl), workflows.WorkerConfig{})

	run := &temporalmocks.WorkflowRun{}
	run.On("GetID").Return(workflows.UPDATE_WORKFLOW_ID)
	run.On("GetRunID").Return("run-1")

	orchestrator.EXPECT().ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), workflows.UpdateRequest{Trigger: workflows.TRIGGER_SCHEDULE}).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			assert.Equal(t, workflows.UPDATE_WORKFLOW_ID, options.ID)
			assert.Equal(t, "gpp-indexer", options.TaskQueue)
			assert.Equal(t, "0 3 * * *", options.CronSchedule)
			assert.Equal(t, enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE, options.WorkflowIDReusePolicy)
			return run, nil
		})

	err := workflows.StartSchedule(context.Background(), orchestrator, w, workflows.ScheduleConfig{TaskQueue: "gpp-indexer", CronSchedule: "0 3 * * *"})
	require.NoError(t, err)
	run.AssertExpectations(t)
}

func TestStartSchedule_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockTemporalOrchestrator(ctrl)
	assert.NoError(t, workflows.StartSchedule(context.Background(), orchestrator, nil, workflows.ScheduleConfig{}))
}

func TestStartSchedule_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orchestrator := mocks.NewMockTemporalOrchestrator(ctrl)
	orchestrator.EXPECT().ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("namespace not found"))

	// the workflow function is only referenced, never invoked
	w := mocks.NewMockWorker(ctrl)
	err := workflows.StartSchedule(context.Background(), orchestrator, w, workflows.ScheduleConfig{TaskQueue: "q", CronSchedule: "@daily"})
	assert.ErrorContains(t, err, "namespace not found")
}
