package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"
)

func TestActivityTags(t *testing.T) {
	info := activity.Info{
		ActivityType: activity.Type{Name: "RunUpdate"},
		Attempt:      3,
		TaskQueue:    "gpp-indexer",
		WorkflowExecution: workflow.Execution{
			ID:    "gpp-indexer-update",
			RunID: "run-1",
		},
	}

	assert.Equal(t, map[string]string{
		"activity_type": "RunUpdate",
		"attempt":       "3",
		"task_queue":    "gpp-indexer",
		"workflow_id":   "gpp-indexer-update",
		"run_id":        "run-1",
	}, activityTags(info))
}

func TestActivityTags_NoWorkflow(t *testing.T) {
	tags := activityTags(activity.Info{ActivityType: activity.Type{Name: "CheckDue"}, Attempt: 1})

	assert.NotContains(t, tags, "workflow_id")
	assert.Equal(t, "CheckDue", tags["activity_type"])
}
