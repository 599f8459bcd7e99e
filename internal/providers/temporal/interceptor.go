package temporal

import (
	"context"
	"strconv"

	"github.com/getsentry/sentry-go"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/interceptor"
)

// NewSentryActivityInterceptor returns a worker interceptor that gives every activity
// execution its own Sentry hub, tagged with the activity and workflow it belongs to
func NewSentryActivityInterceptor() interceptor.WorkerInterceptor {
	return &sentryWorkerInterceptor{}
}

type sentryWorkerInterceptor struct {
	interceptor.WorkerInterceptorBase
}

func (s *sentryWorkerInterceptor) InterceptActivity(ctx context.Context, next interceptor.ActivityInboundInterceptor) interceptor.ActivityInboundInterceptor {
	i := &sentryActivityInbound{}
	i.Next = next
	return i
}

type sentryActivityInbound struct {
	interceptor.ActivityInboundInterceptorBase
}

func (s *sentryActivityInbound) ExecuteActivity(ctx context.Context, in *interceptor.ExecuteActivityInput) (interface{}, error) {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range activityTags(activity.GetInfo(ctx)) {
			scope.SetTag(k, v)
		}
	})

	// logger.*Ctx picks the hub up from the context
	return s.Next.ExecuteActivity(sentry.SetHubOnContext(ctx, hub), in)
}

func activityTags(info activity.Info) map[string]string {
	tags := map[string]string{
		"activity_type": info.ActivityType.Name,
		"attempt":       strconv.Itoa(int(info.Attempt)),
		"task_queue":    info.TaskQueue,
	}
	if info.WorkflowExecution.ID != "" {
		tags["workflow_id"] = info.WorkflowExecution.ID
		tags["run_id"] = info.WorkflowExecution.RunID
	}
	return tags
}
