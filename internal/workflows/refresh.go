package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RefreshInput is the input for the refresh workflow.
type RefreshInput struct {
	Dataset string
}

// RefreshResult reports what the workflow did.
type RefreshResult struct {
	Dataset   string
	Rows      int
	Published bool
}

// DatasetRefreshWorkflow re-imports one dataset into the store, drops the
// cached copy and notifies the API instances. A failed notification does not
// fail the workflow: the store and cache are already consistent.
func DatasetRefreshWorkflow(ctx workflow.Context, input RefreshInput) (RefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting dataset refresh", "dataset", input.Dataset)

	res := RefreshResult{Dataset: input.Dataset}

	importCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})
	if err := workflow.ExecuteActivity(importCtx, "ImportDataset", input.Dataset).Get(ctx, &res.Rows); err != nil {
		return res, err
	}

	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})
	if err := workflow.ExecuteActivity(actCtx, "InvalidateCache", input.Dataset).Get(ctx, nil); err != nil {
		return res, err
	}

	err := workflow.ExecuteActivity(actCtx, "PublishRefreshed", input.Dataset, res.Rows, workflow.Now(ctx)).Get(ctx, nil)
	if err != nil {
		logger.Warn("refresh notification failed", "dataset", input.Dataset, "error", err)
		return res, nil
	}
	res.Published = true

	logger.Info("Dataset refreshed", "dataset", input.Dataset, "rows", res.Rows)
	return res, nil
}
