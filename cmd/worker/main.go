package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storefront-api/internal/app/api"
	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"
	orderactivities "github.com/Apurer/storefront-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/storefront-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	cfg, err := api.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cfg.Telemetry.ServiceName = "storefront-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	activities := orderactivities.NewActivities(api.NewMailSender(cfg, logger), cfg.PayHere.Currency)

	w := worker.New(temporalClient, orderworkflows.OrderConfirmationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderConfirmationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderConfirmationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendOrderConfirmation, activity.RegisterOptions{Name: orderactivities.SendOrderConfirmationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderConfirmationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
