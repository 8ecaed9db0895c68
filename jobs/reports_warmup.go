package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerpos/ledgerpos/internal/reports"
)

// Presets warmed when the payload does not name any.
var defaultWarmupPresets = []string{
	string(reports.PresetToday),
	string(reports.PresetThisWeek),
	string(reports.PresetThisMonth),
	string(reports.PresetLast30Days),
}

const warmupTopN = 5

// ReportsWarmupJob pre-populates the report caches so the first dashboard
// load of the day does not pay the aggregation cost.
type ReportsWarmupJob struct {
	Service *reports.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(service *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Service: service,
		Logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes report warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	presets := payload.Presets
	if len(presets) == 0 {
		presets = defaultWarmupPresets
	}

	logger := j.logger()
	now := j.now()
	warmed := 0
	for _, preset := range presets {
		window, err := reports.ResolvePreset(reports.Preset(preset), now)
		if err != nil {
			logger.Warn("skip unknown preset", slog.String("preset", preset))
			continue
		}
		if err := j.warmWindow(ctx, window); err != nil {
			logger.Error("warm window", slog.String("preset", preset), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed reports warmup", slog.Int("windows", warmed), slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReportsWarmupJob) warmWindow(ctx context.Context, window reports.DateRange) error {
	windowCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Service.Summary(windowCtx, window); err != nil {
		return err
	}
	if _, err := j.Service.TopProducts(windowCtx, window, warmupTopN); err != nil {
		return err
	}
	if _, err := j.Service.TopCustomers(windowCtx, window, warmupTopN); err != nil {
		return err
	}
	if _, err := j.Service.MonthlyTrend(windowCtx, window); err != nil {
		return err
	}
	if _, err := j.Service.Breakdowns(windowCtx, window); err != nil {
		return err
	}
	return nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
