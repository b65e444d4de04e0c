package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
	apperrors "github.com/vladimiradmaev/nutriscan/internal/errors"
	"github.com/vladimiradmaev/nutriscan/internal/metrics"
)

// Operation names used in logs, errors and metrics.
const (
	OpAnalyzeImage = "analyze_image"
	OpAnalyzeText  = "analyze_text"
	OpDailyReport  = "daily_report"
	OpGoalGuide    = "goal_guide"
)

// User-facing failure messages per operation.
const (
	MsgAnalyzeImageFailed = "Failed to analyze image."
	MsgAnalyzeTextFailed  = "Failed to find product info."
	MsgDailyReportFailed  = "Failed to generate daily report."
	MsgGoalGuideFailed    = "Failed to generate goal guide."
	MsgNoRecentScans      = "No scans found for the last 24 hours."
)

const DefaultTimeout = 60 * time.Second

// Recorder receives one observation per AI request.
type Recorder interface {
	ObserveAnalysis(operation, provider, outcome string, d time.Duration)
}

// AnalysisService turns domain requests into single generator calls and
// validates the replies. It never retries or caches.
type AnalysisService struct {
	generator Generator
	timeout   time.Duration
	recorder  Recorder
	logger    *slog.Logger
}

// NewAnalysisService creates the analysis client. A non-positive timeout
// uses DefaultTimeout; recorder may be nil.
func NewAnalysisService(generator Generator, timeout time.Duration, recorder Recorder, logger *slog.Logger) *AnalysisService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		generator: generator,
		timeout:   timeout,
		recorder:  recorder,
		logger:    logger,
	}
}

var _ domain.Analyzer = (*AnalysisService)(nil)

// AnalyzeImage identifies the product in image and scores it for goal.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, image domain.Image, goal domain.Goal) (domain.NutritionRecord, error) {
	req := Request{Prompt: imagePrompt(goal), Image: &image, Schema: nutritionSchema}
	return call(ctx, s, OpAnalyzeImage, MsgAnalyzeImageFailed, req, parseNutrition)
}

// AnalyzeText estimates nutrition for a product name and scores it for goal.
func (s *AnalysisService) AnalyzeText(ctx context.Context, productName string, goal domain.Goal) (domain.NutritionRecord, error) {
	req := Request{Prompt: textPrompt(productName, goal), Schema: nutritionSchema}
	return call(ctx, s, OpAnalyzeText, MsgAnalyzeTextFailed, req, parseNutrition)
}

// GenerateDailyReport summarises entries. Callers filter the time window and
// must not pass an empty list.
func (s *AnalysisService) GenerateDailyReport(ctx context.Context, entries []domain.HistoryEntry) (domain.DailyReportRecord, error) {
	if len(entries) == 0 {
		return domain.DailyReportRecord{}, apperrors.NewEmptyInputError(MsgNoRecentScans)
	}
	req := Request{Prompt: dailyReportPrompt(FoodList(entries)), Schema: dailyReportSchema}
	return call(ctx, s, OpDailyReport, MsgDailyReportFailed, req, parseDailyReport)
}

// GenerateGoalGuide builds a daily plan for goal.
func (s *AnalysisService) GenerateGoalGuide(ctx context.Context, goal domain.Goal) (domain.GoalGuideRecord, error) {
	req := Request{Prompt: goalGuidePrompt(goal), Schema: goalGuideSchema}
	return call(ctx, s, OpGoalGuide, MsgGoalGuideFailed, req, parseGoalGuide)
}

// call issues exactly one request under the per-call timeout and parses the
// reply. Every failure becomes an AppError carrying message for the user.
func call[T any](ctx context.Context, s *AnalysisService, operation, message string, req Request, parse func(string) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	provider := s.generator.Name()
	start := time.Now()
	text, err := s.generator.Generate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.observe(operation, provider, metrics.OutcomeTimeout, elapsed)
			s.logger.Error("AI request timed out", "operation", operation, "provider", provider, "timeout", s.timeout)
			return zero, apperrors.NewTimeoutError(err, operation, message)
		}
		s.observe(operation, provider, metrics.OutcomeError, elapsed)
		s.logger.Error("AI request failed", "operation", operation, "provider", provider, "error", err)
		return zero, apperrors.NewAnalysisError(err, operation, message)
	}

	result, err := parse(text)
	if err != nil {
		s.observe(operation, provider, metrics.OutcomeMalformed, elapsed)
		s.logger.Error("AI response rejected", "operation", operation, "provider", provider, "error", err)
		return zero, apperrors.NewMalformedResponseError(err, operation, message)
	}

	s.observe(operation, provider, metrics.OutcomeSuccess, elapsed)
	s.logger.Debug("AI request completed", "operation", operation, "provider", provider, "duration", elapsed)
	return result, nil
}

func (s *AnalysisService) observe(operation, provider, outcome string, d time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveAnalysis(operation, provider, outcome, d)
	}
}
