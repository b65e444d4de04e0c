package domain

import (
	"context"
	"time"
)

// Image is an encoded still image sent for analysis.
type Image struct {
	Data     []byte
	MIMEType string
}

// Analyzer is the contract with the external AI service. Every call is one
// request; nothing is cached or retried.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image Image, goal Goal) (NutritionRecord, error)
	AnalyzeText(ctx context.Context, productName string, goal Goal) (NutritionRecord, error)
	GenerateDailyReport(ctx context.Context, entries []HistoryEntry) (DailyReportRecord, error)
	GenerateGoalGuide(ctx context.Context, goal Goal) (GoalGuideRecord, error)
}

// HistoryStore is the bounded, newest-first log of past analyses.
type HistoryStore interface {
	Load(ctx context.Context) error
	Append(ctx context.Context, entry HistoryEntry) error
	All() []HistoryEntry
	Find(id string) (HistoryEntry, bool)
	Since(t time.Time) []HistoryEntry
}

// PreferencesStore persists the selected goal and theme.
type PreferencesStore interface {
	Goal(ctx context.Context) Goal
	SetGoal(ctx context.Context, goal Goal) error
	Theme(ctx context.Context) Theme
	SetTheme(ctx context.Context, theme Theme) error
}
