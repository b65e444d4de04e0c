package controller

import (
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

// Kind names a controller state.
type Kind int

const (
	KindIdle Kind = iota
	KindScanning
	KindAnalyzing
	KindShowingResult
	KindShowingDailyReport
	KindShowingGoalGuide
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindScanning:
		return "scanning"
	case KindAnalyzing:
		return "analyzing"
	case KindShowingResult:
		return "showing_result"
	case KindShowingDailyReport:
		return "showing_daily_report"
	case KindShowingGoalGuide:
		return "showing_goal_guide"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// State is one of the variants below. Each variant carries only the payload
// that is valid for it.
type State interface {
	Kind() Kind
	state()
}

// Idle is the home screen.
type Idle struct{}

// Scanning holds a live camera stream.
type Scanning struct {
	Facing capture.Facing
}

// AnalysisMode tells what is being analyzed.
type AnalysisMode int

const (
	ModeImage AnalysisMode = iota
	ModeText
)

func (m AnalysisMode) String() string {
	if m == ModeText {
		return "text"
	}
	return "image"
}

// Analyzing waits for the AI service.
type Analyzing struct {
	Mode AnalysisMode
}

// ShowingResult shows a nutrition record, fresh or from history.
type ShowingResult struct {
	Record  domain.NutritionRecord
	EntryID string
}

// ShowingDailyReport shows the last 24 hours summary.
type ShowingDailyReport struct {
	Report domain.DailyReportRecord
}

// ShowingGoalGuide shows the plan for the current goal.
type ShowingGoalGuide struct {
	Guide domain.GoalGuideRecord
}

// Failed carries the user-facing message of the last failure.
type Failed struct {
	Message string
	Err     error
}

func (Idle) Kind() Kind               { return KindIdle }
func (Scanning) Kind() Kind           { return KindScanning }
func (Analyzing) Kind() Kind          { return KindAnalyzing }
func (ShowingResult) Kind() Kind      { return KindShowingResult }
func (ShowingDailyReport) Kind() Kind { return KindShowingDailyReport }
func (ShowingGoalGuide) Kind() Kind   { return KindShowingGoalGuide }
func (Failed) Kind() Kind             { return KindError }

func (Idle) state()               {}
func (Scanning) state()           {}
func (Analyzing) state()          {}
func (ShowingResult) state()      {}
func (ShowingDailyReport) state() {}
func (ShowingGoalGuide) state()   {}
func (Failed) state()             {}

// cloneState deep-copies payload slices so snapshots never alias.
func cloneState(s State) State {
	switch v := s.(type) {
	case ShowingResult:
		v.Record = v.Record.Clone()
		return v
	case ShowingDailyReport:
		v.Report.Recommendations = append([]string(nil), v.Report.Recommendations...)
		return v
	case ShowingGoalGuide:
		v.Guide.Guidelines = append([]domain.Guideline(nil), v.Guide.Guidelines...)
		v.Guide.Schedule = append([]domain.ScheduleItem(nil), v.Guide.Schedule...)
		return v
	default:
		return s
	}
}
