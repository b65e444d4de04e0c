package domain

import (
	"fmt"
	"time"
)

// NutritionRecord is the structured analysis of one product, scored
// relative to the goal that was active when it was requested.
type NutritionRecord struct {
	ProductName       string   `json:"productName"`
	Calories          float64  `json:"calories"`
	Protein           float64  `json:"protein"`
	Carbs             float64  `json:"carbs"`
	Fat               float64  `json:"fat"`
	HealthScore       int      `json:"healthScore"`
	Summary           string   `json:"summary"`
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	EffectOnBody      string   `json:"effectOnBody"`
	ConsumptionAdvice string   `json:"consumptionAdvice"`
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (r NutritionRecord) Clone() NutritionRecord {
	r.Pros = append([]string(nil), r.Pros...)
	r.Cons = append([]string(nil), r.Cons...)
	return r
}

// MacroShare is the percentage split of protein/carbs/fat by weight.
type MacroShare struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// Macros returns the protein/carbs/fat split as percentages. All zero
// when the record has no macros.
func (r NutritionRecord) Macros() MacroShare {
	total := r.Protein + r.Carbs + r.Fat
	if total <= 0 {
		return MacroShare{}
	}
	return MacroShare{
		Protein: r.Protein / total * 100,
		Carbs:   r.Carbs / total * 100,
		Fat:     r.Fat / total * 100,
	}
}

// HistoryEntry is a persisted past analysis.
type HistoryEntry struct {
	NutritionRecord
	ID             string `json:"id"`
	Timestamp      int64  `json:"timestamp"` // epoch milliseconds
	ImageThumbnail string `json:"imageThumbnail,omitempty"`
}

// Time returns the capture time.
func (e HistoryEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Clone returns a deep copy of the entry.
func (e HistoryEntry) Clone() HistoryEntry {
	e.NutritionRecord = e.NutritionRecord.Clone()
	return e
}

// DailyReportRecord summarises the last 24 hours of history.
type DailyReportRecord struct {
	TotalCalories   float64  `json:"totalCalories"`
	MacroBalance    string   `json:"macroBalance"`
	Score           int      `json:"score"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

// GuidelineKind tags a goal guideline.
type GuidelineKind string

const (
	GuidelineDo   GuidelineKind = "do"
	GuidelineDont GuidelineKind = "dont"
	GuidelineTip  GuidelineKind = "tip"
)

// Valid reports whether k is one of the three known kinds.
func (k GuidelineKind) Valid() bool {
	switch k {
	case GuidelineDo, GuidelineDont, GuidelineTip:
		return true
	}
	return false
}

// Guideline is a single do/don't/tip item.
type Guideline struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Kind        GuidelineKind `json:"type"`
}

// ScheduleItem is one slot of the ideal daily schedule.
type ScheduleItem struct {
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
}

// GoalGuideRecord is a daily plan for a goal.
type GoalGuideRecord struct {
	GoalName   string         `json:"goalName"`
	Summary    string         `json:"summary"`
	Guidelines []Guideline    `json:"guidelines"`
	Schedule   []ScheduleItem `json:"schedule"`
}

// Goal is a dietary objective that conditions scoring and advice.
type Goal string

const (
	GoalGeneralHealth Goal = "General Health"
	GoalWeightLoss    Goal = "Weight Loss"
	GoalWeightGain    Goal = "Weight Gain"
	GoalMuscleBuild   Goal = "Muscle Build"
	GoalLowCarbKeto   Goal = "Low Carb / Keto"
)

// DefaultGoal is used when nothing valid is stored.
const DefaultGoal = GoalGeneralHealth

// Goals lists every goal in display order.
var Goals = []Goal{
	GoalGeneralHealth,
	GoalWeightLoss,
	GoalWeightGain,
	GoalMuscleBuild,
	GoalLowCarbKeto,
}

// ParseGoal accepts exactly one of the known goal labels.
func ParseGoal(s string) (Goal, error) {
	for _, g := range Goals {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown goal %q", s)
}

// Theme is the persisted colour preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ScoreBand groups health scores for presentation.
type ScoreBand int

const (
	ScorePoor ScoreBand = iota
	ScoreMedium
	ScoreGood
)

// BandForScore follows the result view thresholds: 8+ good, 5+ medium.
func BandForScore(score int) ScoreBand {
	switch {
	case score >= 8:
		return ScoreGood
	case score >= 5:
		return ScoreMedium
	default:
		return ScorePoor
	}
}

// ListBandForScore uses the looser history-list thresholds: 7+ good, 4 and below poor.
func ListBandForScore(score int) ScoreBand {
	switch {
	case score >= 7:
		return ScoreGood
	case score <= 4:
		return ScorePoor
	default:
		return ScoreMedium
	}
}
