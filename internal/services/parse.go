package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

var errNoJSON = errors.New("no valid JSON found in response")

// extractJSON attempts to extract a JSON object from the given string.
// It handles replies wrapped in code fences (```json ... ```) or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// decodeObject extracts the JSON object and checks that every required
// field of schema is present and not null, recursing into arrays of objects.
func decodeObject(text string, schema *Schema, out any) error {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return errNoJSON
	}
	if err := checkRequired([]byte(jsonStr), schema, ""); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func checkRequired(data []byte, schema *Schema, path string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse response%s: %w", at(path), err)
	}

	for _, name := range schema.Required {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			return fmt.Errorf("missing required field %q%s", name, at(path))
		}

		prop := schema.Properties[name]
		if prop == nil || prop.Type != TypeArray || prop.Items == nil || prop.Items.Type != TypeObject {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("field %q%s is not an array: %w", name, at(path), err)
		}
		for i, item := range items {
			if err := checkRequired(item, prop.Items, fmt.Sprintf("%s%s[%d]", path, name, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func at(path string) string {
	if path == "" {
		return ""
	}
	return " in " + path
}

// score rounds a 1-10 score and rejects anything outside the range.
func score(field string, v float64) (int, error) {
	if math.IsNaN(v) || v < 1 || v > 10 {
		return 0, fmt.Errorf("%s %v is outside 1-10", field, v)
	}
	return int(math.Round(v)), nil
}

type nutritionWire struct {
	ProductName       string   `json:"productName"`
	Calories          float64  `json:"calories"`
	Protein           float64  `json:"protein"`
	Carbs             float64  `json:"carbs"`
	Fat               float64  `json:"fat"`
	HealthScore       float64  `json:"healthScore"`
	Summary           string   `json:"summary"`
	Pros              []string `json:"pros"`
	Cons              []string `json:"cons"`
	EffectOnBody      string   `json:"effectOnBody"`
	ConsumptionAdvice string   `json:"consumptionAdvice"`
}

func parseNutrition(text string) (domain.NutritionRecord, error) {
	var w nutritionWire
	if err := decodeObject(text, nutritionSchema, &w); err != nil {
		return domain.NutritionRecord{}, err
	}
	hs, err := score("healthScore", w.HealthScore)
	if err != nil {
		return domain.NutritionRecord{}, err
	}
	return domain.NutritionRecord{
		ProductName:       w.ProductName,
		Calories:          w.Calories,
		Protein:           w.Protein,
		Carbs:             w.Carbs,
		Fat:               w.Fat,
		HealthScore:       hs,
		Summary:           w.Summary,
		Pros:              w.Pros,
		Cons:              w.Cons,
		EffectOnBody:      w.EffectOnBody,
		ConsumptionAdvice: w.ConsumptionAdvice,
	}, nil
}

type dailyReportWire struct {
	TotalCalories   float64  `json:"totalCalories"`
	MacroBalance    string   `json:"macroBalance"`
	Score           float64  `json:"score"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

func parseDailyReport(text string) (domain.DailyReportRecord, error) {
	var w dailyReportWire
	if err := decodeObject(text, dailyReportSchema, &w); err != nil {
		return domain.DailyReportRecord{}, err
	}
	s, err := score("score", w.Score)
	if err != nil {
		return domain.DailyReportRecord{}, err
	}
	return domain.DailyReportRecord{
		TotalCalories:   w.TotalCalories,
		MacroBalance:    w.MacroBalance,
		Score:           s,
		Analysis:        w.Analysis,
		Recommendations: w.Recommendations,
	}, nil
}

func parseGoalGuide(text string) (domain.GoalGuideRecord, error) {
	var guide domain.GoalGuideRecord
	if err := decodeObject(text, goalGuideSchema, &guide); err != nil {
		return domain.GoalGuideRecord{}, err
	}
	for i, g := range guide.Guidelines {
		if !g.Kind.Valid() {
			return domain.GoalGuideRecord{}, fmt.Errorf("guidelines[%d] has unknown type %q", i, g.Kind)
		}
	}
	return guide, nil
}
