package services

import (
	"fmt"
	"strings"
)

var (
	stringSchema = &Schema{Type: TypeString}
	numberSchema = &Schema{Type: TypeNumber}
)

var nutritionSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"productName": stringSchema,
		"calories":    numberSchema,
		"protein":     numberSchema,
		"carbs":       numberSchema,
		"fat":         numberSchema,
		"healthScore": {Type: TypeNumber, Description: "Score from 1 to 10 for how well the product fits the goal."},
		"summary":     stringSchema,
		"pros":        {Type: TypeArray, Items: stringSchema},
		"cons":        {Type: TypeArray, Items: stringSchema},
		"effectOnBody": {
			Type:        TypeString,
			Description: "Detailed explanation of what happens physiologically (e.g., insulin spike, muscle repair) when eaten.",
		},
		"consumptionAdvice": {
			Type:        TypeString,
			Description: "Specific advice on when to eat (e.g. post-workout) and how often (e.g. once a week).",
		},
	},
	Required: []string{
		"productName", "calories", "protein", "carbs", "fat", "healthScore",
		"summary", "pros", "cons", "effectOnBody", "consumptionAdvice",
	},
}

var dailyReportSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"totalCalories":   numberSchema,
		"macroBalance":    stringSchema,
		"score":           numberSchema,
		"analysis":        stringSchema,
		"recommendations": {Type: TypeArray, Items: stringSchema},
	},
	Required: []string{"totalCalories", "macroBalance", "score", "analysis", "recommendations"},
}

var goalGuideSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"goalName": stringSchema,
		"summary":  stringSchema,
		"guidelines": {
			Type: TypeArray,
			Items: &Schema{
				Type: TypeObject,
				Properties: map[string]*Schema{
					"title":       stringSchema,
					"description": stringSchema,
					"type":        {Type: TypeString, Enum: []string{"do", "dont", "tip"}},
				},
				Required: []string{"title", "description", "type"},
			},
		},
		"schedule": {
			Type: TypeArray,
			Items: &Schema{
				Type: TypeObject,
				Properties: map[string]*Schema{
					"time":        stringSchema,
					"activity":    stringSchema,
					"description": stringSchema,
				},
				Required: []string{"time", "activity", "description"},
			},
		},
	},
	Required: []string{"goalName", "summary", "guidelines", "schedule"},
}

// Shape renders the schema as a JSON skeleton for prompts, e.g.
// {"name": string, "tags": [string]}.
func (s *Schema) Shape() string {
	var b strings.Builder
	s.writeShape(&b)
	return b.String()
}

func (s *Schema) writeShape(b *strings.Builder) {
	switch s.Type {
	case TypeString:
		if len(s.Enum) > 0 {
			b.WriteString(`"` + strings.Join(s.Enum, `"|"`) + `"`)
			return
		}
		b.WriteString("string")
	case TypeNumber:
		b.WriteString("number")
	case TypeArray:
		b.WriteString("[")
		if s.Items != nil {
			s.Items.writeShape(b)
		}
		b.WriteString("]")
	case TypeObject:
		b.WriteString("{")
		for i, name := range s.Required {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%q: ", name)
			if prop, ok := s.Properties[name]; ok {
				prop.writeShape(b)
			}
		}
		b.WriteString("}")
	}
}
