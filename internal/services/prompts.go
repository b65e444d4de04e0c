package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

const jsonInstructions = `CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a single valid JSON object
- Do not include any explanatory text before or after the JSON
- Every field below is required:
%s`

func withShape(prompt string, schema *Schema) string {
	return prompt + "\n\n" + fmt.Sprintf(jsonInstructions, schema.Shape())
}

func imagePrompt(goal domain.Goal) string {
	return withShape(fmt.Sprintf(`Analyze this image to identify the EXACT food product.

USER GOAL: "%[1]s"

IDENTIFICATION:
- Read the barcode or packaging text to find the brand and specific product name.

ANALYSIS INSTRUCTIONS:
- Health Score: score from 1-10 based STRICTLY on how well it aligns with the goal "%[1]s" (e.g. high calorie is GOOD for "Weight Gain" but BAD for "Weight Loss").
- Pros/Cons: list pros and cons specifically for someone wanting to achieve "%[1]s".
- Physiological Analysis: explain in detail what happens to the body.
- Consumption Advice: be specific (e.g. "Avoid if cutting" or "Good for bulking").`, goal), nutritionSchema)
}

func textPrompt(productName string, goal domain.Goal) string {
	return withShape(fmt.Sprintf(`Analyze the food product: "%[1]s".

USER GOAL: "%[2]s"

Provide a standard nutritional estimation per serving.

ANALYSIS INSTRUCTIONS:
- Health Score: score from 1-10 based STRICTLY on how well it aligns with the goal "%[2]s".
- Pros/Cons: list pros and cons specifically for "%[2]s".
- Physiological Analysis: explain in detail what happens to the body.
- Consumption Advice: when and how often to consume based on the goal.`, productName, goal), nutritionSchema)
}

func dailyReportPrompt(foodList string) string {
	return withShape(fmt.Sprintf(`Here is a list of foods consumed today: [%s].

Generate an "End of Day" report.
1. Estimate Total Calories.
2. Assess the overall Macro Balance (High Carb / High Fat / Balanced).
3. Give a Health Score (1-10) for the day.
4. Provide a detailed analysis of the day's diet quality.
5. Give 3 actionable recommendations for tomorrow.`, foodList), dailyReportSchema)
}

func goalGuidePrompt(goal domain.Goal) string {
	return withShape(fmt.Sprintf(`Create a comprehensive daily guide for someone with the goal: "%s".

Provide:
1. A motivating summary.
2. 4-5 specific guidelines (type "do", "dont" or "tip").
3. A typical daily schedule (morning to night) optimized for this goal.`, goal), goalGuideSchema)
}

// FoodList reduces entries to "<name> (<calories>kcal)" joined by ", ".
func FoodList(entries []domain.HistoryEntry) string {
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = fmt.Sprintf("%s (%skcal)", e.ProductName, formatNumber(e.Calories))
	}
	return strings.Join(items, ", ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
