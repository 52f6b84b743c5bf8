package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"fitplan/workout-app/internal/domain"
)

const generationSystemPrompt = "You are an expert in physical education and strength training. Create safe and effective workout plans."

// exerciseCountForDuration maps a session duration to the exercise count the
// generator must produce per split. Roughly nine minutes per exercise.
var exerciseCountForDuration = map[string]int{
	"30min":  3,
	"45min":  5,
	"60min":  7,
	"75min":  8,
	"90min+": 10,
}

const defaultExerciseCount = 5

// ExerciseCountForDuration resolves the target exercise count for a session
// duration, falling back to the default for unrecognized values.
func ExerciseCountForDuration(sessionDuration string) int {
	if count, ok := exerciseCountForDuration[sessionDuration]; ok {
		return count
	}
	return defaultExerciseCount
}

// buildGenerationPrompt renders the instruction payload for the provider.
// The exercise count is a hard requirement, not a hint; the provider is also
// told to echo back the exact JSON shape PlanDocument unmarshals from.
func buildGenerationPrompt(req PlanRequest, exerciseCount int) string {
	var b strings.Builder

	b.WriteString("Create a personalized and COMPLETE workout plan based on the following information:\n")
	fmt.Fprintf(&b, "- Gender: %s\n", req.Gender)
	fmt.Fprintf(&b, "- Height: %dcm\n", req.Height)
	fmt.Fprintf(&b, "- Training type: %s\n", req.TrainingType)
	fmt.Fprintf(&b, "- Session duration: %s\n", req.SessionDuration)
	fmt.Fprintf(&b, "- Level: %s\n", req.Level)
	fmt.Fprintf(&b, "- Weekly frequency: %s\n", req.Frequency)
	fmt.Fprintf(&b, "- Number of splits/workouts: %d\n", req.SplitsCount)

	if req.CurrentPlan != nil {
		currentJSON, err := json.Marshal(req.CurrentPlan)
		if err == nil {
			fmt.Fprintf(&b, "\nBased on the current plan: %s, generate an updated version with the new preferences.\n", currentJSON)
		}
	}

	b.WriteString(`
Return ONLY a JSON object in the following format:
{
  "splits": [
    {
      "name": "A",
      "exercises": [
        {
          "main": "Main exercise name",
          "sets": "3",
          "reps": "12",
          "substitutions": ["Substitute 1", "Substitute 2", "Substitute 3"]
        }
      ]
    }
  ]
}

IMPORTANT RULES:
`)
	fmt.Fprintf(&b, "1. EXERCISE COUNT: For %s, generate EXACTLY %d exercises per split (approximately 9 minutes per exercise)\n", req.SessionDuration, exerciseCount)
	b.WriteString(`2. VARIETY: Include different muscle groups and exercise types (compound and isolation)
3. LOGICAL ORDER: Start with compound exercises and finish with isolation ones
4. PROGRESSION: Order from heaviest/most complex to lightest/simplest
5. SETS AND REPS: Adjust for the training goal:
   - Hypertrophy: 3-4 sets of 8-12 reps
   - Strength: 4-5 sets of 3-6 reps
   - Endurance: 2-3 sets of 15-20 reps
   - Weight loss: 3 sets of 12-15 reps
6. SUBSTITUTIONS: ALWAYS provide 3 realistic, equivalent substitutions for each exercise
7. BALANCE: Distribute evenly across the main muscle groups (chest, back, legs, shoulders, arms)
8. SAFETY: Respect the trainee's level (beginner = simpler exercises, advanced = more technical ones)
9. WARM-UP: The first exercise of each split must be lighter/preparatory
10. COMPLETENESS: Each split must be a complete, balanced workout
11. NAMING: Split names must be a bare label only, such as Workout A, Workout B, etc. Do not add anything else
`)
	fmt.Fprintf(&b, "\nIMPORTANT: Do NOT be minimalist! Generate a COMPLETE plan with the EXACT number of exercises specified (%d exercises per split).", exerciseCount)

	return b.String()
}

// parsePlanDocument decodes and shape-checks the provider's JSON answer.
func parsePlanDocument(content string) (*domain.PlanDocument, error) {
	var plan domain.PlanDocument
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	return &plan, nil
}
