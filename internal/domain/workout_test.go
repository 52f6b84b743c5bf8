package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() PlanDocument {
	return PlanDocument{
		Splits: []Split{
			{
				Name: "Workout A",
				Exercises: []Exercise{
					{Main: "Bench Press", Sets: "4", Reps: "8-12", Substitutions: []string{"Dumbbell Press", "Machine Press", "Push-up"}},
					{Main: "Incline Press", Sets: "3", Reps: "10", Substitutions: []string{"Incline Dumbbell Press", "Cable Fly", "Dip"}},
				},
			},
			{
				Name: "Workout B",
				Exercises: []Exercise{
					{Main: "Squat", Sets: "4", Reps: "6-8", Substitutions: []string{"Leg Press", "Hack Squat", "Goblet Squat"}},
				},
			},
		},
	}
}

func TestPlanDocumentValidate(t *testing.T) {
	plan := validPlan()
	require.NoError(t, plan.Validate())

	empty := PlanDocument{}
	assert.ErrorIs(t, empty.Validate(), ErrEmptyPlan)

	noExercises := PlanDocument{Splits: []Split{{Name: "A"}}}
	assert.ErrorIs(t, noExercises.Validate(), ErrEmptySplit)

	noName := validPlan()
	noName.Splits[0].Exercises[0].Main = ""
	assert.ErrorIs(t, noName.Validate(), ErrMissingExerciseName)

	twoSubs := validPlan()
	twoSubs.Splits[1].Exercises[0].Substitutions = []string{"Leg Press", "Hack Squat"}
	assert.ErrorIs(t, twoSubs.Validate(), ErrWrongSubstitutions)

	fourSubs := validPlan()
	fourSubs.Splits[0].Exercises[1].Substitutions = append(fourSubs.Splits[0].Exercises[1].Substitutions, "Extra")
	assert.ErrorIs(t, fourSubs.Validate(), ErrWrongSubstitutions)
}

func TestPlanDocumentCounts(t *testing.T) {
	plan := validPlan()
	assert.Equal(t, 3, plan.ExerciseCount())
	assert.Equal(t, 0, plan.CompletedCount())

	plan.Splits[0].Exercises[0].Completed = true
	plan.Splits[1].Exercises[0].Completed = true
	assert.Equal(t, 2, plan.CompletedCount())
}

func TestCompletionPercentageRounding(t *testing.T) {
	// 4 of 7 must round to 57, never store 57.14.
	plan := PlanDocument{Splits: []Split{{Name: "A"}}}
	for i := 0; i < 7; i++ {
		plan.Splits[0].Exercises = append(plan.Splits[0].Exercises, Exercise{
			Main:          "Exercise",
			Substitutions: []string{"a", "b", "c"},
			Completed:     i < 4,
		})
	}
	assert.Equal(t, 57, plan.CompletionPercentage())

	// 5 of 7 is 71.43, rounds down to 71.
	plan.Splits[0].Exercises[4].Completed = true
	assert.Equal(t, 71, plan.CompletionPercentage())

	// All done is exactly 100.
	for i := range plan.Splits[0].Exercises {
		plan.Splits[0].Exercises[i].Completed = true
	}
	assert.Equal(t, 100, plan.CompletionPercentage())
}

func TestCompletionPercentageEmptyPlan(t *testing.T) {
	var plan PlanDocument
	assert.Equal(t, 0, plan.CompletionPercentage())
}

func TestResetCompletion(t *testing.T) {
	plan := validPlan()
	for si := range plan.Splits {
		for ei := range plan.Splits[si].Exercises {
			plan.Splits[si].Exercises[ei].Completed = true
		}
	}
	require.Equal(t, plan.ExerciseCount(), plan.CompletedCount())

	plan.ResetCompletion()
	assert.Equal(t, 0, plan.CompletedCount())
	assert.Equal(t, 0, plan.CompletionPercentage())
}
