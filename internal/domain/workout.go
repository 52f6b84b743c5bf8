package domain

import (
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The number of substitute movements the generator must provide per exercise.
const SubstitutionsPerExercise = 3

var (
	ErrEmptyPlan            = errors.New("plan must contain at least one split")
	ErrEmptySplit           = errors.New("every split must contain at least one exercise")
	ErrMissingExerciseName  = errors.New("every exercise must have a main movement name")
	ErrWrongSubstitutions   = errors.New("every exercise must have exactly 3 substitutions")
)

// WorkoutPlan is a generated training program owned by a single user.
// Its split/exercise structure is fixed after generation; only the
// per-exercise completion flags are rewritten as the user trains.
type WorkoutPlan struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID `bson:"userId" json:"userId"`
	Name                 string             `bson:"name" json:"name"`
	Plan                 PlanDocument       `bson:"plan" json:"plan"`
	CompletionPercentage int                `bson:"completionPercentage" json:"completionPercentage"`
	IsActive             bool               `bson:"isActive" json:"isActive"`
	CyclesCompleted      int                `bson:"cyclesCompleted" json:"cyclesCompleted"`
	DurationDays         *int               `bson:"durationDays,omitempty" json:"durationDays,omitempty"`
	ExpirationDate       *time.Time         `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanDocument is the nested exercise-and-split structure representing
// one workout program, as produced by the generation provider.
type PlanDocument struct {
	Splits []Split `bson:"splits" json:"splits"`
}

// Split is one named sub-workout (e.g. "Workout A") containing an
// ordered list of exercises.
type Split struct {
	Name      string     `bson:"name" json:"name"`
	Exercises []Exercise `bson:"exercises" json:"exercises"`
}

// Exercise is a single movement inside a split. Sets and reps are kept as
// strings because the generator may return ranges like "8-12".
type Exercise struct {
	Main          string   `bson:"main" json:"main"`
	Sets          string   `bson:"sets" json:"sets"`
	Reps          string   `bson:"reps" json:"reps"`
	Substitutions []string `bson:"substitutions" json:"substitutions"`
	Completed     bool     `bson:"completed,omitempty" json:"completed,omitempty"`
}

// Validate rejects plan documents that do not match the expected shape.
// The generation provider's output is never trusted as-is.
func (p *PlanDocument) Validate() error {
	if len(p.Splits) == 0 {
		return ErrEmptyPlan
	}
	for _, split := range p.Splits {
		if len(split.Exercises) == 0 {
			return ErrEmptySplit
		}
		for _, ex := range split.Exercises {
			if ex.Main == "" {
				return ErrMissingExerciseName
			}
			if len(ex.Substitutions) != SubstitutionsPerExercise {
				return ErrWrongSubstitutions
			}
		}
	}
	return nil
}

// ExerciseCount returns the total number of exercises across all splits.
func (p *PlanDocument) ExerciseCount() int {
	count := 0
	for _, split := range p.Splits {
		count += len(split.Exercises)
	}
	return count
}

// CompletedCount returns the number of exercises marked completed.
func (p *PlanDocument) CompletedCount() int {
	count := 0
	for _, split := range p.Splits {
		for _, ex := range split.Exercises {
			if ex.Completed {
				count++
			}
		}
	}
	return count
}

// CompletionPercentage derives the progress percentage from the per-exercise
// completion flags. The value is rounded to the nearest whole percent at this
// boundary; raw fractions are never stored.
func (p *PlanDocument) CompletionPercentage() int {
	total := p.ExerciseCount()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.CompletedCount()) / float64(total)))
}

// ResetCompletion clears every exercise's completion flag. Used when a
// training cycle finishes.
func (p *PlanDocument) ResetCompletion() {
	for si := range p.Splits {
		for ei := range p.Splits[si].Exercises {
			p.Splits[si].Exercises[ei].Completed = false
		}
	}
}
