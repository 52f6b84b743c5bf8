package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"
	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "api-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Service Stubs ---

type stubAuthService struct {
	registerFn       func(ctx context.Context, name, email, password string) (*domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (string, *domain.User, error)
	changePasswordFn func(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	return s.changePasswordFn(ctx, userID, currentPassword, newPassword)
}

type stubWorkoutService struct {
	createFn        func(ctx context.Context, userID primitive.ObjectID, name string, plan domain.PlanDocument, durationDays *int, expirationDate *time.Time) (*domain.WorkoutPlan, error)
	getFn           func(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error)
	listFn          func(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	updateFn        func(ctx context.Context, userID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) error
	deleteFn        func(ctx context.Context, userID, workoutID primitive.ObjectID) error
	deactivateAllFn func(ctx context.Context, userID primitive.ObjectID) error
	saveProgressFn  func(ctx context.Context, userID, workoutID primitive.ObjectID, plan domain.PlanDocument) (*domain.WorkoutPlan, error)
	finishCycleFn   func(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error)
	exportFn        func(ctx context.Context, userID, workoutID primitive.ObjectID) (*service.SnapshotResult, error)
}

func (s *stubWorkoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, name string, plan domain.PlanDocument, durationDays *int, expirationDate *time.Time) (*domain.WorkoutPlan, error) {
	return s.createFn(ctx, userID, name, plan, durationDays, expirationDate)
}

func (s *stubWorkoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	return s.getFn(ctx, userID, workoutID)
}

func (s *stubWorkoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return s.listFn(ctx, userID)
}

func (s *stubWorkoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) error {
	return s.updateFn(ctx, userID, workoutID, update)
}

func (s *stubWorkoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	return s.deleteFn(ctx, userID, workoutID)
}

func (s *stubWorkoutService) DeactivateAll(ctx context.Context, userID primitive.ObjectID) error {
	return s.deactivateAllFn(ctx, userID)
}

func (s *stubWorkoutService) SaveProgress(ctx context.Context, userID, workoutID primitive.ObjectID, plan domain.PlanDocument) (*domain.WorkoutPlan, error) {
	return s.saveProgressFn(ctx, userID, workoutID, plan)
}

func (s *stubWorkoutService) FinishCycle(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	return s.finishCycleFn(ctx, userID, workoutID)
}

func (s *stubWorkoutService) ExportSnapshot(ctx context.Context, userID, workoutID primitive.ObjectID) (*service.SnapshotResult, error) {
	return s.exportFn(ctx, userID, workoutID)
}

type stubGenerationService struct {
	generateFn func(ctx context.Context, userID primitive.ObjectID, req service.PlanRequest) (*domain.PlanDocument, error)
}

func (s *stubGenerationService) GeneratePlan(ctx context.Context, userID primitive.ObjectID, req service.PlanRequest) (*domain.PlanDocument, error) {
	return s.generateFn(ctx, userID, req)
}

type stubSettingsService struct {
	getFn    func(ctx context.Context, userID primitive.ObjectID) (*service.UserSettings, error)
	updateFn func(ctx context.Context, userID primitive.ObjectID, update service.SettingsUpdate) (*domain.User, error)
	deleteFn func(ctx context.Context, userID primitive.ObjectID) error
}

func (s *stubSettingsService) GetSettings(ctx context.Context, userID primitive.ObjectID) (*service.UserSettings, error) {
	return s.getFn(ctx, userID)
}

func (s *stubSettingsService) UpdateSettings(ctx context.Context, userID primitive.ObjectID, update service.SettingsUpdate) (*domain.User, error) {
	return s.updateFn(ctx, userID, update)
}

func (s *stubSettingsService) DeleteProviderKey(ctx context.Context, userID primitive.ObjectID) error {
	return s.deleteFn(ctx, userID)
}

// --- Router and Request Helpers ---

type testServices struct {
	auth       *stubAuthService
	workouts   *stubWorkoutService
	generation *stubGenerationService
	settings   *stubSettingsService
}

func newTestRouter() (*gin.Engine, *testServices) {
	services := &testServices{
		auth:       &stubAuthService{},
		workouts:   &stubWorkoutService{},
		generation: &stubGenerationService{},
		settings:   &stubSettingsService{},
	}
	router := gin.New()
	SetupRoutes(router, testJWTSecret, services.auth, services.workouts, services.generation, services.settings)
	return router, services
}

// signedToken issues a token the middleware accepts for the given user.
func signedToken(t *testing.T, secret string, userID primitive.ObjectID, expiresIn time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    "workout-app",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target))
}

func apiTestPlan() domain.PlanDocument {
	return domain.PlanDocument{
		Splits: []domain.Split{
			{
				Name: "Workout A",
				Exercises: []domain.Exercise{
					{Main: "Squat", Sets: "4", Reps: "6-8", Substitutions: []string{"Leg Press", "Hack Squat", "Goblet Squat"}},
					{Main: "Leg Curl", Sets: "3", Reps: "10-12", Substitutions: []string{"Romanian Deadlift", "Good Morning", "Nordic Curl"}},
				},
			},
		},
	}
}

func testWorkout(userID primitive.ObjectID) *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		ID:                   primitive.NewObjectID(),
		UserID:               userID,
		Name:                 "Test Plan",
		Plan:                 apiTestPlan(),
		CompletionPercentage: 0,
		IsActive:             true,
		CyclesCompleted:      0,
		CreatedAt:            time.Now().UTC().Truncate(time.Second),
		UpdatedAt:            time.Now().UTC().Truncate(time.Second),
	}
}
