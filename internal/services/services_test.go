package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/database"
	"github.com/isdelr/circuitgen-be/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	svc, err := NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewUserService() error: %v", err)
	}
	return svc
}

func TestUserService_RegisterOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t, setupTestDB(t))

	user, err := svc.CreateUser(ctx, "  Maker@Example.com ", "solder-fumes")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if user.ID == 0 || user.Email != "maker@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
	if user.HashedPassword != "" {
		t.Error("hash must not leave the service")
	}

	_, err = svc.CreateUser(ctx, "maker@example.com", "another-one")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second registration error = %v, want ErrConflict", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t, setupTestDB(t))
	created, err := svc.CreateUser(ctx, "a@b.io", "correct-horse")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "a@b.io", "correct-horse", nil},
		{"case insensitive email", "A@B.IO", "correct-horse", nil},
		{"wrong password", "a@b.io", "battery-staple", ErrInvalidCredentials},
		{"unknown email", "nobody@b.io", "correct-horse", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.AuthenticateUser(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != created.ID {
				t.Errorf("got user %d, want %d", user.ID, created.ID)
			}
		})
	}
}

func TestUserService_GetUserByID(t *testing.T) {
	ctx := context.Background()
	svc := newTestUserService(t, setupTestDB(t))
	created, _ := svc.CreateUser(ctx, "x@y.dev", "password1")

	got, err := svc.GetUserByID(ctx, created.ID)
	if err != nil || got.Email != "x@y.dev" {
		t.Fatalf("GetUserByID() = %+v, %v", got, err)
	}
	if _, err := svc.GetUserByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestUserService_DeleteDetachesCircuits(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := newTestUserService(t, db)
	circuits := NewCircuitService(db, nil)

	user, _ := users.CreateUser(ctx, "gone@soon.io", "password1")
	saved, err := circuits.SaveCircuit(ctx, models.UserOwner(user.ID), SaveCircuitInput{
		Query:       "blink",
		DiagramData: []byte(`{"nodes":[]}`),
	})
	if err != nil {
		t.Fatalf("SaveCircuit() error: %v", err)
	}

	if err := users.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if err := users.DeleteUser(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	got, err := circuits.GetCircuitByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("share link stopped resolving: %v", err)
	}
	if !got.Owner().IsAnonymous() {
		t.Errorf("owner = %v, want anonymous", got.Owner())
	}
}

func TestCircuitService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewCircuitService(setupTestDB(t), nil)

	in := SaveCircuitInput{
		Query:       "HC-SR04 with Arduino",
		DiagramData: []byte(`{"nodes":[{"id":"mcu"}],"connections":[],"explanation":"x"}`),
		Code:        "void loop() {}",
		BOM:         []byte(`[{"component":"HC-SR04","quantity":1}]`),
	}
	saved, err := svc.SaveCircuit(ctx, models.UserOwner(1), in)
	if err != nil {
		t.Fatalf("SaveCircuit() error: %v", err)
	}
	if len(saved.ID) != 8 {
		t.Errorf("id %q should be 8 characters", saved.ID)
	}

	got, err := svc.GetCircuitByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetCircuitByID() error: %v", err)
	}
	if got.Query != in.Query || got.Code != in.Code ||
		string(got.DiagramData) != string(in.DiagramData) || string(got.BOM) != string(in.BOM) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := svc.GetCircuitByID(ctx, "missing1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing circuit error = %v, want ErrNotFound", err)
	}
}

func TestCircuitService_DefaultBOM(t *testing.T) {
	svc := NewCircuitService(setupTestDB(t), nil)
	saved, err := svc.SaveCircuit(context.Background(), models.Anonymous(), SaveCircuitInput{
		Query:       "q",
		DiagramData: []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("SaveCircuit() error: %v", err)
	}
	if string(saved.BOM) != "[]" {
		t.Errorf("BOM = %s, want []", saved.BOM)
	}
}

func TestCircuitService_RecentScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewCircuitService(setupTestDB(t), nil)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id%06d", seq)
	}

	save := func(owner models.Owner, query string) {
		t.Helper()
		if _, err := svc.SaveCircuit(ctx, owner, SaveCircuitInput{Query: query, DiagramData: []byte(`{}`)}); err != nil {
			t.Fatalf("SaveCircuit() error: %v", err)
		}
	}
	save(models.UserOwner(1), "alice-1")
	save(models.UserOwner(2), "bob-1")
	save(models.UserOwner(1), "alice-2")
	save(models.Anonymous(), "anon-1")
	save(models.UserOwner(1), "alice-3")

	tests := []struct {
		name  string
		owner models.Owner
		limit int
		want  []string
	}{
		{"user newest first", models.UserOwner(1), 10, []string{"alice-3", "alice-2", "alice-1"}},
		{"limit", models.UserOwner(1), 2, []string{"alice-3", "alice-2"}},
		{"default limit", models.UserOwner(2), 0, []string{"bob-1"}},
		{"anonymous", models.Anonymous(), 10, []string{"anon-1"}},
		{"stranger", models.UserOwner(3), 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetRecentCircuits(ctx, tt.owner, tt.limit)
			if err != nil {
				t.Fatalf("GetRecentCircuits() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, s := range got {
				if s.Query != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, s.Query, tt.want[i])
				}
				if s.CreatedAt.IsZero() {
					t.Errorf("row %d has zero created_at", i)
				}
			}
		})
	}
}

type recordingCache struct {
	entries map[string]models.Circuit
	gets    int
}

func (c *recordingCache) Get(_ context.Context, id string) (models.Circuit, bool) {
	c.gets++
	circuit, ok := c.entries[id]
	return circuit, ok
}

func (c *recordingCache) Set(_ context.Context, circuit models.Circuit) {
	c.entries[circuit.ID] = circuit
}

func TestCircuitService_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	rc := &recordingCache{entries: map[string]models.Circuit{}}
	svc := NewCircuitService(setupTestDB(t), rc)

	saved, err := svc.SaveCircuit(ctx, models.Anonymous(), SaveCircuitInput{Query: "q", DiagramData: []byte(`{}`)})
	if err != nil {
		t.Fatalf("SaveCircuit() error: %v", err)
	}
	if _, ok := rc.entries[saved.ID]; !ok {
		t.Fatal("save should populate the cache")
	}

	// A cached entry is served without touching the database.
	rc.entries["cachedid"] = models.Circuit{ID: "cachedid", Query: "from cache"}
	got, err := svc.GetCircuitByID(ctx, "cachedid")
	if err != nil || got.Query != "from cache" {
		t.Errorf("GetCircuitByID() = %+v, %v", got, err)
	}
}

func TestComponentService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewComponentService(setupTestDB(t))

	guide := "VCC to 5V"
	servo, err := svc.CreateComponent(ctx, ComponentInput{
		Name: "Servo", Description: "SG90", Category: "Actuator",
		WiringGuide: &guide, ImageURL: []byte(`"https://img/servo.png"`),
	})
	if err != nil {
		t.Fatalf("CreateComponent() error: %v", err)
	}
	if _, err := svc.CreateComponent(ctx, ComponentInput{Name: "Arduino Uno", Description: "MCU", Category: "Controller"}); err != nil {
		t.Fatalf("CreateComponent() error: %v", err)
	}

	_, err = svc.CreateComponent(ctx, ComponentInput{Name: "Servo", Description: "dup", Category: "Actuator"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate name error = %v, want ErrConflict", err)
	}

	list, err := svc.ListComponents(ctx)
	if err != nil {
		t.Fatalf("ListComponents() error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Arduino Uno" || list[1].Name != "Servo" {
		t.Errorf("list not ordered by name: %+v", list)
	}

	updated, err := svc.UpdateComponent(ctx, servo.ID, ComponentInput{
		Name: "Servo", Description: "MG996R", Category: "Actuator",
		ImageURL: []byte(`["a.png","b.png"]`),
	})
	if err != nil {
		t.Fatalf("UpdateComponent() error: %v", err)
	}
	if updated.Description != "MG996R" || updated.WiringGuide != nil || string(updated.ImageURL) != `["a.png","b.png"]` {
		t.Errorf("unexpected update result %+v", updated)
	}
	if !updated.CreatedAt.Equal(servo.CreatedAt) {
		t.Error("update must not touch created_at")
	}

	if _, err := svc.UpdateComponent(ctx, 999, ComponentInput{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteComponent(ctx, servo.ID); err != nil {
		t.Fatalf("DeleteComponent() error: %v", err)
	}
	if err := svc.DeleteComponent(ctx, servo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetComponent(ctx, servo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted error = %v, want ErrNotFound", err)
	}
}

func TestCourseService_OrderedByWeek(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(setupTestDB(t))

	week := func(n int) *int { return &n }
	for _, in := range []CourseInput{
		{Title: "Unscheduled"},
		{Title: "Neural nets", Week: week(3)},
		{Title: "Intro", Week: week(1)},
		{Title: "Data", Week: week(2)},
	} {
		if _, err := svc.CreateCourse(ctx, in); err != nil {
			t.Fatalf("CreateCourse(%q) error: %v", in.Title, err)
		}
	}

	list, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses() error: %v", err)
	}
	want := []string{"Intro", "Data", "Neural nets", "Unscheduled"}
	for i, c := range list {
		if c.Title != want[i] {
			t.Errorf("position %d = %q, want %q", i, c.Title, want[i])
		}
	}

	desc := "basics"
	updated, err := svc.UpdateCourse(ctx, list[3].ID, CourseInput{Title: "Capstone", Week: week(4), Description: &desc})
	if err != nil {
		t.Fatalf("UpdateCourse() error: %v", err)
	}
	if updated.Title != "Capstone" || *updated.Week != 4 {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := svc.DeleteCourse(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing error = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateCourse(ctx, 999, CourseInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
}

func TestNewUserService_InvalidCost(t *testing.T) {
	if _, err := NewUserService(setupTestDB(t), auth.NewPasswordHasher(bcrypt.MaxCost+1)); err == nil {
		t.Error("expected error for out-of-range bcrypt cost")
	}
}
