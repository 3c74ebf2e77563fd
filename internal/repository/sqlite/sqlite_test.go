package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dbfs "github.com/garnizeh/staffboard/db"
	dbpkg "github.com/garnizeh/staffboard/internal/db"
	sqlite "github.com/garnizeh/staffboard/internal/repository/sqlite"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, *dbpkg.DB) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file:"+t.Name()+"?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d, nil), d
}

func createUser(t *testing.T, repo *sqlite.SQLiteRepo, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "hash"}
	if _, err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestUserCRUD(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	got, err := repo.GetUserByID(ctx, 9999)
	if err != nil {
		t.Fatalf("expected no error when getting non-existing ID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil when getting non-existing ID got: %#v", got)
	}

	got, err = repo.GetUserByUsername(ctx, "nobody")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for unknown username, got %#v, %v", got, err)
	}

	u := &models.User{Username: "alice", FirstName: "Alice", PasswordHash: "hash"}
	id, err := repo.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if id == 0 || u.ID != id || u.Created == 0 {
		t.Fatalf("expected id and timestamps populated, got %#v", u)
	}

	got, err = repo.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got == nil || got.Username != "alice" || got.FirstName != "Alice" || got.IsStaff {
		t.Fatalf("GetUserByID wrong result: %#v", got)
	}

	byName, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername error: %v", err)
	}
	if byName == nil || byName.ID != id {
		t.Fatalf("GetUserByUsername wrong result: %#v", byName)
	}

	if err := repo.SetStaff(ctx, id, true); err != nil {
		t.Fatalf("SetStaff error: %v", err)
	}
	got, _ = repo.GetUserByID(ctx, id)
	if !got.IsStaff {
		t.Fatalf("expected staff flag after SetStaff")
	}
	if err := repo.SetStaff(ctx, 9999, true); err == nil {
		t.Fatalf("expected error for SetStaff on unknown user")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	createUser(t, repo, "bob")
	_, err := repo.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "x"})
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestProfile_GetOrCreate(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	u := createUser(t, repo, "carol")

	p, err := repo.GetProfileByUserID(ctx, u.ID)
	if err != nil || p != nil {
		t.Fatalf("expected no profile yet, got %#v, %v", p, err)
	}

	p, created, err := repo.GetOrCreateProfile(ctx, u.ID, models.Profile{Designation: "", Salary: 0})
	if err != nil {
		t.Fatalf("GetOrCreateProfile: %v", err)
	}
	if !created || p.UserID != u.ID || p.Designation != "" || p.Salary != 0 {
		t.Fatalf("unexpected first result created=%v profile=%#v", created, p)
	}

	p.Designation = "Engineer"
	p.Salary = 500
	if err := repo.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := repo.UpdateProfile(ctx, nil); err == nil {
		t.Fatalf("expected error updating nil profile")
	}

	again, created, err := repo.GetOrCreateProfile(ctx, u.ID, models.Profile{Designation: "ignored", Salary: 1})
	if err != nil {
		t.Fatalf("second GetOrCreateProfile: %v", err)
	}
	if created || again.ID != p.ID || again.Designation != "Engineer" || again.Salary != 500 {
		t.Fatalf("expected existing profile untouched, got created=%v %#v", created, again)
	}
}

func TestProfile_GetOrCreateConcurrent(t *testing.T) {
	repo, d := setupRepo(t)
	ctx := context.Background()
	u := createUser(t, repo, "dave")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.GetOrCreateProfile(ctx, u.ID, models.Profile{}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent GetOrCreateProfile: %v", err)
	}

	var n int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM profiles WHERE user_id = ?`, u.ID).Scan(&n); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one profile, got %d", n)
	}
}

func TestProfile_UnknownUser(t *testing.T) {
	repo, _ := setupRepo(t)
	if _, _, err := repo.GetOrCreateProfile(context.Background(), 4242, models.Profile{}); err == nil {
		t.Fatalf("expected foreign key error for unknown user")
	}
}

func TestQuestionsAndChoices(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	staff := createUser(t, repo, "staff")

	if _, err := repo.CreateQuestion(ctx, nil); err == nil {
		t.Fatalf("expected error for nil question")
	}

	q1 := &models.Question{Title: "First", CreateUserID: staff.ID}
	if _, err := repo.CreateQuestion(ctx, q1); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	q2 := &models.Question{Title: "Second", IsActive: true, StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31), CreateUserID: staff.ID}
	if _, err := repo.CreateQuestion(ctx, q2); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	got, err := repo.GetQuestionByID(ctx, q2.ID)
	if err != nil || got == nil {
		t.Fatalf("GetQuestionByID: %#v, %v", got, err)
	}
	if !got.IsActive || got.StartDate == nil || !got.StartDate.Equal(*q2.StartDate) || !got.EndDate.Equal(*q2.EndDate) {
		t.Fatalf("dates or flag not round-tripped: %#v", got)
	}

	missing, err := repo.GetQuestionByID(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown question, got %#v, %v", missing, err)
	}

	list, err := repo.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(list) != 2 || list[0].ID != q2.ID || list[1].ID != q1.ID {
		t.Fatalf("expected newest first, got %#v", list)
	}
	if list[1].StartDate != nil || list[1].EndDate != nil {
		t.Fatalf("expected nil dates for first question")
	}

	for _, text := range []string{"Yes", "No", "Maybe"} {
		if _, err := repo.CreateChoice(ctx, &models.Choice{QuestionID: q2.ID, Text: text}); err != nil {
			t.Fatalf("CreateChoice: %v", err)
		}
	}
	if _, err := repo.CreateChoice(ctx, &models.Choice{QuestionID: q1.ID, Text: "Other"}); err != nil {
		t.Fatalf("CreateChoice: %v", err)
	}
	if _, err := repo.CreateChoice(ctx, &models.Choice{QuestionID: 9999, Text: "Orphan"}); err == nil {
		t.Fatalf("expected foreign key error for unknown question")
	}
	if _, err := repo.CreateChoice(ctx, nil); err == nil {
		t.Fatalf("expected error for nil choice")
	}

	choices, err := repo.ListChoicesByQuestion(ctx, q2.ID)
	if err != nil {
		t.Fatalf("ListChoicesByQuestion: %v", err)
	}
	if len(choices) != 3 || choices[0].Text != "Yes" || choices[2].Text != "Maybe" {
		t.Fatalf("expected oldest first and scoped to question, got %#v", choices)
	}
}

func TestCreateUserWithProfile(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	u := &models.User{Username: "erin", PasswordHash: "hash"}
	id, err := repo.CreateUserWithProfile(ctx, u, models.Profile{})
	if err != nil {
		t.Fatalf("CreateUserWithProfile: %v", err)
	}
	if u.ID != id || id == 0 {
		t.Fatalf("expected id to be set on user, got %d / %d", u.ID, id)
	}

	p, err := repo.GetProfileByUserID(ctx, id)
	if err != nil || p == nil {
		t.Fatalf("expected profile, got %v, %v", p, err)
	}
	if p.Designation != "" || p.Salary != 0 {
		t.Fatalf("expected blank profile, got %+v", p)
	}

	_, err = repo.CreateUserWithProfile(ctx, &models.User{Username: "erin", PasswordHash: "x"}, models.Profile{})
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateUserWithProfile_RollsBack(t *testing.T) {
	repo, d := setupRepo(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, `CREATE TRIGGER reject_profiles BEFORE INSERT ON profiles BEGIN SELECT RAISE(ABORT, 'profiles disabled'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := repo.CreateUserWithProfile(ctx, &models.User{Username: "frank", PasswordHash: "hash"}, models.Profile{}); err == nil {
		t.Fatalf("expected profile insert to fail")
	}

	u, err := repo.GetUserByUsername(ctx, "frank")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u != nil {
		t.Fatalf("user must not survive a failed profile insert, got %+v", u)
	}
}
