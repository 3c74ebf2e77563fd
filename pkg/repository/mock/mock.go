package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

// Store is an in-memory implementation of every repository interface for
// handler tests. The *Err fields force the matching operation to fail.
type Store struct {
	mu sync.Mutex

	Users     map[int64]*models.User
	Profiles  map[int64]*models.Profile // keyed by user id
	Questions map[int64]*models.Question
	Choices   map[int64]*models.Choice

	CreateUserErr     error
	CreateProfileErr  error
	CreateQuestionErr error
	CreateChoiceErr   error
	UpdateProfileErr  error
	ListQuestionsErr  error

	// Calls counts mutating calls by method name.
	Calls map[string]int

	nextID int64
	clock  int64
}

var _ repository.UserRepo = (*Store)(nil)
var _ repository.ProfileRepo = (*Store)(nil)
var _ repository.QuestionRepo = (*Store)(nil)
var _ repository.ChoiceRepo = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		Users:     map[int64]*models.User{},
		Profiles:  map[int64]*models.Profile{},
		Questions: map[int64]*models.Question{},
		Choices:   map[int64]*models.Choice{},
		Calls:     map[string]int{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (s *Store) tick() int64 {
	s.clock++
	return s.clock
}

// Mutations returns the number of create/update calls recorded.
func (s *Store) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.Calls {
		total += n
	}
	return total
}

// AddUser stores u directly and returns it with an id assigned.
func (s *Store) AddUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	u.Created = s.tick()
	s.Users[u.ID] = &u
	cp := u
	return &cp
}

// AddQuestion stores q directly and returns it with an id assigned.
func (s *Store) AddQuestion(q models.Question) *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	q.Created = s.tick()
	s.Questions[q.ID] = &q
	cp := q
	return &cp
}

// AddChoice stores c directly and returns it with an id assigned.
func (s *Store) AddChoice(c models.Choice) *models.Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.Created = s.tick()
	s.Choices[c.ID] = &c
	cp := c
	return &cp
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["CreateUser"]++
	if s.CreateUserErr != nil {
		return 0, s.CreateUserErr
	}
	for _, existing := range s.Users {
		if existing.Username == u.Username {
			return 0, fmt.Errorf("create user %q: %w", u.Username, repository.ErrDuplicateUsername)
		}
	}
	u.ID = s.id()
	u.Created = s.tick()
	u.Updated = u.Created
	cp := *u
	s.Users[u.ID] = &cp
	return u.ID, nil
}

func (s *Store) CreateUserWithProfile(ctx context.Context, u *models.User, profile models.Profile) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["CreateUser"]++
	if s.CreateUserErr != nil {
		return 0, s.CreateUserErr
	}
	for _, existing := range s.Users {
		if existing.Username == u.Username {
			return 0, fmt.Errorf("create user %q: %w", u.Username, repository.ErrDuplicateUsername)
		}
	}
	if s.CreateProfileErr != nil {
		return 0, s.CreateProfileErr
	}

	u.ID = s.id()
	u.Created = s.tick()
	u.Updated = u.Created
	cp := *u
	s.Users[u.ID] = &cp

	s.Calls["CreateProfile"]++
	p := profile
	p.ID = s.id()
	p.UserID = u.ID
	p.Updated = u.Created
	s.Profiles[u.ID] = &p
	return u.ID, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) SetStaff(ctx context.Context, id int64, staff bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["SetStaff"]++
	u, ok := s.Users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	u.IsStaff = staff
	return nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetOrCreateProfile(ctx context.Context, userID int64, defaults models.Profile) (*models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Profiles[userID]; ok {
		cp := *p
		return &cp, false, nil
	}
	s.Calls["CreateProfile"]++
	p := defaults
	p.ID = s.id()
	p.UserID = userID
	p.Updated = s.tick()
	s.Profiles[userID] = &p
	cp := p
	return &cp, true, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["UpdateProfile"]++
	if s.UpdateProfileErr != nil {
		return s.UpdateProfileErr
	}
	cp := *p
	cp.Updated = s.tick()
	s.Profiles[p.UserID] = &cp
	return nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["CreateQuestion"]++
	if s.CreateQuestionErr != nil {
		return 0, s.CreateQuestionErr
	}
	q.ID = s.id()
	q.Created = s.tick()
	q.Updated = q.Created
	cp := *q
	s.Questions[q.ID] = &cp
	return q.ID, nil
}

func (s *Store) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.Questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListQuestionsErr != nil {
		return nil, s.ListQuestionsErr
	}
	out := make([]models.Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CreateChoice(ctx context.Context, c *models.Choice) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["CreateChoice"]++
	if s.CreateChoiceErr != nil {
		return 0, s.CreateChoiceErr
	}
	if _, ok := s.Questions[c.QuestionID]; !ok {
		return 0, fmt.Errorf("question %d: foreign key constraint failed", c.QuestionID)
	}
	c.ID = s.id()
	c.Created = s.tick()
	c.Updated = c.Created
	cp := *c
	s.Choices[c.ID] = &cp
	return c.ID, nil
}

func (s *Store) ListChoicesByQuestion(ctx context.Context, questionID int64) ([]models.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Choice
	for _, c := range s.Choices {
		if c.QuestionID == questionID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created < out[j].Created
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
