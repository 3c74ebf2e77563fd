package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/staffboard/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Single-row reads return (nil, nil) when the row does not exist.

// ErrDuplicateUsername is returned by CreateUser when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	// CreateUserWithProfile inserts the user and its profile atomically: on
	// any error neither row exists.
	CreateUserWithProfile(ctx context.Context, u *models.User, profile models.Profile) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetStaff(ctx context.Context, id int64, staff bool) error
}

type ProfileRepo interface {
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	// GetOrCreateProfile returns the user's profile, inserting defaults when
	// none exists. The bool reports whether a row was created.
	GetOrCreateProfile(ctx context.Context, userID int64, defaults models.Profile) (*models.Profile, bool, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
}

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	// ListQuestions returns every question, newest first.
	ListQuestions(ctx context.Context) ([]models.Question, error)
}

type ChoiceRepo interface {
	CreateChoice(ctx context.Context, c *models.Choice) (int64, error)
	// ListChoicesByQuestion returns the question's choices, oldest first.
	ListChoicesByQuestion(ctx context.Context, questionID int64) ([]models.Choice, error)
}
