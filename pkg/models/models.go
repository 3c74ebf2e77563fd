package models

import "time"

// Domain models matching the database schema in db/migrations/0001_init.sql

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	IsStaff      bool   `json:"is_staff" db:"is_staff"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

// DisplayName prefers the first name, the way profile pages greet users.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type Profile struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"user_id" db:"user_id"`
	Designation string `json:"designation" db:"designation"`
	Salary      int64  `json:"salary" db:"salary"`
	Updated     int64  `json:"updated" db:"updated"`
}

// Question is a poll question. StartDate and EndDate carry calendar days only.
type Question struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	StartDate    *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreateUserID int64      `json:"create_user_id" db:"create_user_id"`
	Created      int64      `json:"created" db:"created"`
	Updated      int64      `json:"updated" db:"updated"`
}

type Choice struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"question_id" db:"question_id"`
	Text       string `json:"text" db:"text"`
	Created    int64  `json:"created" db:"created"`
	Updated    int64  `json:"updated" db:"updated"`
}

// Message levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Message is a flash notice shown once on the next rendered page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func Success(text string) Message { return Message{Level: LevelSuccess, Text: text} }

func Error(text string) Message { return Message{Level: LevelError, Text: text} }

// DateLayout is the wire and storage format of question dates.
const DateLayout = "2006-01-02"
