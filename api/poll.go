package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/staffboard/internal/session"
	"github.com/garnizeh/staffboard/internal/validation"
	"github.com/garnizeh/staffboard/internal/view"
	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

// timeNow is a variable for testability.
var timeNow = time.Now

type PollHandler struct {
	questionRepo repository.QuestionRepo
	choiceRepo   repository.ChoiceRepo
	view         *view.Renderer
}

// NewPollHandler creates a new PollHandler with required dependencies.
func NewPollHandler(qr repository.QuestionRepo, cr repository.ChoiceRepo, v *view.Renderer) *PollHandler {
	return &PollHandler{questionRepo: qr, choiceRepo: cr, view: v}
}

type pollListData struct {
	Active   []models.Question
	Inactive []models.Question
}

type pollDetailData struct {
	Question models.Question
	Choices  []models.Choice
	Active   bool
}

type pollCreateData struct {
	Title     string
	IsActive  bool
	StartDate string
	EndDate   string
}

type choiceCreateData struct {
	Questions  []models.Question
	QuestionID int64
	Text       string
}

func detailURL(id int64) string {
	return fmt.Sprintf("/poll/%d/", id)
}

// List shows every question, newest first, split by whether it is active today.
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionRepo.ListQuestions(r.Context())
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("list questions: %w", err))
		return
	}

	active, inactive := validation.Partition(questions, timeNow())
	h.view.Render(w, r, "poll_list", pollListData{Active: active, Inactive: inactive})
}

// Detail shows a question with its choices and accepts a vote. Votes are
// acknowledged but not stored.
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validation.ParseID(mux.Vars(r)["pk"])
	if err != nil {
		h.view.NotFound(w, r)
		return
	}
	question, err := h.questionRepo.GetQuestionByID(ctx, id)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("get question %d: %w", id, err))
		return
	}
	if question == nil {
		h.view.NotFound(w, r)
		return
	}

	choices, err := h.choiceRepo.ListChoicesByQuestion(ctx, question.ID)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("list choices for %d: %w", question.ID, err))
		return
	}

	data := pollDetailData{
		Question: *question,
		Choices:  choices,
		Active:   validation.IsQuestionActive(*question, timeNow()),
	}

	if r.Method != http.MethodPost {
		h.view.Render(w, r, "poll_detail", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	choice, err := validation.ChoiceForQuestion(r.PostForm.Get("choice"), choices)
	if err != nil {
		h.view.Render(w, r, "poll_detail", data, models.Error("Please select a valid choice."))
		return
	}

	h.view.Redirect(w, r, detailURL(question.ID), models.Success(fmt.Sprintf("Vote submitted for: %s", choice.Text)))
}

// Create adds a question owned by the current staff user.
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.view.Render(w, r, "poll_create", pollCreateData{})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	data := pollCreateData{
		Title:     strings.TrimSpace(r.PostForm.Get("title")),
		IsActive:  r.PostForm.Get("is_active") == "on",
		StartDate: r.PostForm.Get("start_date"),
		EndDate:   r.PostForm.Get("end_date"),
	}

	if data.Title == "" {
		h.view.Render(w, r, "poll_create", data, models.Error("Title is required."))
		return
	}

	fail := func(err error) {
		h.view.Render(w, r, "poll_create", data, models.Error(fmt.Sprintf("Could not create poll: %v", err)))
	}

	start, err := validation.ParseDate(data.StartDate)
	if err != nil {
		fail(err)
		return
	}
	end, err := validation.ParseDate(data.EndDate)
	if err != nil {
		fail(err)
		return
	}

	user := session.UserFromContext(r.Context())
	question := models.Question{
		Title:        data.Title,
		IsActive:     data.IsActive,
		StartDate:    start,
		EndDate:      end,
		CreateUserID: user.ID,
	}
	id, err := h.questionRepo.CreateQuestion(r.Context(), &question)
	if err != nil {
		logger.Error("create question", slog.Any("err", err))
		fail(err)
		return
	}

	h.view.Redirect(w, r, detailURL(id), models.Success("Poll created."))
}

// ChoiceCreate adds a choice to an existing question.
func (h *PollHandler) ChoiceCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questions, err := h.questionRepo.ListQuestions(ctx)
	if err != nil {
		h.view.InternalError(w, r, fmt.Errorf("list questions: %w", err))
		return
	}
	data := choiceCreateData{Questions: questions}

	if r.Method != http.MethodPost {
		h.view.Render(w, r, "choice_create", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	rawQuestion := r.PostForm.Get("question")
	questionID, idErr := validation.ParseID(rawQuestion)
	data.QuestionID = questionID
	data.Text = strings.TrimSpace(r.PostForm.Get("text"))

	if rawQuestion == "" || data.Text == "" {
		h.view.Render(w, r, "choice_create", data, models.Error("Both question and text are required."))
		return
	}

	fail := func(err error) {
		h.view.Render(w, r, "choice_create", data, models.Error(fmt.Sprintf("Could not create choice: %v", err)))
	}

	if idErr != nil {
		fail(idErr)
		return
	}

	question, err := h.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		fail(err)
		return
	}
	if question == nil {
		h.view.Render(w, r, "choice_create", data, models.Error("Selected question does not exist."))
		return
	}

	choice := models.Choice{QuestionID: question.ID, Text: data.Text}
	if _, err := h.choiceRepo.CreateChoice(ctx, &choice); err != nil {
		logger.Error("create choice", slog.Any("err", err))
		fail(err)
		return
	}

	h.view.Redirect(w, r, detailURL(question.ID), models.Success("Choice created."))
}
