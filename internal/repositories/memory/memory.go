// Package memory is an in-process Repository used by service and handler tests.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

type store struct {
	mu sync.RWMutex

	nextAccount    uint
	nextQuestion   uint
	nextSubmission uint

	accounts    map[uint]models.Account
	questions   map[uint]models.Question
	submissions map[uint]models.Submission

	now func() time.Time
}

// Repository implements repositories.Repository over maps.
type Repository struct {
	s *store
}

func New() *Repository {
	return &Repository{s: &store{
		accounts:    map[uint]models.Account{},
		questions:   map[uint]models.Question{},
		submissions: map[uint]models.Submission{},
		now:         time.Now,
	}}
}

// SetClock overrides the timestamp source used for created/submitted times.
func (r *Repository) SetClock(now func() time.Time) {
	r.s.mu.Lock()
	r.s.now = now
	r.s.mu.Unlock()
}

func (r *Repository) Account() repositories.AccountRepository       { return accountRepo{r.s} }
func (r *Repository) Question() repositories.QuestionRepository     { return questionRepo{r.s} }
func (r *Repository) Submission() repositories.SubmissionRepository { return submissionRepo{r.s} }

func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *Repository) Ping(ctx context.Context) error { return nil }
func (r *Repository) Close() error                   { return nil }

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, repositories.ErrNotFound)
}

// ===== ACCOUNTS =====

type accountRepo struct{ s *store }

func (a accountRepo) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	for _, existing := range a.s.accounts {
		if existing.Username == account.Username || strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("failed to create account: %w", repositories.ErrDuplicate)
		}
	}
	a.s.nextAccount++
	account.ID = a.s.nextAccount
	if account.Role == "" {
		account.Role = models.RoleStudent
	}
	account.DateJoined = a.s.now()
	account.UpdatedAt = account.DateJoined
	a.s.accounts[account.ID] = *account
	return nil
}

func (a accountRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	acc, ok := a.s.accounts[id]
	if !ok {
		return nil, notFound("account")
	}
	return &acc, nil
}

func (a accountRepo) find(match func(models.Account) bool) (*models.Account, bool) {
	for _, acc := range a.s.accounts {
		if match(acc) {
			acc := acc
			return &acc, true
		}
	}
	return nil, false
}

func (a accountRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	if acc, ok := a.find(func(x models.Account) bool { return x.Username == username }); ok {
		return acc, nil
	}
	return nil, notFound("account")
}

func (a accountRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	if acc, ok := a.find(func(x models.Account) bool { return strings.EqualFold(x.Email, email) }); ok {
		return acc, nil
	}
	return nil, notFound("account")
}

func (a accountRepo) GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.Account, error) {
	if acc, err := a.GetByUsername(ctx, tx, identifier); err == nil {
		return acc, nil
	}
	return a.GetByEmail(ctx, tx, identifier)
}

func (a accountRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]*models.Account, 0, len(a.s.accounts))
	for _, acc := range a.s.accounts {
		acc := acc
		out = append(out, &acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (a accountRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	_, err := a.GetByUsername(ctx, tx, username)
	return err == nil, nil
}

func (a accountRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := a.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (a accountRepo) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	acc, ok := a.s.accounts[id]
	if !ok {
		return notFound("account")
	}
	acc.IsActive = active
	a.s.accounts[id] = acc
	return nil
}

func (a accountRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	acc, ok := a.s.accounts[id]
	if !ok {
		return notFound("account")
	}
	acc.LastLoginAt = &at
	a.s.accounts[id] = acc
	return nil
}

// Delete mirrors the foreign keys: submissions cascade, authored questions lose their author.
func (a accountRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.accounts[id]; !ok {
		return notFound("account")
	}
	delete(a.s.accounts, id)

	for sid, sub := range a.s.submissions {
		if sub.StudentID == id {
			delete(a.s.submissions, sid)
			continue
		}
		if sub.GradedByID != nil && *sub.GradedByID == id {
			sub.GradedByID = nil
			a.s.submissions[sid] = sub
		}
	}
	for qid, q := range a.s.questions {
		if q.AuthorID != nil && *q.AuthorID == id {
			q.AuthorID = nil
			a.s.questions[qid] = q
		}
	}
	return nil
}

// ===== QUESTIONS =====

type questionRepo struct{ s *store }

func (q questionRepo) withAuthor(question models.Question) *models.Question {
	if question.AuthorID != nil {
		if acc, ok := q.s.accounts[*question.AuthorID]; ok {
			question.SetAuthor(&acc)
		}
	}
	return &question
}

func (q questionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	q.s.nextQuestion++
	question.ID = q.s.nextQuestion
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyEasy
	}
	question.CreatedAt = q.s.now()
	question.UpdatedAt = question.CreatedAt
	stored := *question
	stored.SetAuthor(nil)
	q.s.questions[question.ID] = stored
	return nil
}

func (q questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	question, ok := q.s.questions[id]
	if !ok {
		return nil, notFound("question")
	}
	return q.withAuthor(question), nil
}

func (q questionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.questions[question.ID]
	if !ok {
		return notFound("question")
	}
	existing.Text = question.Text
	existing.Subject = question.Subject
	existing.Topic = question.Topic
	existing.Difficulty = question.Difficulty
	existing.UpdatedAt = q.s.now()
	q.s.questions[question.ID] = existing
	question.UpdatedAt = existing.UpdatedAt
	return nil
}

func (q questionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if _, ok := q.s.questions[id]; !ok {
		return notFound("question")
	}
	delete(q.s.questions, id)
	for sid, sub := range q.s.submissions {
		if sub.QuestionID == id {
			delete(q.s.submissions, sid)
		}
	}
	return nil
}

func (q questionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	subject := strings.TrimSpace(filters.Subject)
	topic := strings.TrimSpace(filters.Topic)
	difficulty := strings.ToLower(strings.TrimSpace(filters.Difficulty))
	text := strings.ToLower(strings.TrimSpace(filters.Query))

	var out []*models.Question
	for _, question := range q.s.questions {
		switch {
		case subject != "" && !strings.EqualFold(question.Subject, subject):
			continue
		case topic != "" && !strings.EqualFold(question.Topic, topic):
			continue
		case difficulty != "" && string(question.Difficulty) != difficulty:
			continue
		case text != "" && !strings.Contains(strings.ToLower(question.Text), text):
			continue
		case filters.AuthorID != nil && (question.AuthorID == nil || *question.AuthorID != *filters.AuthorID):
			continue
		}
		out = append(out, q.withAuthor(question))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (q questionRepo) GetRandom(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Question, error) {
	all, _ := q.List(ctx, tx, repositories.QuestionFilters{})
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (q questionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	return int64(len(q.s.questions)), nil
}

func (q questionRepo) ListAuthorships(ctx context.Context, tx *gorm.DB) ([]models.QuestionAuthorship, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	out := make([]models.QuestionAuthorship, 0, len(q.s.questions))
	for _, question := range q.s.questions {
		row := models.QuestionAuthorship{QuestionID: question.ID}
		if question.AuthorID != nil {
			if acc, ok := q.s.accounts[*question.AuthorID]; ok {
				name := acc.Username
				row.AuthorUsername = &name
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

// ===== SUBMISSIONS =====

type submissionRepo struct{ s *store }

func (r submissionRepo) hydrate(sub models.Submission) *models.Submission {
	if question, ok := r.s.questions[sub.QuestionID]; ok {
		sub.Question = &question
	}
	if student, ok := r.s.accounts[sub.StudentID]; ok {
		sub.Student = &student
	}
	return &sub
}

func (r submissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.questions[submission.QuestionID]; !ok {
		return fmt.Errorf("failed to create submission: unknown question %d", submission.QuestionID)
	}
	if _, ok := r.s.accounts[submission.StudentID]; !ok {
		return fmt.Errorf("failed to create submission: unknown student %d", submission.StudentID)
	}
	r.s.nextSubmission++
	submission.ID = r.s.nextSubmission
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = r.s.now()
	}
	stored := *submission
	stored.Question, stored.Student, stored.GradedBy = nil, nil, nil
	r.s.submissions[submission.ID] = stored
	return nil
}

func (r submissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, notFound("submission")
	}
	return r.hydrate(sub), nil
}

func (r submissionRepo) SaveGrade(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.submissions[submission.ID]
	if !ok {
		return notFound("submission")
	}
	existing.Graded = submission.Graded
	existing.Score = submission.Score
	existing.Feedback = submission.Feedback
	existing.GradedAt = submission.GradedAt
	existing.GradedByID = submission.GradedByID
	r.s.submissions[submission.ID] = existing
	return nil
}

func (r submissionRepo) sorted() []models.Submission {
	out := make([]models.Submission, 0, len(r.s.submissions))
	for _, sub := range r.s.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r submissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.sorted()
	var out []*models.Submission
	for i := len(all) - 1; i >= 0; i-- {
		sub := all[i]
		switch {
		case filters.StudentID != nil && sub.StudentID != *filters.StudentID:
			continue
		case filters.QuestionID != nil && sub.QuestionID != *filters.QuestionID:
			continue
		case filters.Graded != nil && sub.Graded != *filters.Graded:
			continue
		}
		out = append(out, r.hydrate(sub))
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

func (r submissionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.submissions)), nil
}

func (r submissionRepo) Records(ctx context.Context, tx *gorm.DB, filters repositories.RecordFilters) ([]models.SubmissionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.SubmissionRecord
	for _, sub := range r.sorted() {
		if filters.GradedOnly && !sub.Graded {
			continue
		}
		student, ok := r.s.accounts[sub.StudentID]
		if !ok {
			continue
		}
		out = append(out, models.SubmissionRecord{
			SubmissionID:    sub.ID,
			QuestionID:      sub.QuestionID,
			StudentID:       sub.StudentID,
			StudentUsername: student.Username,
			Graded:          sub.Graded,
			Score:           sub.Score,
			SubmittedAt:     sub.SubmittedAt,
		})
	}
	return out, nil
}
