// Package reports computes the grouped aggregates behind the leaderboard,
// teacher reports and admin activity. Every function is a pure fold over
// projection rows; callers reload the rows on every request.
package reports

import (
	"math"
	"sort"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// LeaderboardSize is how many students the leaderboard shows.
const LeaderboardSize = 20

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Student  string  `json:"student"`
	Total    int     `json:"total"`
	Attempts int     `json:"attempts"`
	Average  float64 `json:"average"`
}

type StudentSummary struct {
	Student  string   `json:"student"`
	Attempts int      `json:"attempts"`
	Total    int      `json:"total"`
	Average  *float64 `json:"average"`
}

type QuestionSummary struct {
	QuestionID uint     `json:"question_id"`
	Attempts   int      `json:"attempts"`
	Average    *float64 `json:"average"`
}

type AuthorSummary struct {
	Author    *string `json:"author"`
	Questions int     `json:"questions"`
}

type Activity struct {
	QuestionCount   int64            `json:"question_count"`
	SubmissionCount int64            `json:"submission_count"`
	ByAuthor        []AuthorSummary  `json:"questions_by_author"`
	ByStudent       []StudentSummary `json:"submissions_by_student"`
}

// scored reports whether a row contributes to score sums and averages.
func scored(r models.SubmissionRecord) (int, bool) {
	if !r.Graded || r.Score == nil {
		return 0, false
	}
	return *r.Score, true
}

type tally struct {
	attempts int
	scored   int
	total    int
}

func (t *tally) add(r models.SubmissionRecord) {
	t.attempts++
	if score, ok := scored(r); ok {
		t.scored++
		t.total += score
	}
}

func (t tally) average() *float64 {
	if t.scored == 0 {
		return nil
	}
	avg := round2(float64(t.total) / float64(t.scored))
	return &avg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func groupByStudent(rows []models.SubmissionRecord, include func(models.SubmissionRecord) bool) map[string]*tally {
	groups := make(map[string]*tally)
	for _, r := range rows {
		if !include(r) {
			continue
		}
		t, ok := groups[r.StudentUsername]
		if !ok {
			t = &tally{}
			groups[r.StudentUsername] = t
		}
		t.add(r)
	}
	return groups
}

// Leaderboard ranks students by the sum of their graded scores. Ungraded rows
// never contribute. Ties on total are broken by username ascending.
func Leaderboard(rows []models.SubmissionRecord) []LeaderboardEntry {
	groups := groupByStudent(rows, func(r models.SubmissionRecord) bool { return r.Graded })

	entries := make([]LeaderboardEntry, 0, len(groups))
	for student, t := range groups {
		entry := LeaderboardEntry{Student: student, Total: t.total, Attempts: t.attempts}
		if avg := t.average(); avg != nil {
			entry.Average = *avg
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Student < entries[j].Student
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func studentSummaries(groups map[string]*tally) []StudentSummary {
	out := make([]StudentSummary, 0, len(groups))
	for student, t := range groups {
		out = append(out, StudentSummary{
			Student:  student,
			Attempts: t.attempts,
			Total:    t.total,
			Average:  t.average(),
		})
	}
	return out
}

// ByStudent groups every submission by student. Attempts count all rows;
// total and average only use graded scores. Sorted by total descending.
func ByStudent(rows []models.SubmissionRecord) []StudentSummary {
	out := studentSummaries(groupByStudent(rows, func(models.SubmissionRecord) bool { return true }))
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Student < out[j].Student
	})
	return out
}

// ByQuestion groups every submission by question, most attempted first.
func ByQuestion(rows []models.SubmissionRecord) []QuestionSummary {
	groups := make(map[uint]*tally)
	for _, r := range rows {
		t, ok := groups[r.QuestionID]
		if !ok {
			t = &tally{}
			groups[r.QuestionID] = t
		}
		t.add(r)
	}

	out := make([]QuestionSummary, 0, len(groups))
	for id, t := range groups {
		out = append(out, QuestionSummary{QuestionID: id, Attempts: t.attempts, Average: t.average()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out
}

// ByAuthor counts questions per author username. Questions whose author was
// removed are grouped under a nil author, listed after named authors on ties.
func ByAuthor(authorships []models.QuestionAuthorship) []AuthorSummary {
	counts := make(map[string]int)
	orphans := 0
	for _, a := range authorships {
		if a.AuthorUsername == nil {
			orphans++
			continue
		}
		counts[*a.AuthorUsername]++
	}

	out := make([]AuthorSummary, 0, len(counts)+1)
	for name, n := range counts {
		name := name
		out = append(out, AuthorSummary{Author: &name, Questions: n})
	}
	if orphans > 0 {
		out = append(out, AuthorSummary{Questions: orphans})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Questions != out[j].Questions {
			return out[i].Questions > out[j].Questions
		}
		if out[i].Author == nil || out[j].Author == nil {
			return out[j].Author == nil && out[i].Author != nil
		}
		return *out[i].Author < *out[j].Author
	})
	return out
}

// AdminActivity assembles the admin overview. Submission groups are ordered by
// submission count descending.
func AdminActivity(questionCount, submissionCount int64, authorships []models.QuestionAuthorship, rows []models.SubmissionRecord) Activity {
	byStudent := studentSummaries(groupByStudent(rows, func(models.SubmissionRecord) bool { return true }))
	sort.Slice(byStudent, func(i, j int) bool {
		if byStudent[i].Attempts != byStudent[j].Attempts {
			return byStudent[i].Attempts > byStudent[j].Attempts
		}
		return byStudent[i].Student < byStudent[j].Student
	})

	return Activity{
		QuestionCount:   questionCount,
		SubmissionCount: submissionCount,
		ByAuthor:        ByAuthor(authorships),
		ByStudent:       byStudent,
	}
}
