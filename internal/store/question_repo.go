package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/VVic23/civics-practice/internal/question"
)

// QuestionRepo reads and writes the question pool.
type QuestionRepo interface {
	// All returns the full pool ordered by catalog number.
	All(ctx context.Context) ([]question.Question, error)

	// Upsert inserts or replaces questions by id in a single transaction.
	Upsert(ctx context.Context, qs []question.Question) error

	// Count returns the number of stored questions.
	Count(ctx context.Context) (int, error)
}

type questionRepo struct {
	drv *entsql.Driver
}

type questionRow struct {
	ID        string `sql:"id"`
	Number    int    `sql:"number"`
	Category  string `sql:"category"`
	Prompt    string `sql:"prompt"`
	Answers   []byte `sql:"answers"`
	UpdatedAt int64  `sql:"updated_at"`
}

func (r *questionRepo) All(ctx context.Context) ([]question.Question, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "number", "category", "prompt", "answers", "updated_at").
		From(b.Table(QuestionsTable.Name)).
		OrderBy(entsql.Asc("number"), entsql.Asc("id")).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var recs []questionRow
	if err := entsql.ScanSlice(&rows, &recs); err != nil {
		return nil, fmt.Errorf("scan questions: %w", err)
	}

	out := make([]question.Question, 0, len(recs))
	for _, rec := range recs {
		var answers []string
		if err := json.Unmarshal(rec.Answers, &answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", rec.ID, err)
		}
		out = append(out, question.Question{
			ID:              rec.ID,
			Number:          rec.Number,
			Category:        rec.Category,
			Prompt:          rec.Prompt,
			AcceptedAnswers: answers,
		})
	}
	return out, nil
}

func (r *questionRepo) Upsert(ctx context.Context, qs []question.Question) error {
	if len(qs) == 0 {
		return nil
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	now := time.Now().Unix()
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			tx.Rollback()
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
		answers, err := json.Marshal(q.AcceptedAnswers)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode answers for %s: %w", q.ID, err)
		}

		query, args := entsql.Dialect(dialect.SQLite).
			Insert(QuestionsTable.Name).
			Columns("id", "number", "category", "prompt", "answers", "updated_at").
			Values(q.ID, q.Number, q.Category, q.Prompt, string(answers), now).
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.drv, QuestionsTable.Name)
}

func countRows(ctx context.Context, drv *entsql.Driver, table string) (int, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(entsql.Count("*")).From(b.Table(table)).Query()

	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(&rows)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// SeedQuestions stores qs when the pool is empty and reports how many rows
// were written.
func SeedQuestions(ctx context.Context, repo QuestionRepo, qs []question.Question) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	if err := repo.Upsert(ctx, qs); err != nil {
		return 0, err
	}
	return len(qs), nil
}
