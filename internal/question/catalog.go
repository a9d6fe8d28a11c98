package question

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/VVic23/civics-practice/internal/jsonvalid"
)

//go:embed catalog.json
var catalogJSON []byte

// fileSchemaName is the name the import schema is compiled under.
const fileSchemaName = "question-file"

// fileSchema describes the import format. Field names follow the hosted
// question table the catalog was first published in.
var fileSchema = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"question_number", "question", "answers"},
				"properties": map[string]any{
					"id":              map[string]any{"type": "string"},
					"question_number": map[string]any{"type": "integer", "minimum": 1},
					"category":        map[string]any{"type": "string"},
					"question":        map[string]any{"type": "string", "minLength": 1},
					"answers": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]any{"type": "string", "minLength": 1},
					},
				},
			},
		},
	},
}

type questionFile struct {
	Questions []questionRecord `json:"questions"`
}

type questionRecord struct {
	ID       string   `json:"id"`
	Number   int      `json:"question_number"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Catalog returns the embedded USCIS civics question set.
func Catalog() ([]Question, error) {
	return DecodeBytes(catalogJSON)
}

// Decode reads a question file from r, validates it against the import
// schema and the pool invariants, and returns the questions in file order.
func Decode(r io.Reader) ([]Question, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(raw []byte) ([]Question, error) {
	schema, err := jsonvalid.Compile(fileSchemaName, fileSchema)
	if err != nil {
		return nil, err
	}
	if err := jsonvalid.Validate(schema, raw); err != nil {
		if errors.Is(err, jsonvalid.ErrMalformed) {
			return nil, fmt.Errorf("parse question file: %w", err)
		}
		return nil, fmt.Errorf("question file does not match schema: %w", err)
	}

	var file questionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode question file: %w", err)
	}

	out := make([]Question, 0, len(file.Questions))
	for i, rec := range file.Questions {
		q := Question{
			ID:              rec.ID,
			Number:          rec.Number,
			Category:        rec.Category,
			Prompt:          rec.Question,
			AcceptedAnswers: rec.Answers,
		}
		if q.ID == "" {
			q.ID = IDForNumber(rec.Number)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d (#%d): %w", i, rec.Number, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// IDForNumber derives a stable id for a catalog number so re-importing the
// same file updates rows instead of duplicating them.
func IDForNumber(n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("civics-practice:question:%d", n))).String()
}
