package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type TemplateRepository struct {
	DB *db.Postgres
}

// Get loads one shift template with its checklist sections.
func (r TemplateRepository) Get(ctx context.Context, key domain.ShiftKey) (*domain.ShiftTemplate, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT shift_key, name, frame_start, frame_end, sections
		FROM shift_templates
		WHERE shift_key=$1
	`, string(key))
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (r TemplateRepository) List(ctx context.Context) ([]domain.ShiftTemplate, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT shift_key, name, frame_start, frame_end, sections
		FROM shift_templates
		ORDER BY frame_start ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.ShiftTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tpl)
	}
	return items, rows.Err()
}

// ReplaceSections swaps a template's checklist wholesale; the canonical time
// frame is fixed and not editable.
func (r TemplateRepository) ReplaceSections(ctx context.Context, key domain.ShiftKey, sections []domain.TaskSection) error {
	data, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shift_templates SET sections=$2, updated_at=now() WHERE shift_key=$1
	`, string(key), data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(row interface {
	Scan(dest ...any) error
}) (*domain.ShiftTemplate, error) {
	var (
		tpl      domain.ShiftTemplate
		key      string
		sections []byte
	)
	if err := row.Scan(&key, &tpl.Name, &tpl.FrameStart, &tpl.FrameEnd, &sections); err != nil {
		return nil, err
	}
	tpl.Key = domain.ShiftKey(key)
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &tpl.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	}
	return &tpl, nil
}
