package mysql

import (
	"context"
	"database/sql"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type ideaRepository struct {
	db *sql.DB
}

func NewIdeaRepository(db *sql.DB) *ideaRepository {
	return &ideaRepository{db: db}
}

func (r *ideaRepository) SaveGeneratedIdea(ctx context.Context, idea *model.GeneratedIdea) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generated_ideas (id, user_id, prompt, startup_idea, recommendations, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.UserID, idea.Prompt, idea.StartupIdea, idea.Recommendations, idea.Timestamp)
	return err
}

func (r *ideaRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.GeneratedIdea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, prompt, startup_idea, recommendations, created_at
         FROM generated_ideas WHERE user_id = ?
         ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []*model.GeneratedIdea{}
	for rows.Next() {
		var idea model.GeneratedIdea
		if err := rows.Scan(&idea.ID, &idea.UserID, &idea.Prompt, &idea.StartupIdea, &idea.Recommendations, &idea.Timestamp); err != nil {
			return nil, err
		}
		ideas = append(ideas, &idea)
	}
	return ideas, rows.Err()
}
