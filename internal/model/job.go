package model

import "time"

const ApplicationStatusPending = "pending"

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Salary       string    `json:"salary"`
	AuthorID     string    `json:"author_id"`
	Applications int       `json:"applications"`
	CreatedAt    time.Time `json:"created_at"`
}

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	UserID      string    `json:"user_id"`
	Experience  string    `json:"experience"`
	Skills      string    `json:"skills"`
	CoverLetter string    `json:"cover_letter"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
