package entity

import (
	"time"

	"github.com/google/uuid"
)

// Invoice represents an invoice row for data transfer between layers.
// Created exactly once per successfully processed document; never updated
// by the pipeline.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	Number      string     `json:"number"`
	SiteID      int        `json:"site_id"`
	StatusID    int        `json:"status_id"`
	IsArchived  bool       `json:"is_archived"`
	DateIssue   *time.Time `json:"date_issue,omitempty"`
	DateDue     *time.Time `json:"date_due,omitempty"`
	Amount      float64    `json:"amount"`
	FileID      uuid.UUID  `json:"file_id"`
	DateCreated time.Time  `json:"date_created"`
	CreatedBy   string     `json:"created_by"`
}
