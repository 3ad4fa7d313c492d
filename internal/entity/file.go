package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppFile represents a stored file row for data transfer between layers.
// Created once per triggering event and never updated.
type AppFile struct {
	ID               uuid.UUID `json:"id"`
	SourceName       string    `json:"source_name"`
	SourceID         string    `json:"source_id"`
	ContainerName    string    `json:"container_name"`
	OriginalFileName string    `json:"original_file_name"`
	SystemFileName   string    `json:"system_file_name"`
	DateCreation     time.Time `json:"date_creation"`
	FileURL          string    `json:"file_url"`
}
