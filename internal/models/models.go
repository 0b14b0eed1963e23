package models

import (
	"time"
)

// Model is a persistent entity with a string ID, timestamps, and soft delete.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	DeletedAt() *time.Time // nil while the record is live
	Validate() error
}

// Repository is the CRUD contract each entity's store implements.
//
// Get and List never return soft-deleted records; Delete on such a record reports [shared.ErrNotFound].
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
