package shared

import "time"

// BaseEntity provides the store-assigned identity and timestamps shared by catalog records
type BaseEntity struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uint64 {
	return e.ID
}

// Touch refreshes UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// NewBaseEntity creates a base entity stamped with the current time.
// The ID stays zero until the store assigns one.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}
