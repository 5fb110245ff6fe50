package domain

import "time"

// Idempotency records the registration produced by a POST carrying an
// Idempotency-Key, so a double-submitted form replays the first result
// instead of creating a second record with the next id.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_idempotency_key"`
	InscripcionID string    `gorm:"type:TEXT NOT NULL"`
	Status        int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
