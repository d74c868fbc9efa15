package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationPoint is a row of the pesquisador_localizacao table. Rows are only ever appended.
type LocationPoint struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ResearcherID uuid.UUID `gorm:"column:id_pesquisador;type:uuid;not null;index:idx_localizacao_pesquisador_ts,priority:1" json:"researcher_id"`
	Latitude     float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude    float64   `gorm:"column:longitude;not null" json:"longitude"`
	Timestamp    time.Time `gorm:"column:timestamp;not null;index:idx_localizacao_pesquisador_ts,priority:2" json:"timestamp"`
}

func (LocationPoint) TableName() string {
	return "pesquisador_localizacao"
}

// LocationPointFilter selects points of one researcher within [From, To]
type LocationPointFilter struct {
	ResearcherID *uuid.UUID
	From         *time.Time
	To           *time.Time
}
