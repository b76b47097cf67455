package model

import (
	"github.com/uptrace/bun"
)

// Faculty is one roster entry, seeded from the faculty CSV.
type Faculty struct {
	bun.BaseModel `bun:"table:faculty"`

	Email      string `bun:"email,pk,notnull"`
	Name       string `bun:"name,notnull"`
	Department string `bun:"department"`
}
