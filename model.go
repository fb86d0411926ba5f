package lifeline

import "time"

type Modelable interface {
	Exists() bool
}

// A Model is the essential data points for primary ID-based models in a lifeline application,
// indicating when a record was created and last updated.
//
// Lifecycle records are hard deleted - an Account removed by an admin is gone,
// along with its audit trail - so Model carries no soft-delete timestamp.
type Model struct {
	ID        uint      `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (m Model) Exists() bool { return !m.CreatedAt.IsZero() }
