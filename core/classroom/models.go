package classroom

import (
	"time"

	"github.com/durusapp/durus/core"
)

type Classroom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"omitempty,gt=0"`
	Location string `json:"location"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}
