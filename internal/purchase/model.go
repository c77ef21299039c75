package purchase

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
)

type Purchase struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CourseID  uuid.UUID `json:"courseId" db:"course_id"`
	CreatedAt time.Time `json:"purchasedAt" db:"created_at"`
}

// Detail is a purchase together with the course it grants access to.
type Detail struct {
	Purchase
	Course course.Course `json:"course"`
}
