package course

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 200

	// MaxPrice is the largest value a NUMERIC(10, 2) price column holds.
	MaxPrice = 99999999.99
)

type Course struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	CreatorID   uuid.UUID `json:"creatorId" db:"creator_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Patch holds the fields of a partial update. Nil fields keep their stored value.
type Patch struct {
	Title       *string
	Description *string
	Price       *float64
	ImageURL    *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.ImageURL == nil
}

// WholeCents reports whether price has at most two decimal places.
func WholeCents(price float64) bool {
	cents := price * 100
	return math.Abs(cents-math.Round(cents)) < 1e-3
}

// ValidPrice reports whether the price column stores price unchanged and
// still satisfies price > 0.
func ValidPrice(price float64) bool {
	return math.Round(price*100) >= 1 && price <= MaxPrice && WholeCents(price)
}

// ValidTitle expects an already trimmed title.
func ValidTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n >= MinTitleLength && n <= MaxTitleLength
}
