package models

// HeroImage is one uploaded image owned by a user. At most one image per
// owner has Active set.
type HeroImage struct {
	ID       int64
	UserID   int64
	ImageURL string
	Active   bool
}
