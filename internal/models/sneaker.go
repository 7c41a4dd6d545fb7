package models

import (
	"time"
)

// SneakerCondition describes the wear grade of a listed sneaker.
type SneakerCondition string

const (
	ConditionNew     SneakerCondition = "new"
	ConditionLikeNew SneakerCondition = "like_new"
	ConditionGood    SneakerCondition = "good"
	ConditionFair    SneakerCondition = "fair"
	ConditionWorn    SneakerCondition = "worn"
)

// IsValid reports whether the condition is one of the closed set of grades.
func (c SneakerCondition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn:
		return true
	}
	return false
}

// Sneaker represents a listed sneaker owned by exactly one user.
// OwnerID is immutable after creation.
type Sneaker struct {
	ID          string           `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID     string           `bson:"owner_id" json:"owner_id"`
	Name        string           `bson:"name" json:"name"`
	Brand       string           `bson:"brand" json:"brand"`
	Size        string           `bson:"size" json:"size"`
	Condition   SneakerCondition `bson:"condition" json:"condition"`
	Price       float64          `bson:"price" json:"price"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string           `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

// SneakerInfo is the slimmed-down representation embedded in proposition
// responses.
type SneakerInfo struct {
	ID    string  `bson:"_id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Brand string  `bson:"brand" json:"brand"`
	Size  string  `bson:"size" json:"size"`
	Price float64 `bson:"price" json:"price"`
}

// Info returns the embeddable view of the sneaker.
func (s *Sneaker) Info() *SneakerInfo {
	if s == nil {
		return nil
	}
	return &SneakerInfo{ID: s.ID, Name: s.Name, Brand: s.Brand, Size: s.Size, Price: s.Price}
}

// SneakerDetail is a sneaker with its owner summary attached for responses.
type SneakerDetail struct {
	Sneaker `bson:",inline"`
	Owner   *UserInfo `bson:"owner,omitempty" json:"owner,omitempty"`
}
