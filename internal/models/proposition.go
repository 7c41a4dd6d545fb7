package models

import (
	"time"
)

// OfferType is the kind of offer a proposition carries.
type OfferType string

const (
	OfferBuy   OfferType = "buy"
	OfferTrade OfferType = "trade"
	OfferSwap  OfferType = "swap"
)

// IsValid reports whether the offer type is one of the closed set.
func (o OfferType) IsValid() bool {
	switch o {
	case OfferBuy, OfferTrade, OfferSwap:
		return true
	}
	return false
}

// PropositionStatus is the lifecycle state of a proposition.
//
// StatusCancelled exists in the domain vocabulary but is never persisted:
// cancellation removes the document outright, matching the system of record.
type PropositionStatus string

const (
	StatusPending   PropositionStatus = "pending"
	StatusAccepted  PropositionStatus = "accepted"
	StatusRejected  PropositionStatus = "rejected"
	StatusCancelled PropositionStatus = "cancelled"
)

// IsValid reports whether the status is one of the closed set.
func (s PropositionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transition.
func (s PropositionStatus) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusCancelled:
		return true
	case StatusPending:
		return false
	}
	return false
}

// Proposition is an offer made by one user against another user's sneaker.
// SneakerID is the target; OfferSneakerID is the optional counter-offer
// (meaningful for trade/swap); OfferPrice is meaningful for buy. Neither is
// validated against the offer type on creation.
type Proposition struct {
	ID             string            `bson:"_id,omitempty" json:"id,omitempty"`
	SneakerID      string            `bson:"sneaker_id" json:"sneaker_id"`
	ProposerID     string            `bson:"proposer_id" json:"proposer_id"`
	OfferType      OfferType         `bson:"offer_type" json:"offer_type"`
	OfferPrice     *float64          `bson:"offer_price,omitempty" json:"offer_price,omitempty"`
	OfferSneakerID string            `bson:"offer_sneaker_id,omitempty" json:"offer_sneaker_id,omitempty"`
	Status         PropositionStatus `bson:"status" json:"status"`
	Message        string            `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt      time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updated_at"`
}

// PropositionDetail is a proposition with its related record summaries
// attached for responses. OfferSneaker may be nil even when OfferSneakerID is
// set, if the counter-offer sneaker has since been deleted.
type PropositionDetail struct {
	Proposition  `bson:",inline"`
	Proposer     *UserInfo    `bson:"proposer,omitempty" json:"proposer,omitempty"`
	Sneaker      *SneakerInfo `bson:"sneaker,omitempty" json:"sneaker,omitempty"`
	OfferSneaker *SneakerInfo `bson:"offer_sneaker,omitempty" json:"offer_sneaker,omitempty"`
}
