package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeEntitlementGranted = "entitlement.granted"

type EntitlementGrantedPayload struct {
	PostID     uuid.UUID `json:"post_id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	Title      string    `json:"title"`
	CopiesLeft int       `json:"copies_left"`
}

type EntitlementGranted struct {
	Type      string                    `json:"type"`
	Timestamp time.Time                 `json:"timestamp"`
	Payload   EntitlementGrantedPayload `json:"payload"`
}

func NewEntitlementGranted(postID uuid.UUID, buyerID, sellerID, title string, copiesLeft int) EntitlementGranted {
	return EntitlementGranted{
		Type:      TypeEntitlementGranted,
		Timestamp: time.Now().UTC(),
		Payload: EntitlementGrantedPayload{
			PostID:     postID,
			BuyerID:    buyerID,
			SellerID:   sellerID,
			Title:      title,
			CopiesLeft: copiesLeft,
		},
	}
}
