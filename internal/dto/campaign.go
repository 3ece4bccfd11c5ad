package dto

import "time"

// CreateCampaignRequest opens a new exam campaign.
type CreateCampaignRequest struct {
	Name           string   `json:"name" validate:"required,min=3,max=120"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	SessionCeiling int      `json:"sessionCeiling" validate:"omitempty,min=1"`
	Holidays       []string `json:"holidays" validate:"omitempty,dive,datetime=2006-01-02"`
}

// CampaignResponse is one campaign in API responses.
type CampaignResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	SessionCeiling int       `json:"sessionCeiling"`
	Holidays       []string  `json:"holidays"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UploadOfferingsRequest replaces the offering rows stored against a campaign.
type UploadOfferingsRequest struct {
	Offerings []OfferingRequest `json:"offerings" validate:"required,min=1,dive"`
}

// CampaignQuery filters campaign listings.
type CampaignQuery struct {
	Status string `form:"status" json:"status" validate:"omitempty,oneof=OPEN CLOSED"`
}
