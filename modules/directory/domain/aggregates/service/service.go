package service

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Service struct {
	ID             uuid.UUID  `json:"id"`
	OrganisationID uuid.UUID  `json:"organisation_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Status         Status     `json:"status"`
	Intro          string     `json:"intro"`
	Description    string     `json:"description"`
	WaitTime       *string    `json:"wait_time,omitempty"`
	IsFree         bool       `json:"is_free"`
	FeesText       *string    `json:"fees_text,omitempty"`
	FeesURL        *string    `json:"fees_url,omitempty"`
	Testimonial    *string    `json:"testimonial,omitempty"`
	VideoEmbed     *string    `json:"video_embed,omitempty"`
	URL            *string    `json:"url,omitempty"`
	ContactName    *string    `json:"contact_name,omitempty"`
	ContactPhone   *string    `json:"contact_phone,omitempty"`
	ContactEmail   *string    `json:"contact_email,omitempty"`
	ReferralMethod *string    `json:"referral_method,omitempty"`
	ReferralEmail  *string    `json:"referral_email,omitempty"`
	ReferralURL    *string    `json:"referral_url,omitempty"`
	LogoFileID     *uuid.UUID `json:"logo_file_id,omitempty"`

	UsefulInfos  []UsefulInfo  `json:"useful_infos"`
	Offerings    []Offering    `json:"offerings"`
	SocialMedias []SocialMedia `json:"social_medias"`
	CategoryIDs  []uuid.UUID   `json:"category_taxonomy_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UsefulInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type Offering struct {
	Offering string `json:"offering"`
	Order    int    `json:"order"`
}

type SocialMedia struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
