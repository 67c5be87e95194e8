package schema

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Influencer is a talent profile managed by the agency.
type Influencer struct {
	// ID is empty only while the record is a draft being created.
	ID string `json:"id,omitempty"`

	Name   string  `json:"name"`
	Brand  string  `json:"brand"`
	Fee    float64 `json:"fee"`
	Status Status  `json:"status"`

	// CollaborationCount mirrors the number of collaborations that
	// reference this influencer. Maintained by package rules.
	CollaborationCount int `json:"collaboration_count"`

	Category  Category `json:"category,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	TikTok    string   `json:"tiktok,omitempty"`
	Image     string   `json:"image,omitempty"`

	// CreatedAt is set once when the record is first saved.
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// phonePattern accepts international numbers and domestic numbers with a
// leading trunk 0 such as 0555 123 45 67.
var phonePattern = regexp.MustCompile(`^(\+?[1-9]\d{6,14}|0\d{9,10})$`)

// Validate checks if the Influencer has valid field values.
func (i *Influencer) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(i.Brand) == "" {
		return invalid("brand", "is required")
	}
	if i.Fee < 0 {
		return invalid("fee", "must not be negative (got %v)", i.Fee)
	}
	if !i.Status.IsValid() {
		return invalid("status", "must be one of Pending, Approved, Completed (got %q)", i.Status)
	}
	if i.CollaborationCount < 0 {
		return invalid("collaboration_count", "must not be negative (got %d)", i.CollaborationCount)
	}
	if i.Category != "" && !i.Category.IsValid() {
		return invalid("category", "is not a known category (got %q)", i.Category)
	}
	if i.Email != "" {
		if _, err := mail.ParseAddress(i.Email); err != nil {
			return invalid("email", "is not a valid address (got %q)", i.Email)
		}
	}
	if i.Phone != "" && !phonePattern.MatchString(normalizePhone(i.Phone)) {
		return invalid("phone", "is not a valid phone number (got %q)", i.Phone)
	}
	if i.Image != "" && !isHTTPURL(i.Image) {
		return invalid("image", "must be an http(s) URL (got %q)", i.Image)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (i *Influencer) SetDefaults() {
	if i.Status == "" {
		i.Status = StatusPending
	}
	i.Name = strings.TrimSpace(i.Name)
	i.Brand = strings.TrimSpace(i.Brand)
	i.Instagram = strings.TrimPrefix(strings.TrimSpace(i.Instagram), "@")
	i.TikTok = strings.TrimPrefix(strings.TrimSpace(i.TikTok), "@")
}

// Key returns the record identifier.
func (i Influencer) Key() string { return i.ID }

func normalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
