package schema

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format collaborations are stored in.
const DateLayout = "2006-01-02"

// Collaboration is a single brand job, optionally tied to an influencer.
type Collaboration struct {
	ID     string  `json:"id"`
	Brand  string  `json:"brand"`
	Date   string  `json:"date"`
	Fee    float64 `json:"fee"`
	Status Status  `json:"status"`

	// CollaborationCount is the number of discrete engagements this job
	// covers. Unrelated to Influencer.CollaborationCount.
	CollaborationCount int `json:"collaboration_count"`

	AssignedTo string `json:"assigned_to"`

	// InfluencerID is a lookup key only; the collaboration does not own
	// the influencer.
	InfluencerID   string `json:"influencer_id,omitempty"`
	InfluencerName string `json:"influencer_name,omitempty"`
}

// Validate checks the collaboration against the default team.
func (c *Collaboration) Validate() error {
	return c.ValidateFor(DefaultTeam)
}

// ValidateFor checks if the Collaboration has valid field values, with
// AssignedTo drawn from team.
func (c *Collaboration) ValidateFor(team Team) error {
	if strings.TrimSpace(c.Brand) == "" {
		return invalid("brand", "is required")
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return invalid("date", "must be a YYYY-MM-DD date (got %q)", c.Date)
	}
	if c.Fee < 0 {
		return invalid("fee", "must not be negative (got %v)", c.Fee)
	}
	if c.CollaborationCount < 1 {
		return invalid("collaboration_count", "must be at least 1 (got %d)", c.CollaborationCount)
	}
	if !team.Contains(c.AssignedTo) {
		return invalid("assigned_to", "must be a team member (got %q)", c.AssignedTo)
	}
	if !c.Status.IsValid() {
		return invalid("status", "must be one of Pending, Approved, Completed (got %q)", c.Status)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (c *Collaboration) SetDefaults(now time.Time) {
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.CollaborationCount == 0 {
		c.CollaborationCount = 1
	}
	if c.Date == "" {
		c.Date = now.Format(DateLayout)
	}
	c.Brand = strings.TrimSpace(c.Brand)
}

// Key returns the record identifier.
func (c Collaboration) Key() string { return c.ID }

// Day parses Date. The zero time is returned for malformed dates.
func (c Collaboration) Day() time.Time {
	t, _ := time.Parse(DateLayout, c.Date)
	return t
}
