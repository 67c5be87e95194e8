// Package query filters, sorts and summarizes record lists for the list
// and job-tracking views.
package query

import (
	"sort"
	"strings"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// InfluencerFilter selects influencers. Zero fields match everything.
type InfluencerFilter struct {
	// Search matches name, brand or category, case-insensitively.
	Search   string
	Category schema.Category
	Status   schema.Status
}

// Match reports whether inf passes the filter.
func (f InfluencerFilter) Match(inf schema.Influencer) bool {
	if f.Category != "" && inf.Category != f.Category {
		return false
	}
	if f.Status != "" && inf.Status != f.Status {
		return false
	}
	return containsAny(f.Search, inf.Name, inf.Brand, string(inf.Category))
}

// Influencers returns the influencers that pass f, in input order.
func Influencers(list []schema.Influencer, f InfluencerFilter) []schema.Influencer {
	out := make([]schema.Influencer, 0, len(list))
	for _, inf := range list {
		if f.Match(inf) {
			out = append(out, inf)
		}
	}
	return out
}

// CollaborationFilter selects collaborations. Zero fields match everything.
type CollaborationFilter struct {
	// Search matches brand, assignee or influencer name.
	Search     string
	Status     schema.Status
	AssignedTo string
	Brand      string
	// Influencer matches the denormalized influencer name exactly.
	Influencer   string
	InfluencerID string
	// From and To bound the date, inclusive, as YYYY-MM-DD.
	From string
	To   string
}

// Match reports whether c passes the filter.
func (f CollaborationFilter) Match(c schema.Collaboration) bool {
	switch {
	case f.Status != "" && c.Status != f.Status:
		return false
	case f.AssignedTo != "" && c.AssignedTo != f.AssignedTo:
		return false
	case f.Brand != "" && c.Brand != f.Brand:
		return false
	case f.Influencer != "" && c.InfluencerName != f.Influencer:
		return false
	case f.InfluencerID != "" && c.InfluencerID != f.InfluencerID:
		return false
	case f.From != "" && c.Date < f.From:
		return false
	case f.To != "" && c.Date > f.To:
		return false
	}
	return containsAny(f.Search, c.Brand, c.AssignedTo, c.InfluencerName)
}

// Collaborations returns the collaborations that pass f, in input order.
func Collaborations(list []schema.Collaboration, f CollaborationFilter) []schema.Collaboration {
	out := make([]schema.Collaboration, 0, len(list))
	for _, c := range list {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Brands returns the distinct collaboration brands, sorted.
func Brands(list []schema.Collaboration) []string {
	return distinct(list, func(c schema.Collaboration) string { return c.Brand })
}

// InfluencerNames returns the distinct non-empty influencer names on
// collaborations, sorted.
func InfluencerNames(list []schema.Collaboration) []string {
	return distinct(list, func(c schema.Collaboration) string { return c.InfluencerName })
}

func distinct(list []schema.Collaboration, key func(schema.Collaboration) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range list {
		k := key(c)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsAny(needle string, fields ...string) bool {
	if strings.TrimSpace(needle) == "" {
		return true
	}
	n := schema.Fold(needle)
	for _, f := range fields {
		if strings.Contains(schema.Fold(f), n) {
			return true
		}
	}
	return false
}
