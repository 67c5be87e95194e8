package schema

import (
	"fmt"
	"strings"
)

// Status is the workflow state shared by influencers and collaborations.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusCompleted Status = "Completed"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{StatusPending, StatusApproved, StatusCompleted}

// statusAliases maps lower-cased labels, including the agency's Turkish
// spreadsheet labels, to a Status.
var statusAliases = map[string]Status{
	"pending":    StatusPending,
	"beklemede":  StatusPending,
	"approved":   StatusApproved,
	"onaylandı":  StatusApproved,
	"onaylandi":  StatusApproved,
	"completed":  StatusCompleted,
	"tamamlandı": StatusCompleted,
	"tamamlandi": StatusCompleted,
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus resolves a user or spreadsheet label to a Status.
func ParseStatus(label string) (Status, error) {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", label)
}

// Category is the closed set of content niches an influencer can belong to.
type Category string

const (
	CategoryComedy     Category = "Comedy"
	CategoryDance      Category = "Dance"
	CategoryTechnology Category = "Technology"
	CategoryFashion    Category = "Fashion"
	CategoryBeauty     Category = "Beauty"
	CategorySports     Category = "Sports"
	CategoryFood       Category = "Food"
	CategoryTravel     Category = "Travel"
	CategoryGaming     Category = "Gaming"
	CategoryMusic      Category = "Music"
	CategoryEducation  Category = "Education"
	CategoryLifestyle  Category = "Lifestyle"
)

// Categories lists the valid categories in display order.
var Categories = []Category{
	CategoryComedy, CategoryDance, CategoryTechnology, CategoryFashion,
	CategoryBeauty, CategorySports, CategoryFood, CategoryTravel,
	CategoryGaming, CategoryMusic, CategoryEducation, CategoryLifestyle,
}

var categoryAliases = map[string]Category{
	"komedi":      CategoryComedy,
	"dans":        CategoryDance,
	"teknoloji":   CategoryTechnology,
	"moda":        CategoryFashion,
	"güzellik":    CategoryBeauty,
	"spor":        CategorySports,
	"yemek":       CategoryFood,
	"seyahat":     CategoryTravel,
	"oyun":        CategoryGaming,
	"müzik":       CategoryMusic,
	"eğitim":      CategoryEducation,
	"yaşam tarzı": CategoryLifestyle,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves an English or Turkish label to a Category.
// An empty label yields the empty category, which means "unset".
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", nil
	}
	lower := strings.ToLower(label)
	for _, c := range Categories {
		if strings.ToLower(string(c)) == lower {
			return c, nil
		}
	}
	if c, ok := categoryAliases[lower]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", label)
}

// Team is the closed set of agency staff a collaboration can be assigned to.
type Team []string

// DefaultTeam is the roster shipped with the application.
var DefaultTeam = Team{
	"ÖNCÜ EVRENSEL",
	"CAN AYDIN",
	"İBRAHİM HALİL BOZDAĞ",
}

// Contains reports whether member is on the team. Matching is exact.
func (t Team) Contains(member string) bool {
	for _, m := range t {
		if m == member {
			return true
		}
	}
	return false
}
