package query

import (
	"fmt"
	"sort"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// SortKey names a sortable column.
type SortKey string

const (
	SortByName  SortKey = "name"
	SortByBrand SortKey = "brand"
	SortByFee   SortKey = "fee"
	SortByDate  SortKey = "date"
	SortByCount SortKey = "count"
)

// ParseSortKey validates a --sort flag value.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByName, SortByBrand, SortByFee, SortByDate, SortByCount:
		return k, nil
	case "":
		return SortByName, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want name, brand, fee, date or count)", s)
}

// SortInfluencers sorts list in place. Date sorts by creation time. The
// sort is stable so equal keys keep their stored order.
func SortInfluencers(list []schema.Influencer, key SortKey, desc bool) {
	less := func(a, b schema.Influencer) bool {
		switch key {
		case SortByBrand:
			return schema.Fold(a.Brand) < schema.Fold(b.Brand)
		case SortByFee:
			return a.Fee < b.Fee
		case SortByCount:
			return a.CollaborationCount < b.CollaborationCount
		case SortByDate:
			return createdUnix(a) < createdUnix(b)
		default:
			return schema.Fold(a.Name) < schema.Fold(b.Name)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// SortCollaborations sorts list in place. Name sorts by influencer name.
func SortCollaborations(list []schema.Collaboration, key SortKey, desc bool) {
	less := func(a, b schema.Collaboration) bool {
		switch key {
		case SortByName:
			return schema.Fold(a.InfluencerName) < schema.Fold(b.InfluencerName)
		case SortByBrand:
			return schema.Fold(a.Brand) < schema.Fold(b.Brand)
		case SortByFee:
			return a.Fee < b.Fee
		case SortByCount:
			return a.CollaborationCount < b.CollaborationCount
		default:
			return a.Date < b.Date
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func createdUnix(inf schema.Influencer) int64 {
	if inf.CreatedAt == nil {
		return 0
	}
	return inf.CreatedAt.UnixNano()
}
