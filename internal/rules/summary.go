package rules

import (
	"sort"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// MemberStats aggregates the collaborations assigned to one team member.
type MemberStats struct {
	Member string  `json:"member"`
	Jobs   int     `json:"jobs"`
	Fee    float64 `json:"fee"`
}

// Summary holds roster totals shown by `td status` and the dashboard.
type Summary struct {
	Influencers       int                   `json:"influencers"`
	ActiveInfluencers int                   `json:"active_influencers"`
	Collaborations    int                   `json:"collaborations"`
	ByStatus          map[schema.Status]int `json:"by_status"`
	TotalFee          float64               `json:"total_fee"`
	CompletedFee      float64               `json:"completed_fee"`
	Members           []MemberStats         `json:"members"`
}

// Summarize computes roster totals. Members lists every team member in team
// order, followed by any other assignee found in the data, sorted.
func Summarize(ds *syncsvc.Dataset, team schema.Team) Summary {
	s := Summary{
		Influencers:    len(ds.Influencers),
		Collaborations: len(ds.Collaborations),
		ByStatus:       make(map[schema.Status]int, len(schema.Statuses)),
	}
	for _, st := range schema.Statuses {
		s.ByStatus[st] = 0
	}

	for _, inf := range ds.Influencers {
		if inf.CollaborationCount > 0 {
			s.ActiveInfluencers++
		}
	}

	byMember := make(map[string]*MemberStats)
	for _, m := range team {
		byMember[m] = &MemberStats{Member: m}
	}
	var others []string

	for _, c := range ds.Collaborations {
		s.ByStatus[c.Status]++
		s.TotalFee += c.Fee
		if c.Status == schema.StatusCompleted {
			s.CompletedFee += c.Fee
		}

		ms, ok := byMember[c.AssignedTo]
		if !ok {
			ms = &MemberStats{Member: c.AssignedTo}
			byMember[c.AssignedTo] = ms
			others = append(others, c.AssignedTo)
		}
		ms.Jobs++
		ms.Fee += c.Fee
	}

	sort.Strings(others)
	for _, m := range append(append([]string(nil), team...), others...) {
		s.Members = append(s.Members, *byMember[m])
	}
	return s
}
