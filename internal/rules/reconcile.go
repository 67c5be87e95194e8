package rules

import (
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// Reconcile recomputes every influencer's collaboration_count and every
// collaboration's influencer_name from the references in ds. It reports
// whether anything changed.
//
// Collaborations that reference a missing influencer are left alone.
func Reconcile(ds *syncsvc.Dataset) bool {
	counts := make(map[string]int, len(ds.Influencers))
	names := make(map[string]string, len(ds.Influencers))
	for _, inf := range ds.Influencers {
		names[inf.ID] = inf.Name
	}

	changed := false
	for i := range ds.Collaborations {
		c := &ds.Collaborations[i]
		name, ok := names[c.InfluencerID]
		if c.InfluencerID == "" || !ok {
			continue
		}
		counts[c.InfluencerID]++
		if c.InfluencerName != name {
			c.InfluencerName = name
			changed = true
		}
	}

	for i := range ds.Influencers {
		inf := &ds.Influencers[i]
		if inf.CollaborationCount != counts[inf.ID] {
			inf.CollaborationCount = counts[inf.ID]
			changed = true
		}
	}
	return changed
}
