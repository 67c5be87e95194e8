// Package rules keeps the influencer and collaboration collections
// consistent with each other.
//
// Two invariants hold after every operation:
//
//   - an influencer's collaboration_count equals the number of
//     collaborations whose influencer_id references it
//   - a collaboration's influencer_name equals the referenced influencer's
//     name
//
// The functions here are pure: they mutate a *syncsvc.Dataset in memory and
// return ErrNotFound or a validation error without side effects. Roster
// runs them through syncsvc.Service.Update so each one is a single
// serialized write.
package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// ErrNotFound is returned when an operation targets a record id that does
// not exist. The dataset is left unchanged.
var ErrNotFound = errors.New("record not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// AddInfluencer appends inf with a fresh id and creation time. The count is
// derived, so any supplied value is replaced by zero.
func AddInfluencer(ds *syncsvc.Dataset, inf schema.Influencer, now time.Time) (schema.Influencer, error) {
	inf.SetDefaults()
	inf.ID = schema.NewID()
	inf.CollaborationCount = 0
	created := now.UTC()
	inf.CreatedAt = &created

	if err := inf.Validate(); err != nil {
		return schema.Influencer{}, err
	}
	ds.Influencers = append(ds.Influencers, inf)
	return inf, nil
}

// UpdateInfluencer replaces the editable fields of the influencer with
// inf.ID. The id, creation time and count are kept. A name change is copied
// to every collaboration that references the influencer.
func UpdateInfluencer(ds *syncsvc.Dataset, inf schema.Influencer) (schema.Influencer, error) {
	i := ds.Influencer(inf.ID)
	if i < 0 {
		return schema.Influencer{}, notFound("influencer", inf.ID)
	}
	old := ds.Influencers[i]

	inf.SetDefaults()
	inf.CreatedAt = old.CreatedAt
	inf.CollaborationCount = old.CollaborationCount
	if err := inf.Validate(); err != nil {
		return schema.Influencer{}, err
	}

	ds.Influencers[i] = inf
	if inf.Name != old.Name {
		for j := range ds.Collaborations {
			if ds.Collaborations[j].InfluencerID == inf.ID {
				ds.Collaborations[j].InfluencerName = inf.Name
			}
		}
	}
	return inf, nil
}

// DeleteInfluencer removes the influencer with id and every collaboration
// that references it. It returns the number of collaborations removed.
func DeleteInfluencer(ds *syncsvc.Dataset, id string) (int, error) {
	i := ds.Influencer(id)
	if i < 0 {
		return 0, notFound("influencer", id)
	}
	ds.Influencers = append(ds.Influencers[:i:i], ds.Influencers[i+1:]...)

	kept := ds.Collaborations[:0:0]
	removed := 0
	for _, c := range ds.Collaborations {
		if c.InfluencerID == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	ds.Collaborations = kept
	return removed, nil
}

// AddCollaboration appends c with a fresh id. When c references an
// influencer, that influencer must exist; its name is copied and its count
// incremented.
func AddCollaboration(ds *syncsvc.Dataset, c schema.Collaboration, team schema.Team, now time.Time) (schema.Collaboration, error) {
	c.SetDefaults(now)
	c.ID = schema.NewID()

	ref := -1
	if c.InfluencerID != "" {
		if ref = ds.Influencer(c.InfluencerID); ref < 0 {
			return schema.Collaboration{}, notFound("influencer", c.InfluencerID)
		}
		c.InfluencerName = ds.Influencers[ref].Name
	}
	if err := c.ValidateFor(team); err != nil {
		return schema.Collaboration{}, err
	}

	ds.Collaborations = append(ds.Collaborations, c)
	if ref >= 0 {
		ds.Influencers[ref].CollaborationCount++
	}
	return c, nil
}

// UpdateCollaboration replaces the collaboration with c.ID. Moving it to a
// different influencer decrements the old one (never below zero) and
// increments the new one.
func UpdateCollaboration(ds *syncsvc.Dataset, c schema.Collaboration, team schema.Team) (schema.Collaboration, error) {
	i := ds.Collaboration(c.ID)
	if i < 0 {
		return schema.Collaboration{}, notFound("collaboration", c.ID)
	}
	old := ds.Collaborations[i]

	ref := -1
	if c.InfluencerID != "" {
		if ref = ds.Influencer(c.InfluencerID); ref < 0 {
			return schema.Collaboration{}, notFound("influencer", c.InfluencerID)
		}
		c.InfluencerName = ds.Influencers[ref].Name
	} else if old.InfluencerID != "" {
		c.InfluencerName = ""
	}

	c.SetDefaults(time.Now())
	if err := c.ValidateFor(team); err != nil {
		return schema.Collaboration{}, err
	}

	ds.Collaborations[i] = c
	if c.InfluencerID != old.InfluencerID {
		decrement(ds, old.InfluencerID)
		if ref >= 0 {
			ds.Influencers[ref].CollaborationCount++
		}
	}
	return c, nil
}

// DeleteCollaboration removes the collaboration with id and decrements the
// influencer it referenced, never below zero.
func DeleteCollaboration(ds *syncsvc.Dataset, id string) (schema.Collaboration, error) {
	i := ds.Collaboration(id)
	if i < 0 {
		return schema.Collaboration{}, notFound("collaboration", id)
	}
	c := ds.Collaborations[i]
	ds.Collaborations = append(ds.Collaborations[:i:i], ds.Collaborations[i+1:]...)
	decrement(ds, c.InfluencerID)
	return c, nil
}

// ImportInfluencers appends rows as new influencers. Existing records are
// never modified. Rows are validated first; the first invalid row aborts
// the import with a *schema.RowError and nothing is appended.
func ImportInfluencers(ds *syncsvc.Dataset, rows []schema.Influencer, now time.Time) ([]schema.Influencer, error) {
	staged := &syncsvc.Dataset{}
	for n, row := range rows {
		if _, err := AddInfluencer(staged, row, now); err != nil {
			return nil, &schema.RowError{Row: n + 1, Err: err}
		}
	}
	ds.Influencers = append(ds.Influencers, staged.Influencers...)
	return staged.Influencers, nil
}

func decrement(ds *syncsvc.Dataset, influencerID string) {
	if influencerID == "" {
		return
	}
	if j := ds.Influencer(influencerID); j >= 0 && ds.Influencers[j].CollaborationCount > 0 {
		ds.Influencers[j].CollaborationCount--
	}
}
