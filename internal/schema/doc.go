// Package schema defines the records talentdesk persists: influencer
// profiles and brand collaborations, plus the sync metadata envelope.
//
// # Collections
//
// Records live in two named collections, each persisted as one JSON array
// under its own store key:
//
//	influencers     -> []Influencer
//	collaborations  -> []Collaboration
//	syncMetadata    -> SyncMetadata
//
// # Cross-entity fields
//
// Influencer.CollaborationCount is derived: it always equals the number of
// collaborations whose InfluencerID points at the influencer. A
// collaboration's InfluencerName is a denormalized copy of the referenced
// influencer's name. Both are maintained by package rules, never edited
// directly.
//
// # Usage Examples
//
// Creating an influencer draft:
//
//	inf := &schema.Influencer{Name: "Ayşe Yılmaz", Brand: "Nike", Fee: 5000}
//	inf.SetDefaults()
//	if err := inf.Validate(); err != nil {
//	    return err
//	}
//
// Parsing a collaboration date typed by a person:
//
//	date, err := schema.ParseDate("next friday", time.Now())
package schema
