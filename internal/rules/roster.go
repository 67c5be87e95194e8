package rules

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

// Roster applies the consistency rules through a sync service. Each method
// is one svc.Update call, so it either fully applies or writes nothing.
type Roster struct {
	svc    *syncsvc.Service
	team   schema.Team
	now    func() time.Time
	logger *zap.Logger
}

// NewRoster returns a Roster over svc. An empty team uses
// schema.DefaultTeam; a nil logger disables logging.
func NewRoster(svc *syncsvc.Service, team schema.Team, logger *zap.Logger) *Roster {
	if len(team) == 0 {
		team = schema.DefaultTeam
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{svc: svc, team: team, now: time.Now, logger: logger.Named("rules")}
}

// Team returns the members collaborations may be assigned to.
func (r *Roster) Team() schema.Team {
	return r.team
}

// AddInfluencer creates a new influencer.
func (r *Roster) AddInfluencer(ctx context.Context, inf schema.Influencer) (schema.Influencer, error) {
	var out schema.Influencer
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = AddInfluencer(ds, inf, r.now())
		return err
	})
	if err == nil {
		r.logger.Info("added influencer", zap.String("id", out.ID), zap.String("name", out.Name))
	}
	return out, err
}

// UpdateInfluencer edits an existing influencer.
func (r *Roster) UpdateInfluencer(ctx context.Context, inf schema.Influencer) (schema.Influencer, error) {
	var out schema.Influencer
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = UpdateInfluencer(ds, inf)
		return err
	})
	return out, err
}

// DeleteInfluencer removes an influencer and its collaborations.
func (r *Roster) DeleteInfluencer(ctx context.Context, id string) (int, error) {
	var removed int
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		removed, err = DeleteInfluencer(ds, id)
		return err
	})
	if err == nil {
		r.logger.Info("deleted influencer", zap.String("id", id), zap.Int("collaborations", removed))
	}
	return removed, err
}

// AddCollaboration creates a new collaboration.
func (r *Roster) AddCollaboration(ctx context.Context, c schema.Collaboration) (schema.Collaboration, error) {
	var out schema.Collaboration
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = AddCollaboration(ds, c, r.team, r.now())
		return err
	})
	return out, err
}

// UpdateCollaboration edits an existing collaboration.
func (r *Roster) UpdateCollaboration(ctx context.Context, c schema.Collaboration) (schema.Collaboration, error) {
	var out schema.Collaboration
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = UpdateCollaboration(ds, c, r.team)
		return err
	})
	return out, err
}

// DeleteCollaboration removes a collaboration.
func (r *Roster) DeleteCollaboration(ctx context.Context, id string) (schema.Collaboration, error) {
	var out schema.Collaboration
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = DeleteCollaboration(ds, id)
		return err
	})
	return out, err
}

// ImportInfluencers appends rows as new influencers.
func (r *Roster) ImportInfluencers(ctx context.Context, rows []schema.Influencer) ([]schema.Influencer, error) {
	var out []schema.Influencer
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		var err error
		out, err = ImportInfluencers(ds, rows, r.now())
		return err
	})
	if err == nil {
		r.logger.Info("imported influencers", zap.Int("count", len(out)))
	}
	return out, err
}

// Reconcile repairs derived fields and reports whether anything changed.
func (r *Roster) Reconcile(ctx context.Context) (bool, error) {
	var changed bool
	err := r.svc.Update(ctx, func(ds *syncsvc.Dataset) error {
		changed = Reconcile(ds)
		return nil
	})
	return changed, err
}

// Dataset returns the current persisted records.
func (r *Roster) Dataset(ctx context.Context) *syncsvc.Dataset {
	return &syncsvc.Dataset{
		Influencers:    syncsvc.Get[schema.Influencer](ctx, r.svc),
		Collaborations: syncsvc.Get[schema.Collaboration](ctx, r.svc),
	}
}

// Summary computes roster totals from the persisted records.
func (r *Roster) Summary(ctx context.Context) Summary {
	return Summarize(r.Dataset(ctx), r.team)
}
