package syncsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/store"
)

// Dataset is an in-memory copy of both collections, handed to Update
// callbacks.
type Dataset struct {
	Influencers    []schema.Influencer
	Collaborations []schema.Collaboration
}

// Clone returns a deep copy of d.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		Influencers:    append([]schema.Influencer(nil), d.Influencers...),
		Collaborations: append([]schema.Collaboration(nil), d.Collaborations...),
	}
	for i, inf := range c.Influencers {
		if inf.CreatedAt != nil {
			t := *inf.CreatedAt
			c.Influencers[i].CreatedAt = &t
		}
	}
	return c
}

// Influencer returns the index of the influencer with id, or -1.
func (d *Dataset) Influencer(id string) int {
	for i := range d.Influencers {
		if d.Influencers[i].ID == id {
			return i
		}
	}
	return -1
}

// Collaboration returns the index of the collaboration with id, or -1.
func (d *Dataset) Collaboration(id string) int {
	for i := range d.Collaborations {
		if d.Collaborations[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the persisted records of type T. Like GetData it never fails:
// unreadable or malformed data yields an empty slice.
func Get[T schema.Record](ctx context.Context, s *Service) []T {
	c := schema.CollectionOf[T]()
	raws := s.GetData(ctx, c)

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("discarding unparseable collection",
				zap.String("collection", string(c)), zap.Error(err))
			return []T{}
		}
		out = append(out, rec)
	}
	return out
}

// Save replaces the collection of type T with records.
func Save[T schema.Record](ctx context.Context, s *Service, records []T) error {
	raws, err := encodeRecords(records)
	if err != nil {
		return err
	}
	return s.SaveData(ctx, schema.CollectionOf[T](), raws)
}

// Decode unmarshals the records carried by e into T.
func Decode[T schema.Record](e Event) ([]T, error) {
	out := make([]T, 0, len(e.Records))
	for _, raw := range e.Records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", e.Collection, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecords[T any](records []T) ([]json.RawMessage, error) {
	raws := make([]json.RawMessage, 0, len(records))
	for i := range records {
		b, err := json.Marshal(records[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		raws = append(raws, b)
	}
	return raws, nil
}

// splitRecords turns a stored JSON array into its elements.
func splitRecords(b []byte) ([]json.RawMessage, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, err
	}
	if raws == nil {
		raws = []json.RawMessage{}
	}
	return raws, nil
}

// extraFields holds, per collection and record id, stored JSON members the
// schema types do not declare. Update writes them back so records saved
// through SaveData keep fields this package does not know about.
type extraFields map[schema.Collection]map[string]map[string]json.RawMessage

// merge adds the extra members recorded for c to the matching records.
func (ex extraFields) merge(c schema.Collection, raws []json.RawMessage) ([]json.RawMessage, error) {
	byID := ex[c]
	if len(byID) == 0 {
		return raws, nil
	}

	out := make([]json.RawMessage, len(raws))
	for i, raw := range raws {
		out[i] = raw

		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, fmt.Errorf("failed to merge %s record %d: %w", c, i, err)
		}
		var id string
		if v, ok := members["id"]; ok {
			_ = json.Unmarshal(v, &id)
		}
		extra := byID[id]
		if id == "" || len(extra) == 0 {
			continue
		}
		for k, v := range extra {
			if _, ok := members[k]; !ok {
				members[k] = v
			}
		}
		b, err := json.Marshal(members)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s record %d: %w", c, i, err)
		}
		out[i] = b
	}
	return out, nil
}

// declaredFields returns the lower-cased JSON member names of struct T.
func declaredFields[T any]() map[string]bool {
	rt := reflect.TypeFor[T]()
	known := make(map[string]bool, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		known[strings.ToLower(name)] = true
	}
	return known
}

func recordID[T schema.Record](rec T) string {
	switch r := any(rec).(type) {
	case schema.Influencer:
		return r.ID
	case schema.Collaboration:
		return r.ID
	}
	return ""
}

// readStrict loads the collection holding T. A missing key yields an empty
// slice; any other failure is returned so callers never write over data
// they could not read. Undeclared members are recorded in ex.
func readStrict[T schema.Record](ctx context.Context, s *Service, ex extraFields) ([]T, error) {
	c := schema.CollectionOf[T]()
	out := []T{}

	b, err := s.store.Get(ctx, string(c))
	if errors.Is(err, store.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		s.metrics.RecordStoreError("get")
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	raws, err := splitRecords(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c, err)
	}

	known := declaredFields[T]()
	for i, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s record %d: %w", c, i, err)
		}
		out = append(out, rec)

		id := recordID(rec)
		if id == "" {
			continue
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			continue
		}
		for k, v := range members {
			if known[strings.ToLower(k)] {
				continue
			}
			if ex[c] == nil {
				ex[c] = make(map[string]map[string]json.RawMessage)
			}
			if ex[c][id] == nil {
				ex[c][id] = make(map[string]json.RawMessage)
			}
			ex[c][id][k] = v
		}
	}
	return out, nil
}

func (s *Service) loadDatasetLocked(ctx context.Context) (*Dataset, extraFields, error) {
	ex := extraFields{}
	influencers, err := readStrict[schema.Influencer](ctx, s, ex)
	if err != nil {
		return nil, nil, err
	}
	collaborations, err := readStrict[schema.Collaboration](ctx, s, ex)
	if err != nil {
		return nil, nil, err
	}
	return &Dataset{Influencers: influencers, Collaborations: collaborations}, ex, nil
}
