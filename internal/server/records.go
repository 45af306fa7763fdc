package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alfredjeanlab/refdata/internal/events"
	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/alfredjeanlab/refdata/internal/store"
)

// createRecordInput holds transport-agnostic parameters for creating a record.
type createRecordInput struct {
	Type    string
	Name    string
	Payload model.Payload
}

// createRecord validates input and rule-set constraints, persists the record,
// and bumps the version counter, all inside one transaction. A validation
// failure aborts before any write. Returns inputError for missing type/name
// and *model.ValidationError for rule-set failures.
func (s *RegistryServer) createRecord(ctx context.Context, in createRecordInput) (*model.Record, error) {
	recordType := strings.TrimSpace(in.Type)
	if recordType == "" {
		return nil, inputError("Type is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, inputError("Name is required")
	}

	payload := model.ScrubPayload(in.Payload)

	var (
		rec     *model.Record
		version int64
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		check := model.ReferenceChecker(tx.RecordExists)

		errs, err := s.schemas.Validate(ctx, recordType, payload, check)
		if err != nil {
			return fmt.Errorf("validate record: %w", err)
		}
		if len(errs) > 0 {
			return &model.ValidationError{Errors: errs}
		}

		rec = &model.Record{
			Type:    recordType,
			Name:    name,
			Payload: payload,
		}
		if err := tx.CreateRecord(ctx, rec); err != nil {
			return fmt.Errorf("create record: %w", err)
		}

		version, err = tx.BumpVersion(ctx)
		if err != nil {
			return fmt.Errorf("bump version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicRecordCreated, events.RecordCreated{
		Item:    rec.ViewWithType(),
		Version: version,
	})

	return rec, nil
}

// updateRecord merges the patch into the existing payload, re-validates the
// merged result against the record's type, persists, and bumps the version
// counter inside one transaction. The existing record is fetched outside the
// transaction so a missing id fails fast with sql.ErrNoRows.
func (s *RegistryServer) updateRecord(ctx context.Context, id int64, name *string, patch model.Payload) (*model.Record, error) {
	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	scrubbed := model.ScrubPayload(patch)
	merged := model.MergePayload(existing.Payload, scrubbed)

	var (
		rec     *model.Record
		version int64
	)
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		check := model.ReferenceChecker(tx.RecordExists)

		errs, err := s.schemas.Validate(ctx, existing.Type, merged, check)
		if err != nil {
			return fmt.Errorf("validate record: %w", err)
		}
		if len(errs) > 0 {
			return &model.ValidationError{Errors: errs}
		}

		if name != nil && strings.TrimSpace(*name) == "" {
			return &model.ValidationError{Errors: []string{"Name must be a non-empty string"}}
		}

		rec, err = tx.UpdateRecord(ctx, id, name, merged)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		version, err = tx.BumpVersion(ctx)
		if err != nil {
			return fmt.Errorf("bump version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(scrubbed))
	for k := range scrubbed {
		changed = append(changed, k)
	}
	sort.Strings(changed)
	if name != nil {
		changed = append([]string{"name"}, changed...)
	}

	s.publish(ctx, events.TopicRecordUpdated, events.RecordUpdated{
		Item:    rec.ViewWithType(),
		Changed: changed,
		Version: version,
	})

	return rec, nil
}

// deleteRecord removes the record and bumps the version counter inside one
// transaction. A missing id fails fast with sql.ErrNoRows.
func (s *RegistryServer) deleteRecord(ctx context.Context, id int64) error {
	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	var version int64
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.DeleteRecord(ctx, id); err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		var err error
		version, err = tx.BumpVersion(ctx)
		if err != nil {
			return fmt.Errorf("bump version: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicRecordDeleted, events.RecordDeleted{
		ID:      existing.ID,
		Type:    existing.Type,
		Version: version,
	})

	return nil
}

// getVersion reads the global version counter, lazily creating it at 0.
func (s *RegistryServer) getVersion(ctx context.Context) (int64, error) {
	return s.store.Version(ctx)
}

// getAll returns the current version and every record grouped by type.
func (s *RegistryServer) getAll(ctx context.Context) (int64, map[string][]model.View, error) {
	version, err := s.store.Version(ctx)
	if err != nil {
		return 0, nil, err
	}

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return 0, nil, err
	}

	byType := make(map[string][]model.View)
	for _, rec := range records {
		byType[rec.Type] = append(byType[rec.Type], rec.View())
	}

	return version, byType, nil
}

// getByType returns the views of all records of one type, ordered by name.
func (s *RegistryServer) getByType(ctx context.Context, recordType string) ([]model.View, error) {
	recordType = strings.TrimSpace(recordType)
	if recordType == "" {
		return nil, inputError("Type parameter is required")
	}

	records, err := s.store.ListRecordsByType(ctx, recordType)
	if err != nil {
		return nil, err
	}

	items := make([]model.View, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.View())
	}
	return items, nil
}

// getByID returns a single record view including its type.
func (s *RegistryServer) getByID(ctx context.Context, id int64) (model.View, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.ViewWithType(), nil
}

// listTypes returns the distinct types with at least one record, ascending.
func (s *RegistryServer) listTypes(ctx context.Context) ([]string, error) {
	types, err := s.store.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}
