package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/codec"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// EditUseCase opens and submits edit sessions
type EditUseCase struct {
	registry   *codec.Registry
	schemas    *SchemaUseCase
	fetcher    interfaces.EntityFetcher
	persister  interfaces.Persister
	resolver   *ResolverUseCase
	attachment *AttachmentUseCase
}

func NewEditUseCase(registry *codec.Registry, schemas *SchemaUseCase, fetcher interfaces.EntityFetcher, persister interfaces.Persister, resolver *ResolverUseCase, attachment *AttachmentUseCase) *EditUseCase {
	if registry == nil {
		registry = codec.Default()
	}
	return &EditUseCase{
		registry:   registry,
		schemas:    schemas,
		fetcher:    fetcher,
		persister:  persister,
		resolver:   resolver,
		attachment: attachment,
	}
}

// OpenSession loads the schema and the entity and builds the initial EditState. An empty
// entityID opens a session for a new entity. Reopening invalidates cached reference
// resolutions of the entity.
func (uc *EditUseCase) OpenSession(ctx context.Context, kind types.EntityKind, entityID types.EntityID) (*EditSession, error) {
	schema, err := uc.schemas.Get(ctx, kind)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if entityID != "" {
		if uc.fetcher == nil {
			return nil, goerr.New("no entity source configured")
		}
		entity, err := uc.fetcher.FetchEntity(ctx, kind, entityID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load entity",
				goerr.V(model.EntityKindKey, kind),
				goerr.V(model.EntityIDKey, entityID))
		}
		raw = entity.Values
		if uc.resolver != nil {
			uc.resolver.Invalidate(entityID)
		}
	}

	return uc.NewSession(ctx, schema, kind, entityID, raw), nil
}

// NewSession builds a session from a schema and raw values already at hand
func (uc *EditUseCase) NewSession(ctx context.Context, schema *config.FieldSchema, kind types.EntityKind, entityID types.EntityID, raw map[string]any) *EditSession {
	return &EditSession{
		uc:       uc,
		schema:   schema,
		kind:     kind,
		entityID: entityID,
		raw:      raw,
		state:    buildDefaultEditState(ctx, uc.registry, schema, raw),
	}
}

// EditSession owns the EditState of one entity being edited
type EditSession struct {
	uc     *EditUseCase
	schema *config.FieldSchema
	kind   types.EntityKind

	mu       sync.Mutex
	entityID types.EntityID
	raw      map[string]any
	state    model.EditState
	notices  []model.Notice
}

func (s *EditSession) Schema() *config.FieldSchema { return s.schema }
func (s *EditSession) Kind() types.EntityKind      { return s.kind }

func (s *EditSession) EntityID() types.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entityID
}

// State returns a copy of the current EditState
func (s *EditSession) State() model.EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Raw returns the raw values the session was built from, or the last persisted ones
func (s *EditSession) Raw() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Apply replaces one field's value
func (s *EditSession) Apply(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := applyFieldChange(ctx, s.uc.registry, s.schema, s.state, name, value)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Editor renders the control of one field. Changes made through it are applied to the session.
func (s *EditSession) Editor(ctx context.Context, name string) (codec.Editor, error) {
	fd, ok := s.schema.Field(name)
	if !ok {
		return codec.Editor{}, goerr.Wrap(model.ErrUnknownField, "field not found in schema",
			goerr.V(model.FieldNameKey, name))
	}
	c, err := s.uc.registry.Get(fd.Type)
	if err != nil {
		return codec.Editor{}, err
	}

	s.mu.Lock()
	value := s.state[name]
	s.mu.Unlock()

	return c.Render(value, fd, func(v any) {
		if err := s.Apply(ctx, name, v); err != nil {
			logging.From(ctx).Warn("failed to apply editor change",
				slog.String(model.FieldNameKey, name),
				slog.Any("error", err))
		}
	}).WithCurrent(func() any {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.state[name]
	}), nil
}

// Editors renders every field in schema order
func (s *EditSession) Editors(ctx context.Context) []codec.Editor {
	editors := make([]codec.Editor, 0, len(s.schema.Fields))
	for _, fd := range s.schema.Fields {
		e, err := s.Editor(ctx, fd.Name)
		if err != nil {
			logging.From(ctx).Warn("skipping field without editor",
				slog.String(model.FieldNameKey, fd.Name),
				slog.Any("error", err))
			continue
		}
		editors = append(editors, e)
	}
	return editors
}

// Upload uploads data into an image or file field of the session
func (s *EditSession) Upload(ctx context.Context, fieldName string, data []byte, filename string) (*model.AttachmentRef, error) {
	if s.uc.attachment == nil {
		return NewAttachmentUseCase(nil).Upload(ctx, s, fieldName, data, filename)
	}
	return s.uc.attachment.Upload(ctx, s, fieldName, data, filename)
}

func (s *EditSession) addNotice(n model.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

// Notices returns pending user-facing notices, oldest first
func (s *EditSession) Notices() []model.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notice{}, s.notices...)
}

// DismissNotice removes the notice at index i. It reports false for an out of range index.
func (s *EditSession) DismissNotice(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.notices) {
		return false
	}
	s.notices = append(s.notices[:i], s.notices[i+1:]...)
	return true
}

// Validate checks the current state against the schema constraints
func (s *EditSession) Validate() error {
	return model.NewFieldValidator(s.schema).ValidateEditState(s.State())
}

// Payload serializes the current state without persisting it
func (s *EditSession) Payload(ctx context.Context) map[string]any {
	return serializeForSubmission(ctx, s.uc.registry, s.schema, s.State())
}

// Submit validates, serializes and persists the state. On success the session adopts the
// persisted values and rebuilds its state from them.
func (s *EditSession) Submit(ctx context.Context) (*model.Entity, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	entity, err := s.persist(ctx, s.Payload(ctx))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entityID = entity.ID
	s.raw = entity.Values
	s.state = buildDefaultEditState(ctx, s.uc.registry, s.schema, entity.Values)
	s.mu.Unlock()

	s.invalidate(entity.ID)
	return entity, nil
}

// SubmitField validates and persists only the named field, leaving every other stored value
// and every other pending edit of the session as it is.
func (s *EditSession) SubmitField(ctx context.Context, name string) (*model.Entity, error) {
	if err := model.NewFieldValidator(s.schema).ValidateField(name, s.State()[name]); err != nil {
		return nil, err
	}

	entity, err := s.persist(ctx, map[string]any{name: s.Payload(ctx)[name]})
	if err != nil {
		return nil, err
	}

	persisted := buildDefaultEditState(ctx, s.uc.registry, s.schema, entity.Values)
	s.mu.Lock()
	s.entityID = entity.ID
	s.raw = entity.Values
	s.state = s.state.Clone()
	s.state[name] = persisted[name]
	s.mu.Unlock()

	s.invalidate(entity.ID)
	return entity, nil
}

func (s *EditSession) persist(ctx context.Context, payload map[string]any) (*model.Entity, error) {
	if s.uc.persister == nil {
		return nil, goerr.Wrap(model.ErrPersistFailed, "no persister configured")
	}

	entityID := s.EntityID()
	entity, err := s.uc.persister.Persist(ctx, s.kind, entityID, payload)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrPersistFailed, err), "failed to persist entity",
			goerr.V(model.EntityKindKey, s.kind),
			goerr.V(model.EntityIDKey, entityID))
	}
	return entity, nil
}

func (s *EditSession) invalidate(id types.EntityID) {
	if s.uc.resolver != nil {
		s.uc.resolver.Invalidate(id)
	}
}
