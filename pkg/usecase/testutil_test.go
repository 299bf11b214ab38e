package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/repository/memory"
)

func ptr(f float64) *float64 { return &f }

func personSchema() *config.FieldSchema {
	return &config.FieldSchema{
		Kind: types.EntityKindPerson,
		Fields: []config.FieldDefinition{
			{Key: "field_nickname", Name: "nickname", Label: "Nickname", Type: types.FieldTypeText},
			{Key: "field_age", Name: "age", Label: "Age", Type: types.FieldTypeNumber, Append: " years"},
			{
				Key: "field_colors", Name: "colors", Label: "Colors", Type: types.FieldTypeCheckbox,
				Choices: config.Choices{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}},
			},
			{Key: "field_active", Name: "active", Label: "Active", Type: types.FieldTypeTrueFalse},
			{Key: "field_photo", Name: "photo", Label: "Photo", Type: types.FieldTypeImage},
			{Key: "field_site", Name: "site", Label: "Website", Type: types.FieldTypeLink},
			{
				Key: "field_members", Name: "members", Label: "Members", Type: types.FieldTypeRelationship,
				PostType: []types.EntityKind{types.EntityKindPerson, types.EntityKindTeam},
			},
		},
	}
}

// newFixtureRepo returns a memory repository with the person schema, person 5 and team 9
func newFixtureRepo(t *testing.T) *memory.Memory {
	t.Helper()
	ctx := context.Background()

	repo := memory.New()
	gt.NoError(t, repo.Schema().Put(ctx, personSchema())).Required()

	fixtures := []*model.Entity{
		{ID: "5", Kind: types.EntityKindPerson, Name: "Alice", Thumbnail: "https://example.com/alice.png"},
		{ID: "9", Kind: types.EntityKindTeam, Name: "Platform"},
		{ID: "12", Kind: types.EntityKindPerson, Name: "bob", Values: map[string]any{
			"nickname": "Bobby",
			"age":      float64(30),
			"members":  []any{map[string]any{"ID": float64(5)}, float64(9)},
		}},
	}
	for _, e := range fixtures {
		_, err := repo.Entity().Create(ctx, e)
		gt.NoError(t, err).Required()
	}
	return repo
}

// countingFetcher counts single-entity lookups and can fail with a transport error. When
// gate is set each lookup reports on started and waits until gate is closed.
type countingFetcher struct {
	repo    *memory.Memory
	err     error
	started chan struct{}
	gate    chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) FetchEntity(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.repo.Entity().Get(ctx, kind, id)
}

func (f *countingFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingUploader struct{}

func (failingUploader) UploadFile(ctx context.Context, data []byte, filename string) (*model.Attachment, error) {
	return nil, errors.New("connection reset")
}

type staticUploader struct {
	attachment *model.Attachment
}

func (u staticUploader) UploadFile(ctx context.Context, data []byte, filename string) (*model.Attachment, error) {
	return u.attachment, nil
}

// missingPersister fails every write as if the entity had been deleted in the meantime
type missingPersister struct{}

func (missingPersister) Persist(ctx context.Context, kind types.EntityKind, id types.EntityID, payload map[string]any) (*model.Entity, error) {
	return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found", goerr.V(model.EntityIDKey, id))
}

type failingMetadata struct{}

func (failingMetadata) FetchMetadata(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	return nil, errors.New("backend unavailable")
}
