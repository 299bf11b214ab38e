package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
)

func ptr(f float64) *float64 { return &f }

func personSchema() *config.FieldSchema {
	return &config.FieldSchema{
		Kind: types.EntityKindPerson,
		Fields: []config.FieldDefinition{
			{Key: "field_nickname", Name: "nickname", Label: "Nickname", Type: types.FieldTypeText},
			{Key: "field_age", Name: "age", Label: "Age", Type: types.FieldTypeNumber, Min: ptr(0), Step: ptr(1)},
			{
				Key: "field_color", Name: "color", Label: "Color", Type: types.FieldTypeSelect,
				Choices: config.Choices{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}},
			},
			{
				Key: "field_teams", Name: "teams", Label: "Teams", Type: types.FieldTypeRelationship,
				PostType: []types.EntityKind{types.EntityKindTeam}, Max: ptr(3),
			},
		},
	}
}

func runSchemaRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schema().Put(ctx, personSchema())).Required()

		got, err := repo.Schema().Get(ctx, types.EntityKindPerson)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Kind).Equal(types.EntityKindPerson)
		gt.Array(t, got.Fields).Length(4).Required()
		gt.Value(t, got.Fields[0].Name).Equal("nickname")
		gt.Value(t, got.Fields[2].Choices).Equal(config.Choices{{Value: "red", Label: "Red"}, {Value: "blue", Label: "Blue"}})
		gt.Value(t, got.Fields[3].PostType).Equal([]types.EntityKind{types.EntityKindTeam})
		gt.Number(t, got.Fields[3].MaxItems()).Equal(3)
	})

	t.Run("Put replaces existing schema", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schema().Put(ctx, personSchema())).Required()
		replaced := &config.FieldSchema{
			Kind:   types.EntityKindPerson,
			Fields: []config.FieldDefinition{{Key: "field_bio", Name: "bio", Type: types.FieldTypeTextarea}},
		}
		gt.NoError(t, repo.Schema().Put(ctx, replaced)).Required()

		got, err := repo.Schema().Get(ctx, types.EntityKindPerson)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Fields).Length(1)
	})

	t.Run("Get returns not found for unknown kind", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Schema().Get(context.Background(), types.EntityKindTeam)
		gt.Error(t, err).Is(model.ErrSchemaNotFound)
	})

	t.Run("Put rejects invalid kind", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Schema().Put(context.Background(), &config.FieldSchema{Kind: "committee"})
		gt.Value(t, err).NotNil()
	})

	t.Run("List returns every schema", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Schema().Put(ctx, personSchema())).Required()
		gt.NoError(t, repo.Schema().Put(ctx, &config.FieldSchema{Kind: types.EntityKindTeam})).Required()

		schemas, err := repo.Schema().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, schemas).Length(2).Required()
		gt.Value(t, schemas[0].Kind).Equal(types.EntityKindPerson)
		gt.Value(t, schemas[1].Kind).Equal(types.EntityKindTeam)
	})
}

func TestSchemaRepository(t *testing.T) {
	for name, newRepo := range repositories {
		t.Run(name, func(t *testing.T) {
			runSchemaRepositoryTest(t, newRepo)
		})
	}
}
