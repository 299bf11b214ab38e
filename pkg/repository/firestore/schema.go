package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/model/config"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type schemaRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSchemaRepository(client *firestore.Client) *schemaRepository {
	return &schemaRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *schemaRepository) schemasCollection() string {
	return collection(r.collectionPrefix, "schemas")
}

func (r *schemaRepository) Get(ctx context.Context, kind types.EntityKind) (*config.FieldSchema, error) {
	docSnap, err := r.client.Collection(r.schemasCollection()).Doc(kind.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrSchemaNotFound, "schema not found",
				goerr.V(model.EntityKindKey, kind))
		}
		return nil, goerr.Wrap(err, "failed to get schema", goerr.V(model.EntityKindKey, kind))
	}

	var schema config.FieldSchema
	if err := docSnap.DataTo(&schema); err != nil {
		return nil, goerr.Wrap(err, "failed to decode schema", goerr.V(model.EntityKindKey, kind))
	}
	return &schema, nil
}

func (r *schemaRepository) Put(ctx context.Context, schema *config.FieldSchema) error {
	if err := schema.Kind.Validate(); err != nil {
		return goerr.Wrap(err, "invalid schema kind")
	}

	_, err := r.client.Collection(r.schemasCollection()).Doc(schema.Kind.String()).Set(ctx, schema)
	if err != nil {
		return goerr.Wrap(err, "failed to save schema", goerr.V(model.EntityKindKey, schema.Kind))
	}
	return nil
}

func (r *schemaRepository) List(ctx context.Context) ([]*config.FieldSchema, error) {
	iter := r.client.Collection(r.schemasCollection()).OrderBy("kind", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	schemas := make([]*config.FieldSchema, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate schemas")
		}

		var schema config.FieldSchema
		if err := docSnap.DataTo(&schema); err != nil {
			return nil, goerr.Wrap(err, "failed to decode schema", goerr.V("doc_id", docSnap.Ref.ID))
		}
		schemas = append(schemas, &schema)
	}
	return schemas, nil
}
