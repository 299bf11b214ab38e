package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
)

type Firestore struct {
	client *firestore.Client
	schema *schemaRepository
	entity *entityRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.schema.collectionPrefix = prefix
		f.entity.collectionPrefix = prefix
	}
}

// New connects to the given Firestore database. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client: client,
		schema: newSchemaRepository(client),
		entity: newEntityRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Schema() interfaces.SchemaRepository {
	return f.schema
}

func (f *Firestore) Entity() interfaces.EntityRepository {
	return f.entity
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collection(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
