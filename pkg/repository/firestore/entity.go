package firestore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// entityDoc is the stored form of an entity. NameLower backs prefix search.
type entityDoc struct {
	ID        string         `firestore:"id"`
	Kind      string         `firestore:"kind"`
	Name      string         `firestore:"name"`
	NameLower string         `firestore:"name_lower"`
	Thumbnail string         `firestore:"thumbnail"`
	Values    map[string]any `firestore:"values"`
	CreatedAt time.Time      `firestore:"created_at"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

func (d *entityDoc) toModel() *model.Entity {
	values := d.Values
	if values == nil {
		values = make(map[string]any)
	}
	return &model.Entity{
		ID:        types.EntityID(d.ID),
		Kind:      types.EntityKind(d.Kind),
		Name:      d.Name,
		Thumbnail: d.Thumbnail,
		Values:    values,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type entityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEntityRepository(client *firestore.Client) *entityRepository {
	return &entityRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *entityRepository) entitiesCollection() string {
	return collection(r.collectionPrefix, "entities")
}

func (r *entityRepository) counterCollection() string {
	return collection(r.collectionPrefix, "counters")
}

func (r *entityRepository) entityCounterDoc() string {
	return "entity_counter"
}

// docID keeps ids of different kinds apart, they may collide
func (r *entityRepository) docID(kind types.EntityKind, id types.EntityID) string {
	return kind.String() + "_" + id.String()
}

func (r *entityRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.entityCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *entityRepository) Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	docSnap, err := r.client.Collection(r.entitiesCollection()).Doc(r.docID(kind, id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
				goerr.V(model.EntityKindKey, kind),
				goerr.V(model.EntityIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get entity",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}

	var doc entityDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode entity", goerr.V("doc_id", docSnap.Ref.ID))
	}
	return doc.toModel(), nil
}

func (r *entityRepository) List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	iter := r.client.Collection(r.entitiesCollection()).
		Where("kind", "==", kind.String()).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	return r.collect(iter, kind)
}

func (r *entityRepository) collect(iter *firestore.DocumentIterator, kind types.EntityKind) ([]*model.Entity, error) {
	entities := make([]*model.Entity, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate entities", goerr.V(model.EntityKindKey, kind))
		}

		var doc entityDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode entity", goerr.V("doc_id", docSnap.Ref.ID))
		}
		entities = append(entities, doc.toModel())
	}
	return entities, nil
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	if err := entity.Kind.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid entity kind")
	}

	id := entity.ID
	if id == "" {
		nextID, err := r.getNextID(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get next ID")
		}
		id = types.EntityID(strconv.FormatInt(nextID, 10))
	}

	now := time.Now().UTC()
	doc := &entityDoc{
		ID:        id.String(),
		Kind:      entity.Kind.String(),
		Name:      entity.Name,
		NameLower: strings.ToLower(entity.Name),
		Thumbnail: entity.Thumbnail,
		Values:    entity.Values,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Values == nil {
		doc.Values = make(map[string]any)
	}

	_, err := r.client.Collection(r.entitiesCollection()).Doc(r.docID(entity.Kind, id)).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.New("entity already exists",
				goerr.V(model.EntityKindKey, entity.Kind),
				goerr.V(model.EntityIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to create entity",
			goerr.V(model.EntityKindKey, entity.Kind),
			goerr.V(model.EntityIDKey, id))
	}

	return doc.toModel(), nil
}

// Update writes each value under its own field path so that keys absent from values keep
// their stored value.
func (r *entityRepository) Update(ctx context.Context, kind types.EntityKind, id types.EntityID, values map[string]any) (*model.Entity, error) {
	updates := make([]firestore.Update, 0, len(values)+1)
	for name, v := range values {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"values", name},
			Value:     v,
		})
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now().UTC()})

	_, err := r.client.Collection(r.entitiesCollection()).Doc(r.docID(kind, id)).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrEntityNotFound, "entity not found",
				goerr.V(model.EntityKindKey, kind),
				goerr.V(model.EntityIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update entity",
			goerr.V(model.EntityKindKey, kind),
			goerr.V(model.EntityIDKey, id))
	}

	return r.Get(ctx, kind, id)
}

func (r *entityRepository) Search(ctx context.Context, query string, limit int) (*model.SearchResult, error) {
	people, err := r.search(ctx, types.EntityKindPerson, query, limit)
	if err != nil {
		return nil, err
	}
	teams, err := r.search(ctx, types.EntityKindTeam, query, limit)
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{People: people, Teams: teams}, nil
}

// search runs a name_lower range query, it needs the (kind, name_lower) composite index
func (r *entityRepository) search(ctx context.Context, kind types.EntityKind, query string, limit int) ([]model.ForeignEntitySummary, error) {
	prefix := strings.ToLower(strings.TrimSpace(query))
	q := r.client.Collection(r.entitiesCollection()).
		Where("kind", "==", kind.String()).
		Where("name_lower", ">=", prefix).
		Where("name_lower", "<", prefix+"\uf8ff").
		OrderBy("name_lower", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	entities, err := r.collect(iter, kind)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search entities", goerr.V("query", query))
	}

	summaries := make([]model.ForeignEntitySummary, 0, len(entities))
	for _, e := range entities {
		summaries = append(summaries, e.Summary())
	}
	return summaries, nil
}
