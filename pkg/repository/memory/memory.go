package memory

import (
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	schema *schemaRepository
	entity *entityRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		schema: newSchemaRepository(),
		entity: newEntityRepository(),
	}
}

func (m *Memory) Schema() interfaces.SchemaRepository {
	return m.schema
}

func (m *Memory) Entity() interfaces.EntityRepository {
	return m.entity
}

func (m *Memory) Close() error {
	return nil
}
