package slabview

import (
	"fmt"
	"reflect"
	"sync"
)

type EntityId uint64

type set[T comparable] = map[T]struct{}

// Store is the entity/component table. A slab viewer scene holds a few dozen
// entities (one target, a handful of replicas and indicators), so components
// live in per-type maps keyed by entity and are always stored behind pointers
// so queries mutate them in place.
type Store struct {
	components map[reflect.Type]map[EntityId]any
	entities   map[EntityId]set[reflect.Type]

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId
}

func makeStore() *Store {
	return &Store{
		components:      make(map[reflect.Type]map[EntityId]any),
		entities:        make(map[EntityId]set[reflect.Type]),
		entityIdCounter: EntityId(1),
	}
}

func (s *Store) nextEntityId() EntityId {
	s.idGeneratorLock.Lock()
	defer s.idGeneratorLock.Unlock()

	id := s.entityIdCounter
	s.entityIdCounter += 1
	return id
}

// componentPtr normalizes a component argument to (pointer value, struct type).
// Components may be passed by value or by pointer; either way a pointer to a
// struct is stored.
func componentPtr(component any) (any, reflect.Type) {
	t := reflect.TypeOf(component)
	v := reflect.ValueOf(component)

	if t.Kind() == reflect.Pointer {
		if t.Elem().Kind() != reflect.Struct {
			panic(fmt.Sprintf("component must be a struct or pointer to struct, got %s", t))
		}
		return component, t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("component must be a struct or pointer to struct, got %s", t))
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	return ptr.Interface(), t
}

func (s *Store) insertEntity(entityId EntityId, components ...any) EntityId {
	if _, ok := s.entities[entityId]; !ok {
		s.entities[entityId] = make(set[reflect.Type])
	}
	s.addComponents(entityId, components...)
	return entityId
}

func (s *Store) addComponents(entityId EntityId, components ...any) {
	types, ok := s.entities[entityId]
	if !ok {
		// Entity was removed before the buffered add flushed; drop silently.
		return
	}
	for _, component := range components {
		ptr, t := componentPtr(component)
		table, ok := s.components[t]
		if !ok {
			table = make(map[EntityId]any)
			s.components[t] = table
		}
		table[entityId] = ptr
		types[t] = struct{}{}
	}
}

func (s *Store) removeComponents(entityId EntityId, components ...any) {
	types, ok := s.entities[entityId]
	if !ok {
		return
	}
	for _, component := range components {
		_, t := componentPtr(component)
		if table, ok := s.components[t]; ok {
			delete(table, entityId)
		}
		delete(types, t)
	}
}

func (s *Store) removeEntity(entityId EntityId) {
	types, ok := s.entities[entityId]
	if !ok {
		return
	}
	for t := range types {
		delete(s.components[t], entityId)
	}
	delete(s.entities, entityId)
}

func (s *Store) get(entityId EntityId, t reflect.Type) (any, bool) {
	table, ok := s.components[t]
	if !ok {
		return nil, false
	}
	ptr, ok := table[entityId]
	return ptr, ok
}
