package slabview

import (
	"reflect"
)

type Query1[A any] struct{ store *Store }
type Query2[A, B any] struct{ store *Store }
type Query3[A, B, C any] struct{ store *Store }

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{store: cmd.app.store} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{store: cmd.app.store}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{store: cmd.app.store}
}

func componentType[A any]() reflect.Type {
	var a A
	return reflect.TypeOf(a)
}

// Map calls m for every entity carrying A until m returns false.
func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	table := q.store.components[componentType[A]()]
	for entityId, ptr := range table {
		if !m(entityId, ptr.(*A)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	tableA := q.store.components[componentType[A]()]
	tableB := q.store.components[componentType[B]()]
	for entityId, ptrA := range tableA {
		ptrB, ok := tableB[entityId]
		if !ok {
			continue
		}
		if !m(entityId, ptrA.(*A), ptrB.(*B)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	tableA := q.store.components[componentType[A]()]
	tableB := q.store.components[componentType[B]()]
	tableC := q.store.components[componentType[C]()]
	for entityId, ptrA := range tableA {
		ptrB, okB := tableB[entityId]
		ptrC, okC := tableC[entityId]
		if !okB || !okC {
			continue
		}
		if !m(entityId, ptrA.(*A), ptrB.(*B), ptrC.(*C)) {
			return
		}
	}
}

// GetComponent fetches one entity's component directly, bypassing iteration.
func GetComponent[A any](cmd *Commands, entityId EntityId) (*A, bool) {
	ptr, ok := cmd.app.store.get(entityId, componentType[A]())
	if !ok {
		return nil, false
	}
	return ptr.(*A), true
}
