package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/boxwire/internal/boxstate"
	"github.com/specialistvlad/boxwire/internal/value"
)

type Store struct {
	states sync.Map // Key: box ID, Value: boxstate.Status
	errors sync.Map // Key: box ID, Value: error
	views  sync.Map // Key: box ID, Value: value.Value
}

func New() *Store {
	return &Store{}
}

var _ boxstate.Store = (*Store)(nil)

func (s *Store) SetStatus(ctx context.Context, id string, status boxstate.Status) error {
	s.states.Store(id, status)
	return nil
}

func (s *Store) GetStatus(ctx context.Context, id string) (boxstate.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return boxstate.Idle, nil
	}
	return status.(boxstate.Status), nil
}

func (s *Store) SetError(ctx context.Context, id string, boxErr error) error {
	if boxErr == nil {
		s.errors.Delete(id)
		return nil
	}
	s.errors.Store(id, boxErr)
	return nil
}

func (s *Store) GetError(ctx context.Context, id string) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil // If not found, there is no error.
	}
	return err.(error), nil
}

func (s *Store) SetView(ctx context.Context, id string, view value.Value) error {
	s.views.Store(id, value.Publish(view))
	return nil
}

func (s *Store) GetView(ctx context.Context, id string) (value.Value, error) {
	v, ok := s.views.Load(id)
	if !ok {
		return nil, nil
	}
	return v.(value.Value), nil
}

func (s *Store) Forget(ctx context.Context, id string) error {
	s.states.Delete(id)
	s.errors.Delete(id)
	s.views.Delete(id)
	return nil
}

func (s *Store) Snapshot(ctx context.Context) (map[string]boxstate.Entry, error) {
	out := map[string]boxstate.Entry{}
	touch := func(key any) boxstate.Entry {
		return out[key.(string)]
	}
	s.states.Range(func(key, v any) bool {
		e := touch(key)
		e.Status = v.(boxstate.Status)
		out[key.(string)] = e
		return true
	})
	s.errors.Range(func(key, v any) bool {
		e := touch(key)
		e.Err = v.(error)
		out[key.(string)] = e
		return true
	})
	s.views.Range(func(key, v any) bool {
		e := touch(key)
		e.View = v.(value.Value)
		out[key.(string)] = e
		return true
	})
	return out, nil
}
