package todo

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound        = errors.New("todo not found")
	ErrTaskRequired    = errors.New("task is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrPersist         = errors.New("persist todos")
	ErrUnknownDriver   = errors.New("unknown storage driver")
)

type CreateInput struct {
	Task     string `mapstructure:"task"`
	Category string `mapstructure:"category"`
	DueDate  string `mapstructure:"due_date"`
	Priority string `mapstructure:"priority"`
}

type ListFilter struct {
	ShowAll bool
	Search  string
}

// Store owns the todo collection. Every mutation is written through to the
// persistence before the lock is released.
type Store struct {
	mux         sync.RWMutex
	todos       []Todo
	nextID      uint64
	persistence Persistence
	logger      zerolog.Logger
}

func NewStore(p Persistence, logger zerolog.Logger) (*Store, error) {
	todos, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}

	var maxID uint64
	for _, todo := range todos {
		if todo.ID > maxID {
			maxID = todo.ID
		}
	}

	logger.Debug().Int("count", len(todos)).Uint64("next_id", maxID+1).Msg("todos loaded")

	return &Store{
		todos:       todos,
		nextID:      maxID + 1,
		persistence: p,
		logger:      logger,
	}, nil
}

func (s *Store) Create(input CreateInput) (Todo, error) {
	task := strings.TrimSpace(input.Task)
	if task == "" {
		return Todo{}, ErrTaskRequired
	}

	priority, err := ParsePriority(input.Priority)
	if err != nil {
		return Todo{}, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	todo := Todo{
		ID:       s.nextID,
		Task:     task,
		Category: category,
		DueDate:  strings.TrimSpace(input.DueDate),
		Priority: priority,
	}

	s.nextID++
	s.todos = append(s.todos, todo)

	return todo, s.save()
}

// MarkDone is idempotent: marking a done todo again succeeds and persists.
func (s *Store) MarkDone(id uint64) (Todo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Todo{}, ErrNotFound
	}

	s.todos[i].Done = true

	return s.todos[i], s.save()
}

func (s *Store) Delete(id uint64) (Todo, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Todo{}, ErrNotFound
	}

	todo := s.todos[i]
	s.todos = append(s.todos[:i], s.todos[i+1:]...)

	return todo, s.save()
}

func (s *Store) Get(id uint64) (Todo, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Todo{}, ErrNotFound
	}

	return s.todos[i], nil
}

// List returns a copy of the todos matching filter, in insertion order.
func (s *Store) List(filter ListFilter) []Todo {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mux.RLock()
	defer s.mux.RUnlock()

	todos := make([]Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		if !filter.ShowAll && todo.Done {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(todo.Task), search) {
			continue
		}

		todos = append(todos, todo)
	}

	return todos
}

func (s *Store) indexOf(id uint64) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}

	return -1
}

// save must be called with the write lock held.
func (s *Store) save() error {
	snapshot := make([]Todo, len(s.todos))
	copy(snapshot, s.todos)

	if err := s.persistence.Save(snapshot); err != nil {
		s.logger.Error().Err(err).Int("count", len(snapshot)).Msg("failed to persist todos")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	return nil
}
