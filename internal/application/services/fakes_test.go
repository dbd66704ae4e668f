package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/ports"
)

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]entities.Task
	err    error
}

func newFakeTaskRepo(tasks ...entities.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[int]entities.Task{}}
	for _, t := range tasks {
		if t.ID == 0 {
			r.nextID++
			t.ID = r.nextID
		} else if t.ID > r.nextID {
			r.nextID = t.ID
		}
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	created := *task
	created.ID = r.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.tasks[created.ID] = created
	return &created, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return &t, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return nil, entities.ErrTaskNotFound
	}
	updated := *task
	r.tasks[task.ID] = updated
	return &updated, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []entities.Task{}
	for _, t := range r.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entities.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	if _, ok := r.users[user.Email]; ok {
		return nil, entities.ErrUserExists
	}
	u := *user
	r.users[u.Email] = &u
	return &u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return u, nil
}

type countingSource struct {
	mu    sync.Mutex
	tasks []entities.Task
	err   error
	calls int
}

func (s *countingSource) FetchTasks(context.Context) ([]entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tasks, s.err
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) Invalidate(context.Context) {
	r.calls++
}
