package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service aplica validação, IDs e timestamps antes de chamar o Repository.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type ServiceOption func(*Service)

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Note, error) {
	title, content, err := ValidateCreate(in)
	if err != nil {
		return Note{}, err
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, Note{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Note, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}
	next, err := ValidateUpdate(current, in)
	if err != nil {
		return Note{}, err
	}
	next.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, next)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
