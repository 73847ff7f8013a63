package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/model"
)

const msgEventNotFound = "Sport event not found"

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) Create(ctx context.Context, user *model.AuthUser, req model.CreateEventRequest) (*model.SportEvent, error) {
	event := &model.SportEvent{
		ID:              uuid.New(),
		Name:            req.Name,
		Sport:           req.Sport,
		MaxParticipants: req.MaxParticipants,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		CreatedBy:       user.ID,
	}
	if err := validateStruct(event); err != nil {
		return nil, err
	}

	if err := s.repo.CreateSportEvent(ctx, event); err != nil {
		return nil, err
	}
	event.Creator = &model.EventCreator{ID: user.ID, Name: user.Name, Email: user.Email}
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]model.SportEvent, error) {
	return s.repo.ListSportEvents(ctx)
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*model.SportEvent, error) {
	event, err := s.repo.GetSportEvent(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, NotFoundError(msgEventNotFound, err)
		}
		return nil, err
	}
	return event, nil
}

// Update applies the non-nil fields of req. Only the creator may update.
func (s *EventService) Update(ctx context.Context, user *model.AuthUser, id uuid.UUID, req model.UpdateEventRequest) (*model.SportEvent, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != user.ID {
		return nil, ForbiddenError("You are not authorized to update this event")
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Sport != nil {
		event.Sport = *req.Sport
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = *req.MaxParticipants
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if err := validateStruct(event); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSportEvent(ctx, event); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, NotFoundError(msgEventNotFound, err)
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, user *model.AuthUser, id uuid.UUID) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatedBy != user.ID {
		return ForbiddenError("You are not authorized to delete this event")
	}

	if err := s.repo.DeleteSportEvent(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return NotFoundError(msgEventNotFound, err)
		}
		return err
	}
	return nil
}
