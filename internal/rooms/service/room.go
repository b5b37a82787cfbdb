package service

import (
	"context"
	"errors"
	"sync"

	roomserrors "github.com/timschopinski/hotel-management-system/internal/rooms/errors"
	"github.com/timschopinski/hotel-management-system/internal/rooms/repository"
	"github.com/timschopinski/hotel-management-system/internal/rooms/validator"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	"github.com/timschopinski/hotel-management-system/pkg/kafka"
	"github.com/timschopinski/hotel-management-system/pkg/model"
	"github.com/timschopinski/hotel-management-system/pkg/sanitizer"
)

const (
	EventRoomDeleted = "room.deleted"

	eventSource = "rooms-service"
)

// ReservationGuard exposes the reservation-side primitives room deletion
// needs: the room's advisory lock and the count of bookings attached to it.
// The reservations service satisfies it.
type ReservationGuard interface {
	AcquireRoomLock(ctx context.Context, roomID string) (string, error)
	ReleaseRoomLock(ctx context.Context, lockID string) error
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, message kafka.Message) error
}

type RoomService interface {
	Create(ctx context.Context, ownerID string, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*model.Room, error)
	Delete(ctx context.Context, callerID, id string) error
}

type roomService struct {
	repo         repository.RoomRepository
	reservations ReservationGuard
	validator    *validator.RoomValidator
	events       EventPublisher
	cfg          *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	reservations ReservationGuard,
	validator *validator.RoomValidator,
	events EventPublisher,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:         repo,
		reservations: reservations,
		validator:    validator,
		events:       events,
		cfg:          cfg,
	}
}

func (s *roomService) Create(ctx context.Context, ownerID string, room *model.Room) error {
	room.ID = ""
	room.OwnerID = ownerID
	room.Name = sanitizer.TrimAndNormalize(room.Name)
	room.Description = sanitizer.TrimAndNormalize(room.Description)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "owner_id", ownerID, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return apperrors.Conflict("A room with this name already exists")
		}
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "owner_id", ownerID)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountAll(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) GetByOwner(ctx context.Context, ownerID string) ([]*model.Room, error) {
	rooms, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

// Delete removes a room the caller owns. It takes the room's advisory lock
// so a concurrent booking cannot slip in between the reservation count and
// the delete, and refuses rooms that still have reservations.
func (s *roomService) Delete(ctx context.Context, callerID, id string) error {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != callerID {
		// Ownership failures look identical to a missing room.
		return apperrors.NotFoundWithID("Room", id)
	}

	lockID, err := s.reservations.AcquireRoomLock(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.reservations.ReleaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	count, err := s.reservations.CountByRoom(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to count reservations for room", err)
	}
	if count > 0 {
		return apperrors.Conflict("Room has existing reservations and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted", "id", id, "owner_id", callerID)
	s.publishDeleted(ctx, room)
	return nil
}

func (s *roomService) publishDeleted(ctx context.Context, room *model.Room) {
	if s.events == nil {
		return
	}

	message, err := kafka.NewEventMessage(EventRoomDeleted, room.ID, eventSource, room)
	if err != nil {
		s.cfg.Log.Error("Failed to build event message", "event_type", EventRoomDeleted, "error", err)
		return
	}

	if err := s.events.Publish(ctx, message); err != nil {
		s.cfg.Log.Error("Failed to publish event", "event_type", EventRoomDeleted, "error", err)
	}
}
