package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "github.com/timschopinski/hotel-management-system/internal/reservations/errors"
	"github.com/timschopinski/hotel-management-system/internal/reservations/repository"
	"github.com/timschopinski/hotel-management-system/internal/reservations/validator"
	roomserrors "github.com/timschopinski/hotel-management-system/internal/rooms/errors"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	"github.com/timschopinski/hotel-management-system/pkg/model"
	"github.com/timschopinski/hotel-management-system/pkg/sanitizer"
)

// RoomSource supplies the room facts the admission engine consumes. The
// rooms repository satisfies it.
type RoomSource interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Room, error)
}

type ReservationService interface {
	Admit(ctx context.Context, reservation *model.Reservation) error
	GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error)
	GetForOwner(ctx context.Context, ownerID string, filter *model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
	UpdateNotes(ctx context.Context, callerID, reservationID string, update *model.ReservationUpdate) (*model.Reservation, error)

	// Room-lock primitives are shared with the rooms service so room
	// deletion and admission cannot interleave.
	AcquireRoomLock(ctx context.Context, roomID string) (string, error)
	ReleaseRoomLock(ctx context.Context, lockID string) error
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.LockRepository
	rooms     RoomSource
	validator *validator.ReservationValidator
	events    EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.LockRepository,
	rooms RoomSource,
	validator *validator.ReservationValidator,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

// Admit decides whether a requested reservation may join the room's set of
// confirmed reservations. The check-then-insert sequence runs inside a
// transaction while holding the room's advisory lock, so two concurrent
// requests with overlapping ranges can never both succeed.
func (s *reservationService) Admit(ctx context.Context, reservation *model.Reservation) error {
	s.sanitize(reservation)

	// A booking against an unknown room is a lookup failure, not a
	// validation failure; check it first.
	if _, err := s.findRoom(ctx, reservation.RoomID); err != nil {
		return err
	}

	if err := s.validate(reservation); err != nil {
		return err
	}

	lockID, err := s.AcquireRoomLock(ctx, reservation.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.ReleaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-resolve the room inside the transaction: it may have been
		// deleted while we waited for the lock.
		if _, err := s.findRoom(sessCtx, reservation.RoomID); err != nil {
			return err
		}
		if err := s.checkOverlap(sessCtx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Reservation admission failed",
			"room_id", reservation.RoomID,
			"start_date", reservation.StartDate,
			"end_date", reservation.EndDate,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Reservation admitted",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"start_date", reservation.StartDate,
		"end_date", reservation.EndDate,
	)
	s.publishEvent(ctx, EventReservationCreated, reservation)
	return nil
}

func (s *reservationService) GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	if _, err := s.findRoom(ctx, roomID); err != nil {
		return nil, err
	}

	reservations, err := s.repo.FindByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

// GetForOwner lists reservations across every room the caller owns,
// narrowed by the optional filter.
func (s *reservationService) GetForOwner(
	ctx context.Context,
	ownerID string,
	filter *model.ReservationFilter,
	limit int, offset int64,
) ([]*model.Reservation, int64, error) {
	if err := s.validator.ValidateFilter(filter); err != nil {
		s.cfg.Log.Warn("Reservation filter validation failed", "owner_id", ownerID, "error", err)
		return nil, 0, apperrors.Validation("Invalid filter", map[string]any{"error": err.Error()})
	}

	rooms, err := s.rooms.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to resolve owned rooms", err)
	}

	roomIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}

	if filter != nil && filter.RoomID != "" {
		// Narrowing to a room the caller does not own yields an empty
		// result, identical to a room that does not exist.
		if !contains(roomIDs, filter.RoomID) {
			return []*model.Reservation{}, 0, nil
		}
		roomIDs = []string{filter.RoomID}
	}

	if len(roomIDs) == 0 {
		return []*model.Reservation{}, 0, nil
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountFiltered(ctx, roomIDs, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindFiltered(ctx, roomIDs, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// UpdateNotes changes the only mutable reservation field. A caller who does
// not own the reservation's room gets the same not-found as a missing id,
// so the endpoint does not leak which reservations exist.
func (s *reservationService) UpdateNotes(
	ctx context.Context,
	callerID, reservationID string,
	update *model.ReservationUpdate,
) (*model.Reservation, error) {
	existing, err := s.findReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.FindByID(ctx, existing.RoomID)
	if err != nil || room.OwnerID != callerID {
		return nil, apperrors.NotFoundWithID("Reservation", reservationID)
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", reservationID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if update.Notes == nil {
		return existing, nil
	}

	if err := s.repo.UpdateNotes(ctx, reservationID, *update.Notes); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", reservationID)
		}
		return nil, apperrors.Internal("Failed to update reservation", err)
	}

	existing.Notes = *update.Notes
	s.cfg.Log.Info("Reservation updated", "id", reservationID)
	s.publishEvent(ctx, EventReservationUpdated, existing)
	return existing, nil
}

func (s *reservationService) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	return s.repo.CountByRoom(ctx, roomID)
}

// AcquireRoomLock takes the room's advisory lock, retrying on an interval
// until the configured wait deadline. Lock hold time is bounded by the TTL
// index on the lock collection, so a crashed holder cannot wedge the room.
func (s *reservationService) AcquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("room_lock_%s", roomID)
	deadline := time.Now().Add(s.cfg.LockWaitTimeout)

	for {
		lock := &model.ReservationLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.LockTTL),
		}

		err := s.lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, reservationserrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire room lock", err)
		}
		if time.Now().After(deadline) {
			return "", apperrors.Conflict("This room is being booked by another request. Please try again.")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Internal("Request ended while waiting for room lock", ctx.Err())
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

func (s *reservationService) ReleaseRoomLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// --- Helpers ---

func (s *reservationService) sanitize(reservation *model.Reservation) {
	reservation.GuestName = sanitizer.NormalizeName(reservation.GuestName)
	reservation.GuestEmail = sanitizer.NormalizeEmail(reservation.GuestEmail)
	reservation.Notes = sanitizer.TrimAndNormalize(reservation.Notes)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// checkOverlap tests the candidate against every existing reservation of
// the room with the half-open interval predicate. No date pre-filter is
// applied; the predicate is exact.
func (s *reservationService) checkOverlap(ctx context.Context, reservation *model.Reservation) error {
	existing, err := s.repo.FindByRoom(ctx, reservation.RoomID)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, other := range existing {
		if other.ID == reservation.ID {
			continue
		}
		if other.Overlaps(reservation.StartDate, reservation.EndDate) {
			return apperrors.Conflict(fmt.Sprintf(
				"Room is not available for the selected dates: conflicts with reservation %s - %s",
				other.StartDate, other.EndDate,
			)).WithDetails(map[string]any{
				"conflicting_start_date": other.StartDate.String(),
				"conflicting_end_date":   other.EndDate.String(),
			})
		}
	}
	return nil
}

func (s *reservationService) findRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		return nil, apperrors.Internal("Failed to resolve room", err)
	}
	return room, nil
}

func (s *reservationService) findReservation(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) || errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
