package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	roomserrors "github.com/timschopinski/hotel-management-system/internal/rooms/errors"
	"github.com/timschopinski/hotel-management-system/internal/rooms/validator"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *memRoomRepo) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rooms {
		if existing.OwnerID == room.OwnerID && existing.Name == room.Name {
			return roomserrors.ErrDuplicateName
		}
	}
	room.ID = primitive.NewObjectID().Hex()
	room.CreatedAt = time.Now()
	stored := *room
	m.rooms[room.ID] = &stored
	return nil
}

func (m *memRoomRepo) FindByID(_ context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok {
		copied := *room
		return &copied, nil
	}
	return nil, roomserrors.ErrNotFound
}

func (m *memRoomRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Room
	for _, room := range m.rooms {
		copied := *room
		result = append(result, &copied)
	}
	return result, nil
}

func (m *memRoomRepo) CountAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rooms)), nil
}

func (m *memRoomRepo) FindByOwner(_ context.Context, ownerID string) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Room
	for _, room := range m.rooms {
		if room.OwnerID == ownerID {
			copied := *room
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memRoomRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

// fakeGuard stands in for the reservations service.
type fakeGuard struct {
	reservationCount int64
	lockAcquired     bool
	lockReleased     bool
}

func (f *fakeGuard) AcquireRoomLock(_ context.Context, roomID string) (string, error) {
	f.lockAcquired = true
	return "room_lock_" + roomID, nil
}

func (f *fakeGuard) ReleaseRoomLock(_ context.Context, lockID string) error {
	f.lockReleased = true
	return nil
}

func (f *fakeGuard) CountByRoom(_ context.Context, roomID string) (int64, error) {
	return f.reservationCount, nil
}

func newTestService(guard *fakeGuard) (RoomService, *memRoomRepo) {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
	repo := newMemRoomRepo()
	svc := NewRoomService(repo, guard, validator.NewRoomValidator(cfg.Log), nil, cfg)
	return svc, repo
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(&fakeGuard{})
	ownerID := primitive.NewObjectID().Hex()

	room := &model.Room{Name: "Garden View"}
	if err := svc.Create(context.Background(), ownerID, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if room.ID == "" {
		t.Error("created room should have an id")
	}
	if room.OwnerID != ownerID {
		t.Errorf("owner must come from the authenticated caller, got %q", room.OwnerID)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _ := newTestService(&fakeGuard{})
	ownerID := primitive.NewObjectID().Hex()

	err := svc.Create(context.Background(), ownerID, &model.Room{Name: "x"})
	assertAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestCreateRoomDuplicateName(t *testing.T) {
	svc, _ := newTestService(&fakeGuard{})
	ownerID := primitive.NewObjectID().Hex()

	if err := svc.Create(context.Background(), ownerID, &model.Room{Name: "Garden View"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := svc.Create(context.Background(), ownerID, &model.Room{Name: "Garden View"})
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestDeleteRoom(t *testing.T) {
	guard := &fakeGuard{}
	svc, repo := newTestService(guard)
	ownerID := primitive.NewObjectID().Hex()

	room := &model.Room{Name: "Garden View"}
	if err := svc.Create(context.Background(), ownerID, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), ownerID, room.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), room.ID); err == nil {
		t.Error("room should be gone after delete")
	}
	if !guard.lockAcquired || !guard.lockReleased {
		t.Error("deletion must run under the room's advisory lock")
	}
}

func TestDeleteRoomWithReservations(t *testing.T) {
	guard := &fakeGuard{reservationCount: 3}
	svc, repo := newTestService(guard)
	ownerID := primitive.NewObjectID().Hex()

	room := &model.Room{Name: "Garden View"}
	if err := svc.Create(context.Background(), ownerID, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := svc.Delete(context.Background(), ownerID, room.ID)
	assertAppErrorCode(t, err, apperrors.CodeConflict)

	if _, err := repo.FindByID(context.Background(), room.ID); err != nil {
		t.Error("room must survive a blocked deletion")
	}
	if !guard.lockReleased {
		t.Error("lock must be released even when deletion is blocked")
	}
}

func TestDeleteRoomForeignOwner(t *testing.T) {
	svc, repo := newTestService(&fakeGuard{})
	ownerID := primitive.NewObjectID().Hex()

	room := &model.Room{Name: "Garden View"}
	if err := svc.Create(context.Background(), ownerID, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stranger := primitive.NewObjectID().Hex()
	err := svc.Delete(context.Background(), stranger, room.ID)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	if _, err := repo.FindByID(context.Background(), room.ID); err != nil {
		t.Error("room must survive a foreign deletion attempt")
	}
}

func TestDeleteUnknownRoom(t *testing.T) {
	svc, _ := newTestService(&fakeGuard{})

	err := svc.Delete(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestGetByOwner(t *testing.T) {
	svc, _ := newTestService(&fakeGuard{})
	ownerID := primitive.NewObjectID().Hex()
	otherID := primitive.NewObjectID().Hex()

	if err := svc.Create(context.Background(), ownerID, &model.Room{Name: "Garden View"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Create(context.Background(), otherID, &model.Room{Name: "Sea View"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rooms, err := svc.GetByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "Garden View" {
		t.Errorf("expected only the caller's room, got %d rooms", len(rooms))
	}
}
