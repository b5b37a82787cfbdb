package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	reservationserrors "github.com/timschopinski/hotel-management-system/internal/reservations/errors"
	"github.com/timschopinski/hotel-management-system/internal/reservations/validator"
	roomserrors "github.com/timschopinski/hotel-management-system/internal/rooms/errors"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	mongotx "github.com/timschopinski/hotel-management-system/pkg/db/mongo"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

// fakeSessionContext satisfies mongo.SessionContext for transaction
// callbacks. Session methods are never called by the code under test.
type fakeSessionContext struct {
	context.Context
	mongo.Session
}

type memReservationRepo struct {
	mu           sync.Mutex
	reservations []*model.Reservation
}

func (m *memReservationRepo) Create(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation.ID = primitive.NewObjectID().Hex()
	reservation.CreatedAt = time.Now()
	stored := *reservation
	m.reservations = append(m.reservations, &stored)
	return nil
}

func (m *memReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *memReservationRepo) FindByRoom(_ context.Context, roomID string) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Reservation
	for _, r := range m.reservations {
		if r.RoomID == roomID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memReservationRepo) CountByRoom(_ context.Context, roomID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.reservations {
		if r.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (m *memReservationRepo) FindFiltered(_ context.Context, roomIDs []string, filter *model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		allowed[id] = true
	}
	var result []*model.Reservation
	for _, r := range m.reservations {
		if allowed[r.RoomID] {
			copied := *r
			result = append(result, &copied)
		}
	}
	if offset >= int64(len(result)) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memReservationRepo) CountFiltered(_ context.Context, roomIDs []string, filter *model.ReservationFilter) (int64, error) {
	found, err := m.FindFiltered(nil, roomIDs, filter, int(^uint(0)>>1), 0)
	return int64(len(found)), err
}

func (m *memReservationRepo) UpdateNotes(_ context.Context, id string, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ID == id {
			r.Notes = notes
			return nil
		}
	}
	return reservationserrors.ErrNotFound
}

func (m *memReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(fakeSessionContext{Context: ctx})
}

type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: make(map[string]bool)}
}

func (m *memLockRepo) Create(_ context.Context, lock *model.ReservationLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[lock.ID] {
		return reservationserrors.ErrLockHeld
	}
	m.locks[lock.ID] = true
	return nil
}

func (m *memLockRepo) Delete(_ context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

func (m *memLockRepo) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

type fakeRooms struct {
	rooms map[string]*model.Room
}

func (f *fakeRooms) FindByID(_ context.Context, id string) (*model.Room, error) {
	if room, ok := f.rooms[id]; ok {
		copied := *room
		return &copied, nil
	}
	return nil, roomserrors.ErrNotFound
}

func (f *fakeRooms) FindByOwner(_ context.Context, ownerID string) ([]*model.Room, error) {
	var result []*model.Room
	for _, room := range f.rooms {
		if room.OwnerID == ownerID {
			copied := *room
			result = append(result, &copied)
		}
	}
	return result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		LockTTL:           time.Second,
		LockWaitTimeout:   200 * time.Millisecond,
		LockRetryInterval: time.Millisecond,
		Log:               logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

type testEnv struct {
	service ReservationService
	repo    *memReservationRepo
	locks   *memLockRepo
	rooms   *fakeRooms
}

func newTestEnv(rooms ...*model.Room) *testEnv {
	cfg := testConfig()
	roomMap := make(map[string]*model.Room)
	for _, room := range rooms {
		roomMap[room.ID] = room
	}

	repo := &memReservationRepo{}
	locks := newMemLockRepo()
	roomSource := &fakeRooms{rooms: roomMap}

	svc := NewReservationService(
		repo,
		locks,
		roomSource,
		validator.NewReservationValidator(cfg.Log),
		nil,
		cfg,
	)

	return &testEnv{service: svc, repo: repo, locks: locks, rooms: roomSource}
}

func testRoom(ownerID string) *model.Room {
	return &model.Room{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Seaside Suite",
		OwnerID: ownerID,
	}
}

func validReservation(roomID string, startDay, endDay int) *model.Reservation {
	return &model.Reservation{
		RoomID:     roomID,
		GuestName:  "Alice Carter",
		GuestEmail: "alice@example.com",
		StartDate:  model.NewDate(2026, time.March, startDay),
		EndDate:    model.NewDate(2026, time.March, endDay),
	}
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

func TestAdmitSuccess(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	reservation := validReservation(room.ID, 10, 15)
	if err := env.service.Admit(context.Background(), reservation); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	if reservation.ID == "" {
		t.Error("admitted reservation should have an id")
	}
	if count, _ := env.repo.CountByRoom(context.Background(), room.ID); count != 1 {
		t.Errorf("expected 1 stored reservation, got %d", count)
	}
	if env.locks.held() != 0 {
		t.Error("room lock should be released after admission")
	}
}

func TestAdmitOverlapRejected(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	if err := env.service.Admit(context.Background(), validReservation(room.ID, 10, 15)); err != nil {
		t.Fatalf("first Admit failed: %v", err)
	}

	overlapping := []struct {
		name     string
		start    int
		end      int
	}{
		{"identical", 10, 15},
		{"contained", 11, 12},
		{"containing", 5, 20},
		{"overlap at start", 8, 11},
		{"overlap at end", 14, 20},
	}

	for _, tt := range overlapping {
		t.Run(tt.name, func(t *testing.T) {
			err := env.service.Admit(context.Background(), validReservation(room.ID, tt.start, tt.end))
			assertAppErrorCode(t, err, apperrors.CodeConflict)
		})
	}

	if count, _ := env.repo.CountByRoom(context.Background(), room.ID); count != 1 {
		t.Errorf("rejected admissions must not be stored, got %d reservations", count)
	}
}

func TestAdmitBackToBackAllowed(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	if err := env.service.Admit(context.Background(), validReservation(room.ID, 10, 15)); err != nil {
		t.Fatalf("first Admit failed: %v", err)
	}
	if err := env.service.Admit(context.Background(), validReservation(room.ID, 15, 20)); err != nil {
		t.Fatalf("back-to-back Admit failed: %v", err)
	}
	if err := env.service.Admit(context.Background(), validReservation(room.ID, 5, 10)); err != nil {
		t.Fatalf("preceding back-to-back Admit failed: %v", err)
	}
}

func TestAdmitUnknownRoom(t *testing.T) {
	env := newTestEnv()

	err := env.service.Admit(context.Background(), validReservation(primitive.NewObjectID().Hex(), 10, 15))
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestAdmitUnknownRoomBeatsValidation(t *testing.T) {
	env := newTestEnv()

	// Reversed dates on a missing room still reports the missing room.
	err := env.service.Admit(context.Background(), validReservation(primitive.NewObjectID().Hex(), 15, 10))
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestAdmitInvalidDates(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	tests := []struct {
		name  string
		start int
		end   int
	}{
		{"reversed", 15, 10},
		{"zero length", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.service.Admit(context.Background(), validReservation(room.ID, tt.start, tt.end))
			assertAppErrorCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestAdmitMissingGuestDetails(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	reservation := validReservation(room.ID, 10, 15)
	reservation.GuestEmail = "not-an-email"
	err := env.service.Admit(context.Background(), reservation)
	assertAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestAdmitLockWaitTimeout(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	// Simulate another holder that never releases.
	if err := env.locks.Create(context.Background(), &model.ReservationLock{ID: "room_lock_" + room.ID}); err != nil {
		t.Fatalf("failed to seed lock: %v", err)
	}

	err := env.service.Admit(context.Background(), validReservation(room.ID, 10, 15))
	assertAppErrorCode(t, err, apperrors.CodeConflict)
}

func TestAdmitConcurrentOverlapping(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	const attempts = 20
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = env.service.Admit(context.Background(), validReservation(room.ID, 10, 15))
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.GetAppError(err) != nil && apperrors.GetAppError(err).Code == apperrors.CodeConflict:
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("exactly one concurrent admission must succeed, got %d", succeeded)
	}
	if conflicted != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicted)
	}
	if count, _ := env.repo.CountByRoom(context.Background(), room.ID); count != 1 {
		t.Errorf("expected 1 stored reservation, got %d", count)
	}
}

func TestAdmitConcurrentDisjoint(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			// Back-to-back day ranges never overlap.
			errs[i] = env.service.Admit(context.Background(), validReservation(room.ID, i+1, i+2))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("disjoint admission %d failed: %v", i, err)
		}
	}
	if count, _ := env.repo.CountByRoom(context.Background(), room.ID); count != attempts {
		t.Errorf("expected %d stored reservations, got %d", attempts, count)
	}
}

func TestUpdateNotes(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	room := testRoom(ownerID)
	env := newTestEnv(room)

	reservation := validReservation(room.ID, 10, 15)
	if err := env.service.Admit(context.Background(), reservation); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	notes := "late checkout requested"
	updated, err := env.service.UpdateNotes(context.Background(), ownerID, reservation.ID, &model.ReservationUpdate{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateNotes failed: %v", err)
	}
	if updated.Notes != notes {
		t.Errorf("got notes %q, want %q", updated.Notes, notes)
	}
	if !updated.StartDate.Equal(reservation.StartDate) || !updated.EndDate.Equal(reservation.EndDate) {
		t.Error("dates must not change on a notes update")
	}
}

func TestUpdateNotesForeignOwner(t *testing.T) {
	room := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(room)

	reservation := validReservation(room.ID, 10, 15)
	if err := env.service.Admit(context.Background(), reservation); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	notes := "should not apply"
	stranger := primitive.NewObjectID().Hex()
	_, err := env.service.UpdateNotes(context.Background(), stranger, reservation.ID, &model.ReservationUpdate{Notes: &notes})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	stored, _ := env.repo.FindByID(context.Background(), reservation.ID)
	if stored.Notes != "" {
		t.Error("notes must not change when the caller does not own the room")
	}
}

func TestUpdateNotesUnknownReservation(t *testing.T) {
	env := newTestEnv()

	notes := "anything"
	_, err := env.service.UpdateNotes(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), &model.ReservationUpdate{Notes: &notes})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestGetForOwnerRejectsUnknownSortField(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	env := newTestEnv(testRoom(ownerID))

	_, _, err := env.service.GetForOwner(context.Background(), ownerID, &model.ReservationFilter{SortBy: "guest_email"}, 10, 0)
	assertAppErrorCode(t, err, apperrors.CodeValidation)
}

func TestGetForOwnerForeignRoomFilter(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	ownRoom := testRoom(ownerID)
	foreignRoom := testRoom(primitive.NewObjectID().Hex())
	env := newTestEnv(ownRoom, foreignRoom)

	if err := env.service.Admit(context.Background(), validReservation(foreignRoom.ID, 10, 15)); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	reservations, total, err := env.service.GetForOwner(context.Background(), ownerID, &model.ReservationFilter{RoomID: foreignRoom.ID}, 10, 0)
	if err != nil {
		t.Fatalf("GetForOwner failed: %v", err)
	}
	if len(reservations) != 0 || total != 0 {
		t.Error("filtering by a foreign room must return nothing")
	}
}

func TestGetForOwnerListsOwnedRooms(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	roomA := testRoom(ownerID)
	roomB := testRoom(ownerID)
	env := newTestEnv(roomA, roomB)

	if err := env.service.Admit(context.Background(), validReservation(roomA.ID, 10, 15)); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if err := env.service.Admit(context.Background(), validReservation(roomB.ID, 10, 15)); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	reservations, total, err := env.service.GetForOwner(context.Background(), ownerID, nil, 10, 0)
	if err != nil {
		t.Fatalf("GetForOwner failed: %v", err)
	}
	if total != 2 || len(reservations) != 2 {
		t.Errorf("expected 2 reservations, got total=%d len=%d", total, len(reservations))
	}
}

func TestGetByRoomUnknownRoom(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.GetByRoom(context.Background(), primitive.NewObjectID().Hex())
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}
