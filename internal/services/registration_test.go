package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"echoo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func strPtr(s string) *string { return &s }

type mockUserRepository struct {
	users map[int64]*domain.User
	err   error
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error { return nil }

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) SetSelfie(ctx context.Context, id int64, ref *domain.SelfieRef) error {
	return nil
}

type mockEventRepository struct {
	byFotoOwlID map[int64]*domain.Event
	err         error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error { return nil }

func (m *mockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return nil, domain.ErrNotFound
}

func (m *mockEventRepository) GetByFotoOwlEventID(ctx context.Context, fotoowlEventID int64) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.byFotoOwlID[fotoowlEventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	return nil, nil
}

type mockRegistrationRepository struct {
	regs      map[string]*domain.Registration
	createErr error
	created   []*domain.Registration
}

func regKey(userID, eventID int64) string {
	return fmt.Sprintf("%d:%d", userID, eventID)
}

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, reg)
	return nil
}

func (m *mockRegistrationRepository) GetByUserAndEvent(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	if reg, ok := m.regs[regKey(userID, fotoowlEventID)]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Registration, error) {
	return nil, nil
}

func (m *mockRegistrationRepository) ListRegisteredEvents(ctx context.Context, userID int64) ([]*domain.RegisteredEvent, error) {
	return nil, nil
}

func (m *mockRegistrationRepository) DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error) {
	return 0, nil
}

type mockImageRepository struct {
	images []*domain.Image
	err    error
}

func (m *mockImageRepository) Create(ctx context.Context, image *domain.Image, setSelfie bool) error {
	return nil
}

func (m *mockImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return nil, domain.ErrNotFound
}

func (m *mockImageRepository) Update(ctx context.Context, id int64, patch *domain.ImagePatch, setSelfie bool) (*domain.Image, error) {
	return nil, domain.ErrNotFound
}

func (m *mockImageRepository) ListByUserID(ctx context.Context, userID int64, filter domain.ImageListFilter) ([]*domain.Image, error) {
	return m.images, m.err
}

func (m *mockImageRepository) ListByFotoOwlImageIDs(ctx context.Context, fotoowlImageIDs []int64) ([]*domain.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[int64]struct{}, len(fotoowlImageIDs))
	for _, id := range fotoowlImageIDs {
		wanted[id] = struct{}{}
	}
	var out []*domain.Image
	for _, img := range m.images {
		if img.FotoOwlImageID == nil {
			continue
		}
		if _, ok := wanted[*img.FotoOwlImageID]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}

type mockMatchProvider struct {
	match     *domain.MatchRequest
	createErr error
	images    []domain.ProviderImage
	listErr   error

	gotPage     int
	gotPageSize int
}

func (m *mockMatchProvider) CreateRequest(ctx context.Context, eventID int64, eventKey, filePath string) (*domain.MatchRequest, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.match, nil
}

func (m *mockMatchProvider) ImageList(ctx context.Context, eventID int64, page, pageSize int, eventKey string, requestID int64, requestKey string) ([]domain.ProviderImage, error) {
	m.gotPage = page
	m.gotPageSize = pageSize
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.images, nil
}

type mockSelfieFetcher struct {
	path          string
	err           error
	cleanupCalled bool
}

func (m *mockSelfieFetcher) Fetch(ctx context.Context, url string) (string, func(), error) {
	if m.err != nil {
		return "", func() {}, m.err
	}
	return m.path, func() { m.cleanupCalled = true }, nil
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	userWithSelfie := &domain.User{ID: 7, Username: "alice", SelfieURL: strPtr("https://cdn.example.com/selfie.jpg")}
	userNoSelfie := &domain.User{ID: 8, Username: "bob"}
	event := &domain.Event{ID: 1, Name: "Gala", FotoOwlEventID: int64Ptr(1413), FotoOwlEventKey: strPtr("evkey")}

	tests := []struct {
		name      string
		userID    int64
		eventID   int64
		userRepo  *mockUserRepository
		eventRepo *mockEventRepository
		regRepo   *mockRegistrationRepository
		provider  *mockMatchProvider
		errIs     error
	}{
		{
			name:     "success persists provider identifiers",
			userID:   7,
			eventID:  1413,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1413: event,
			}},
			regRepo: &mockRegistrationRepository{regs: map[string]*domain.Registration{}},
			provider: &mockMatchProvider{match: &domain.MatchRequest{
				RequestID:   77,
				RequestKey:  "k1",
				RedirectURL: strPtr("https://app.fotoowl.ai/r/77"),
			}},
		},
		{
			name:     "already registered is a conflict",
			userID:   7,
			eventID:  1413,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1413: event,
			}},
			regRepo: &mockRegistrationRepository{regs: map[string]*domain.Registration{
				regKey(7, 1413): {ID: 1, UserID: 7, FotoOwlEventID: 1413},
			}},
			provider: &mockMatchProvider{},
			errIs:    domain.ErrConflict,
		},
		{
			name:     "missing selfie fails the precondition",
			userID:   8,
			eventID:  1413,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{8: userNoSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1413: event,
			}},
			regRepo:  &mockRegistrationRepository{regs: map[string]*domain.Registration{}},
			provider: &mockMatchProvider{},
			errIs:    domain.ErrPreconditionFailed,
		},
		{
			name:      "unknown event is not found",
			userID:    7,
			eventID:   9999,
			userRepo:  &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{}},
			regRepo:   &mockRegistrationRepository{regs: map[string]*domain.Registration{}},
			provider:  &mockMatchProvider{},
			errIs:     domain.ErrNotFound,
		},
		{
			name:     "event without a provider key is not found",
			userID:   7,
			eventID:  1500,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1500: {ID: 2, Name: "No key", FotoOwlEventID: int64Ptr(1500)},
			}},
			regRepo:  &mockRegistrationRepository{regs: map[string]*domain.Registration{}},
			provider: &mockMatchProvider{},
			errIs:    domain.ErrNotFound,
		},
		{
			name:     "provider outage surfaces as unavailable",
			userID:   7,
			eventID:  1413,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1413: event,
			}},
			regRepo: &mockRegistrationRepository{regs: map[string]*domain.Registration{}},
			provider: &mockMatchProvider{
				createErr: fmt.Errorf("%w: submit selfie to provider: connection refused", domain.ErrUnavailable),
			},
			errIs: domain.ErrUnavailable,
		},
		{
			name:     "storage conflict on insert closes the race",
			userID:   7,
			eventID:  1413,
			userRepo: &mockUserRepository{users: map[int64]*domain.User{7: userWithSelfie}},
			eventRepo: &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
				1413: event,
			}},
			regRepo: &mockRegistrationRepository{
				regs:      map[string]*domain.Registration{},
				createErr: domain.ErrConflict,
			},
			provider: &mockMatchProvider{match: &domain.MatchRequest{RequestID: 77, RequestKey: "k1"}},
			errIs:    domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockSelfieFetcher{path: "/tmp/selfie-test.jpg"}
			svc := NewRegistrationService(tt.userRepo, tt.eventRepo, tt.regRepo, &mockImageRepository{}, tt.provider, fetcher, discardLogger())

			reg, err := svc.Register(ctx, tt.userID, tt.eventID)
			if tt.errIs != nil {
				if !errors.Is(err, tt.errIs) {
					t.Fatalf("expected %v, got %v", tt.errIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reg.RequestID != 77 || reg.RequestKey != "k1" {
				t.Fatalf("correlation not persisted: %+v", reg)
			}
			if reg.UserID != tt.userID || reg.FotoOwlEventID != tt.eventID {
				t.Fatalf("registration identity wrong: %+v", reg)
			}
			if reg.RedirectURL == nil || *reg.RedirectURL != "https://app.fotoowl.ai/r/77" {
				t.Fatalf("redirect url not persisted: %+v", reg)
			}
			if len(tt.regRepo.created) != 1 {
				t.Fatalf("expected one stored registration, got %d", len(tt.regRepo.created))
			}
			if !fetcher.cleanupCalled {
				t.Fatal("selfie temp file was not cleaned up")
			}
		})
	}
}

func TestRegistrationService_Register_CleansUpOnProviderFailure(t *testing.T) {
	ctx := context.Background()
	userRepo := &mockUserRepository{users: map[int64]*domain.User{
		7: {ID: 7, Username: "alice", SelfieURL: strPtr("https://cdn.example.com/selfie.jpg")},
	}}
	eventRepo := &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
		1413: {ID: 1, FotoOwlEventID: int64Ptr(1413), FotoOwlEventKey: strPtr("evkey")},
	}}
	fetcher := &mockSelfieFetcher{path: "/tmp/selfie-test.jpg"}
	provider := &mockMatchProvider{createErr: errors.New("boom")}
	svc := NewRegistrationService(userRepo, eventRepo, &mockRegistrationRepository{}, &mockImageRepository{}, provider, fetcher, discardLogger())

	if _, err := svc.Register(ctx, 7, 1413); err == nil {
		t.Fatal("expected error")
	}
	if !fetcher.cleanupCalled {
		t.Fatal("selfie temp file was not cleaned up on the failure path")
	}
}

func TestRegistrationService_ListMatchedImages(t *testing.T) {
	ctx := context.Background()
	regRepo := &mockRegistrationRepository{regs: map[string]*domain.Registration{
		regKey(7, 1413): {ID: 1, UserID: 7, FotoOwlEventID: 1413, RequestID: 77, RequestKey: "k1"},
	}}
	eventRepo := &mockEventRepository{byFotoOwlID: map[int64]*domain.Event{
		1413: {ID: 1, FotoOwlEventID: int64Ptr(1413), FotoOwlEventKey: strPtr("evkey")},
	}}

	t.Run("merges local records in provider order", func(t *testing.T) {
		provider := &mockMatchProvider{images: []domain.ProviderImage{
			{ID: 10, Name: "a.jpg", ImgURL: "https://provider/a.jpg"},
			{ID: 11, Name: "b.jpg", ImgURL: "https://provider/b.jpg"},
			{ID: 12, Name: "c.jpg", ImgURL: "https://provider/c.jpg"},
		}}
		imageRepo := &mockImageRepository{images: []*domain.Image{
			{ID: 100, Name: "a-local.jpg", FotoOwlImageID: int64Ptr(10), FotoOwlURL: strPtr("https://provider/a.jpg"), FilecoinURL: strPtr("https://mirror/a.jpg")},
			{ID: 102, Name: "c-local.jpg", FotoOwlImageID: int64Ptr(12), FotoOwlURL: strPtr("https://provider/c.jpg")},
		}}
		svc := NewRegistrationService(&mockUserRepository{}, eventRepo, regRepo, imageRepo, provider, &mockSelfieFetcher{}, discardLogger())

		got, err := svc.ListMatchedImages(ctx, 7, 1413, 2, -1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if provider.gotPage != 2 || provider.gotPageSize != -1 {
			t.Fatalf("pagination not passed through: page=%d page_size=%d", provider.gotPage, provider.gotPageSize)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(got))
		}
		if got[0].ID == nil || *got[0].ID != 100 {
			t.Fatalf("entry 0 should be the local record: %+v", got[0])
		}
		if got[0].ImageURL == nil || *got[0].ImageURL != "https://mirror/a.jpg" {
			t.Fatalf("mirror URL should win for entry 0: %+v", got[0])
		}
		if got[1].ID != nil {
			t.Fatalf("entry 1 should be a placeholder: %+v", got[1])
		}
		if got[1].ImageURL == nil || *got[1].ImageURL != "https://provider/b.jpg" {
			t.Fatalf("placeholder should carry the provider URL: %+v", got[1])
		}
		if got[1].Description == nil || *got[1].Description != "Matched image from event 1413" {
			t.Fatalf("placeholder description wrong: %+v", got[1])
		}
		if got[2].ID == nil || *got[2].ID != 102 {
			t.Fatalf("entry 2 should be the local record: %+v", got[2])
		}
		if got[2].ImageURL == nil || *got[2].ImageURL != "https://provider/c.jpg" {
			t.Fatalf("entry 2 should fall back to the provider URL: %+v", got[2])
		}
	})

	t.Run("empty provider list yields an empty slice", func(t *testing.T) {
		provider := &mockMatchProvider{}
		svc := NewRegistrationService(&mockUserRepository{}, eventRepo, regRepo, &mockImageRepository{}, provider, &mockSelfieFetcher{}, discardLogger())

		got, err := svc.ListMatchedImages(ctx, 7, 1413, 0, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("not registered is not found", func(t *testing.T) {
		svc := NewRegistrationService(&mockUserRepository{}, eventRepo, regRepo, &mockImageRepository{}, &mockMatchProvider{}, &mockSelfieFetcher{}, discardLogger())

		_, err := svc.ListMatchedImages(ctx, 99, 1413, 0, 20)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		provider := &mockMatchProvider{listErr: fmt.Errorf("%w: fetch match list", domain.ErrUnavailable)}
		svc := NewRegistrationService(&mockUserRepository{}, eventRepo, regRepo, &mockImageRepository{}, provider, &mockSelfieFetcher{}, discardLogger())

		_, err := svc.ListMatchedImages(ctx, 7, 1413, 0, 20)
		if !errors.Is(err, domain.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	})
}

func int64Ptr(v int64) *int64 { return &v }
