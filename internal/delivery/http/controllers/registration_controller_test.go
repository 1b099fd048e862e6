package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echoo/internal/delivery/http/helpers"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockRegistrationService struct {
	reg     *domain.Registration
	images  []*domain.MatchedImage
	err     error
	gotPage int
	gotSize int
}

func (m *mockRegistrationService) Register(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) ListMatchedImages(ctx context.Context, userID, fotoowlEventID int64, page, pageSize int) ([]*domain.MatchedImage, error) {
	m.gotPage = page
	m.gotSize = pageSize
	if m.err != nil {
		return nil, m.err
	}
	return m.images, nil
}

func (m *mockRegistrationService) GetRegistration(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) ListMyRegistrations(ctx context.Context, userID int64) ([]*domain.Registration, error) {
	return nil, m.err
}

func (m *mockRegistrationService) ListMyRegisteredEvents(ctx context.Context, userID int64) ([]*domain.RegisteredEvent, error) {
	return nil, m.err
}

func authedRequest(method, target string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.SetUserID(req.Context(), 7))
}

func TestRegistrationController_RegisterEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authed     bool
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"event_id": 1413}`,
			authed:     true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       `{"event_id": 1413}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "non-positive event id",
			body:       `{"event_id": 0}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown body field",
			body:       `{"event_id": 1413, "bogus": true}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "already registered",
			body:       `{"event_id": 1413}`,
			authed:     true,
			svcErr:     fmt.Errorf("%w: user already registered for event 1413", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "no selfie on file",
			body:       `{"event_id": 1413}`,
			authed:     true,
			svcErr:     fmt.Errorf("%w: user must have a selfie uploaded before registering for events", domain.ErrPreconditionFailed),
			wantStatus: http.StatusPreconditionFailed,
			wantCode:   helpers.ErrCodePreconditionFailed,
		},
		{
			name:       "unknown event",
			body:       `{"event_id": 1413}`,
			authed:     true,
			svcErr:     fmt.Errorf("%w: event not found for event_id 1413", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "provider down",
			body:       `{"event_id": 1413}`,
			authed:     true,
			svcErr:     fmt.Errorf("create match request: %w", domain.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   helpers.ErrCodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRegistrationService{
				reg: &domain.Registration{ID: 1, UserID: 7, FotoOwlEventID: 1413, RequestID: 77, RequestKey: "k1"},
				err: tt.svcErr,
			}
			ctrl := NewRegistrationController(testLogger(), svc)

			var req *http.Request
			if tt.authed {
				req = authedRequest(http.MethodPost, "/register-event", tt.body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/register-event", strings.NewReader(tt.body))
			}
			w := httptest.NewRecorder()
			ctrl.RegisterEvent(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			var resp helpers.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if tt.wantCode != "" {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("expected error code %q, got %+v", tt.wantCode, resp.Error)
				}
			} else if resp.Error != nil {
				t.Fatalf("unexpected error: %+v", resp.Error)
			}
		})
	}
}

func TestRegistrationController_MatchedImageList(t *testing.T) {
	t.Run("passes pagination through including -1", func(t *testing.T) {
		svc := &mockRegistrationService{images: []*domain.MatchedImage{}}
		ctrl := NewRegistrationController(testLogger(), svc)

		req := authedRequest(http.MethodGet, "/get-event-matched-image-list?event_id=1413&page=3&page_size=-1", "")
		w := httptest.NewRecorder()
		ctrl.MatchedImageList(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (body %s)", w.Code, w.Body.String())
		}
		if svc.gotPage != 3 || svc.gotSize != -1 {
			t.Fatalf("pagination not forwarded: page=%d size=%d", svc.gotPage, svc.gotSize)
		}
	})

	t.Run("missing event_id is a bad request", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

		req := authedRequest(http.MethodGet, "/get-event-matched-image-list", "")
		w := httptest.NewRecorder()
		ctrl.MatchedImageList(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("not registered maps to 404", func(t *testing.T) {
		svc := &mockRegistrationService{err: fmt.Errorf("%w: register first", domain.ErrNotFound)}
		ctrl := NewRegistrationController(testLogger(), svc)

		req := authedRequest(http.MethodGet, "/get-event-matched-image-list?event_id=1413", "")
		w := httptest.NewRecorder()
		ctrl.MatchedImageList(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
