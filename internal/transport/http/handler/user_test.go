package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neilotoole/slogt"
	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/transport/http/handler"
	"github.com/perchhq/perch/internal/usecase"
)

type fakeUserUsecase struct {
	getByID       func(ctx context.Context, id int64) (*domain.User, error)
	search        func(ctx context.Context, q string, limit int) ([]domain.User, error)
	updateProfile func(ctx context.Context, userID int64, input usecase.UpdateProfileInput) (*domain.User, error)
	setPassword   func(ctx context.Context, userID int64, current, next string) error
	deleteAccount func(ctx context.Context, userID int64) error
}

func (f *fakeUserUsecase) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return f.getByID(ctx, id)
}

func (f *fakeUserUsecase) Search(ctx context.Context, q string, limit int) ([]domain.User, error) {
	return f.search(ctx, q, limit)
}

func (f *fakeUserUsecase) UpdateProfile(ctx context.Context, userID int64, input usecase.UpdateProfileInput) (*domain.User, error) {
	return f.updateProfile(ctx, userID, input)
}

func (f *fakeUserUsecase) SetPassword(ctx context.Context, userID int64, current, next string) error {
	return f.setPassword(ctx, userID, current, next)
}

func (f *fakeUserUsecase) DeleteAccount(ctx context.Context, userID int64) error {
	return f.deleteAccount(ctx, userID)
}

type fakeFollowLister struct {
	followers func(ctx context.Context, userID int64) ([]domain.User, error)
	following func(ctx context.Context, userID int64) ([]domain.User, error)
}

func (f *fakeFollowLister) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	return f.followers(ctx, userID)
}

func (f *fakeFollowLister) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	return f.following(ctx, userID)
}

type fakeLikeLister struct {
	likedMessageIDs func(ctx context.Context, userID int64) ([]int64, error)
}

func (f *fakeLikeLister) LikedMessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.likedMessageIDs(ctx, userID)
}

type fakeReauthConsumer struct {
	checkAndConsume func(ctx context.Context, rawToken string) (int64, error)
}

func (f *fakeReauthConsumer) CheckAndConsume(ctx context.Context, rawToken string) (int64, error) {
	return f.checkAndConsume(ctx, rawToken)
}

// newUserEngine wires the handler with the caller authenticated as user 7.
func newUserEngine(t *testing.T, users *fakeUserUsecase, follows *fakeFollowLister, likes *fakeLikeLister, reauth *fakeReauthConsumer) *gin.Engine {
	h := handler.NewUserHandler(users, follows, likes, reauth, slogt.New(t))

	asUser7 := func(c *gin.Context) { c.Set("userID", int64(7)) }

	r := gin.New()
	r.GET("/users/:id", asUser7, h.GetByID)
	r.GET("/users/:id/followers", asUser7, h.Followers)
	r.GET("/users/:id/likes", asUser7, h.Likes)
	r.PATCH("/me", asUser7, h.UpdateMe)
	r.DELETE("/me", asUser7, h.DeleteMe)
	r.PUT("/me/password", asUser7, h.ChangePassword)
	return r
}

func doJSON(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetUser_NotFound_Returns404(t *testing.T) {
	users := &fakeUserUsecase{
		getByID: func(_ context.Context, _ int64) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	r := newUserEngine(t, users, &fakeFollowLister{}, &fakeLikeLister{}, &fakeReauthConsumer{})

	w := doJSON(r, http.MethodGet, "/users/99", "", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetUser_NonNumericID_Returns404(t *testing.T) {
	r := newUserEngine(t, &fakeUserUsecase{}, &fakeFollowLister{}, &fakeLikeLister{}, &fakeReauthConsumer{})

	w := doJSON(r, http.MethodGet, "/users/abc", "", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateMe_MissingReauthHeader_Returns401(t *testing.T) {
	updateCalled := false
	users := &fakeUserUsecase{
		updateProfile: func(_ context.Context, _ int64, _ usecase.UpdateProfileInput) (*domain.User, error) {
			updateCalled = true
			return &domain.User{}, nil
		},
	}
	r := newUserEngine(t, users, &fakeFollowLister{}, &fakeLikeLister{}, &fakeReauthConsumer{})

	w := doJSON(r, http.MethodPatch, "/me", `{"username":"ada","email":"ada@example.com"}`, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if updateCalled {
		t.Error("profile updated without reauth token")
	}
}

func TestUpdateMe_ExpiredReauth_Returns401WithDistinctMessage(t *testing.T) {
	reauth := &fakeReauthConsumer{
		checkAndConsume: func(_ context.Context, _ string) (int64, error) {
			return 0, domain.ErrReauthExpired
		},
	}
	r := newUserEngine(t, &fakeUserUsecase{}, &fakeFollowLister{}, &fakeLikeLister{}, reauth)

	w := doJSON(r, http.MethodPatch, "/me", `{"username":"ada","email":"ada@example.com"}`,
		map[string]string{"X-Reauth-Token": "stale"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "expired") {
		t.Errorf("body = %s, want expired-specific message", w.Body.String())
	}
}

func TestUpdateMe_TokenForOtherUser_Returns401(t *testing.T) {
	reauth := &fakeReauthConsumer{
		checkAndConsume: func(_ context.Context, _ string) (int64, error) {
			return 99, nil // token belongs to someone else
		},
	}
	r := newUserEngine(t, &fakeUserUsecase{}, &fakeFollowLister{}, &fakeLikeLister{}, reauth)

	w := doJSON(r, http.MethodPatch, "/me", `{"username":"ada","email":"ada@example.com"}`,
		map[string]string{"X-Reauth-Token": "stolen"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdateMe_ValidReauth_Updates(t *testing.T) {
	var gotInput usecase.UpdateProfileInput
	users := &fakeUserUsecase{
		updateProfile: func(_ context.Context, userID int64, input usecase.UpdateProfileInput) (*domain.User, error) {
			gotInput = input
			return &domain.User{ID: userID, Username: input.Username, Email: input.Email}, nil
		},
	}
	reauth := &fakeReauthConsumer{
		checkAndConsume: func(_ context.Context, raw string) (int64, error) {
			if raw != "fresh" {
				t.Errorf("raw token = %q, want %q", raw, "fresh")
			}
			return 7, nil
		},
	}
	r := newUserEngine(t, users, &fakeFollowLister{}, &fakeLikeLister{}, reauth)

	w := doJSON(r, http.MethodPatch, "/me",
		`{"username":"ada2","email":"ada2@example.com","bio":"systems"}`,
		map[string]string{"X-Reauth-Token": "fresh"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if gotInput.Username != "ada2" {
		t.Errorf("username = %q, want %q", gotInput.Username, "ada2")
	}
	if gotInput.Bio == nil || *gotInput.Bio != "systems" {
		t.Errorf("bio = %v, want %q", gotInput.Bio, "systems")
	}
}

func TestDeleteMe_ValidReauth_Returns204(t *testing.T) {
	var deletedID int64
	users := &fakeUserUsecase{
		deleteAccount: func(_ context.Context, userID int64) error {
			deletedID = userID
			return nil
		},
	}
	reauth := &fakeReauthConsumer{
		checkAndConsume: func(_ context.Context, _ string) (int64, error) { return 7, nil },
	}
	r := newUserEngine(t, users, &fakeFollowLister{}, &fakeLikeLister{}, reauth)

	w := doJSON(r, http.MethodDelete, "/me", "", map[string]string{"X-Reauth-Token": "fresh"})

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if deletedID != 7 {
		t.Errorf("deleted user = %d, want 7", deletedID)
	}
}

func TestChangePassword_WrongCurrent_Returns401(t *testing.T) {
	users := &fakeUserUsecase{
		setPassword: func(_ context.Context, _ int64, _, _ string) error {
			return domain.ErrInvalidCredentials
		},
	}
	r := newUserEngine(t, users, &fakeFollowLister{}, &fakeLikeLister{}, &fakeReauthConsumer{})

	w := doJSON(r, http.MethodPut, "/me/password",
		`{"current_password":"wrong","new_password":"hunter33"}`, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
