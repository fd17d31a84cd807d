package usecase_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/perchhq/perch/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ---- repository fakes ----

type fakeUserRepo struct {
	create         func(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	getByID        func(ctx context.Context, id int64) (*domain.User, error)
	getByUsername  func(ctx context.Context, username string) (*domain.User, error)
	updateProfile  func(ctx context.Context, user *domain.User) (*domain.User, error)
	updatePassword func(ctx context.Context, id int64, passwordHash string) error
	delete         func(ctx context.Context, id int64) error
	search         func(ctx context.Context, q string, limit int) ([]domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, username, email, passwordHash)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getByID(ctx, id)
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getByUsername(ctx, username)
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.updateProfile(ctx, user)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updatePassword(ctx, id, passwordHash)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

func (r *fakeUserRepo) Search(ctx context.Context, q string, limit int) ([]domain.User, error) {
	return r.search(ctx, q, limit)
}

type fakeFollowRepo struct {
	create    func(ctx context.Context, followerID, followedID int64) (bool, error)
	delete    func(ctx context.Context, followerID, followedID int64) (bool, error)
	exists    func(ctx context.Context, followerID, followedID int64) (bool, error)
	followers func(ctx context.Context, userID int64) ([]domain.User, error)
	following func(ctx context.Context, userID int64) ([]domain.User, error)
}

func (r *fakeFollowRepo) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	return r.create(ctx, followerID, followedID)
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	return r.delete(ctx, followerID, followedID)
}

func (r *fakeFollowRepo) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	return r.exists(ctx, followerID, followedID)
}

func (r *fakeFollowRepo) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	return r.followers(ctx, userID)
}

func (r *fakeFollowRepo) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	return r.following(ctx, userID)
}

type fakeLikeRepo struct {
	create     func(ctx context.Context, userID, messageID int64) (bool, error)
	delete     func(ctx context.Context, userID, messageID int64) (bool, error)
	exists     func(ctx context.Context, userID, messageID int64) (bool, error)
	messageIDs func(ctx context.Context, userID int64) ([]int64, error)
}

func (r *fakeLikeRepo) Create(ctx context.Context, userID, messageID int64) (bool, error) {
	return r.create(ctx, userID, messageID)
}

func (r *fakeLikeRepo) Delete(ctx context.Context, userID, messageID int64) (bool, error) {
	return r.delete(ctx, userID, messageID)
}

func (r *fakeLikeRepo) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	return r.exists(ctx, userID, messageID)
}

func (r *fakeLikeRepo) MessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.messageIDs(ctx, userID)
}

type fakeMessageRepo struct {
	create     func(ctx context.Context, userID int64, text string) (*domain.Message, error)
	getByID    func(ctx context.Context, id int64) (*domain.Message, error)
	delete     func(ctx context.Context, id, ownerID int64) (bool, error)
	listByUser func(ctx context.Context, userID int64, limit int) ([]domain.Message, error)
	listRecent func(ctx context.Context, limit int) ([]domain.Message, error)
	feed       func(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error)
}

func (r *fakeMessageRepo) Create(ctx context.Context, userID int64, text string) (*domain.Message, error) {
	return r.create(ctx, userID, text)
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	return r.getByID(ctx, id)
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	return r.delete(ctx, id, ownerID)
}

func (r *fakeMessageRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	return r.listByUser(ctx, userID, limit)
}

func (r *fakeMessageRepo) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	return r.listRecent(ctx, limit)
}

func (r *fakeMessageRepo) Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error) {
	return r.feed(ctx, userID, limit, offset)
}

type fakeReauthRepo struct {
	issue         func(ctx context.Context, token *domain.ReauthToken) error
	claim         func(ctx context.Context, tokenHash string) (*domain.ReauthToken, error)
	deleteForUser func(ctx context.Context, userID int64) error
	purgeExpired  func(ctx context.Context, now time.Time) (int64, error)
}

func (r *fakeReauthRepo) Issue(ctx context.Context, token *domain.ReauthToken) error {
	return r.issue(ctx, token)
}

func (r *fakeReauthRepo) Claim(ctx context.Context, tokenHash string) (*domain.ReauthToken, error) {
	return r.claim(ctx, tokenHash)
}

func (r *fakeReauthRepo) DeleteForUser(ctx context.Context, userID int64) error {
	return r.deleteForUser(ctx, userID)
}

func (r *fakeReauthRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.purgeExpired(ctx, now)
}

// ---- collaborator fakes ----

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// fakeFeedCache records invalidations and serves a single page.
type fakeFeedCache struct {
	page        []domain.Message
	hasPage     bool
	setPages    [][]domain.Message
	invalidated [][]int64
}

func (c *fakeFeedCache) GetPage(_ context.Context, _ int64) ([]domain.Message, bool, error) {
	return c.page, c.hasPage, nil
}

func (c *fakeFeedCache) SetPage(_ context.Context, _ int64, messages []domain.Message) error {
	c.setPages = append(c.setPages, messages)
	return nil
}

func (c *fakeFeedCache) Invalidate(_ context.Context, userIDs ...int64) error {
	c.invalidated = append(c.invalidated, userIDs)
	return nil
}

// ---- helpers ----

func testLogger() *slog.Logger {
	return slog.Default()
}

// hashPassword uses the minimum cost so tests stay fast.
func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}
