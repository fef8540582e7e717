package service_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"woms/internal/authz"
	"woms/internal/database"
	"woms/internal/document"
	"woms/internal/model"
	"woms/internal/repository"
	"woms/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every engine against an in-memory database and in-memory
// fakes for the PDF, storage and push ports.
type testEnv struct {
	db       *gorm.DB
	store    *memStore
	pusher   *memPusher
	notifier service.Notifier

	auth       service.AuthService
	restocking service.RestockingService
	roles      service.RoleService
	po         service.POService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := newMemStore()
	pusher := &memPusher{}
	notifier := service.NewNotifier(repository.NewNotificationRepository(db), pusher)
	policy := authz.NewRolePolicy()
	renderer := &stubRenderer{}
	signer := &stubSigner{}

	userRepo := repository.NewUserRepository(db)
	txm := repository.NewTransactionManager(db)

	return &testEnv{
		db:         db,
		store:      store,
		pusher:     pusher,
		notifier:   notifier,
		auth:       service.NewAuthService(db, userRepo, store, notifier),
		restocking: service.NewRestockingService(db, policy, renderer, signer, store, notifier),
		roles:      service.NewRoleService(db, userRepo, policy, notifier),
		po: service.NewPOService(db, txm, repository.NewDraftPORepository(db),
			repository.NewPurchaseOrderRepository(db), userRepo, policy, renderer, store, notifier),
	}
}

// newUser inserts a confirmed user with the given role. A signature image is
// placed in the store for roles that countersign documents.
func (e *testEnv) newUser(t *testing.T, username, role string, withSignature bool) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := model.User{
		Username:        username,
		Email:           username + "@example.com",
		Password:        string(hashed),
		Role:            role,
		IsRoleConfirmed: true,
	}
	if withSignature {
		key := "signatures/" + username + ".png"
		require.NoError(t, e.store.Save(key, []byte("png-bytes-"+username)))
		user.SignaturePath = key
	}
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) notificationsFor(t *testing.T, user *model.User) []model.Notification {
	t.Helper()
	var notifications []model.Notification
	require.NoError(t, e.db.Where("recipient = ?", user.ID).Order("created_at").Find(&notifications).Error)
	return notifications
}

// --- Port fakes ---

type stubRenderer struct{}

func (r *stubRenderer) RenderVoucher(data document.VoucherData) ([]byte, error) {
	return []byte("%PDF voucher " + data.RVNumber + " for " + data.RequestedBy), nil
}

func (r *stubRenderer) RenderPurchaseOrder(data document.POData) ([]byte, error) {
	return []byte("%PDF po " + data.PONumber + " total " + data.GrandTotal), nil
}

type stubSigner struct{}

func (s *stubSigner) StampSignature(pdf, signature []byte, signedBy string, pos document.StampPosition) ([]byte, error) {
	return append(append([]byte{}, pdf...), []byte(" signed:"+signedBy)...), nil
}

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (m *memStore) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte{}, data...)
	return nil
}

func (m *memStore) Open(key string) (io.ReadCloser, error) {
	data, err := m.Read(key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return append([]byte{}, data...), nil
}

func (m *memStore) Exists(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

func (m *memStore) URL(key string) string { return "/media/" + key }

func (m *memStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
}

type memPusher struct {
	mu     sync.Mutex
	pushes []string
}

func (p *memPusher) Push(userID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, userID)
}

func (p *memPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}
