package service

import (
	"context"
	"testing"
	"time"

	"antgiftbox/internal/database"
	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
)

// sentEmail records one delivery made through the recordingMailer
type sentEmail struct {
	kind     string
	to       string
	nickname string
	code     string
}

// recordingMailer captures sends so tests can assert notification wiring.
// The channel is buffered because sends happen on background goroutines.
type recordingMailer struct {
	sent chan sentEmail
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan sentEmail, 8)}
}

func (m *recordingMailer) IsEnabled() bool { return true }

func (m *recordingMailer) SendWelcomeEmail(_ context.Context, toEmail, toName string) error {
	m.sent <- sentEmail{kind: "welcome", to: toEmail, nickname: toName}
	return nil
}

func (m *recordingMailer) SendLinkRequestNotification(_ context.Context, toEmail, childNickname, familyCode string) error {
	m.sent <- sentEmail{kind: "link-request", to: toEmail, nickname: childNickname, code: familyCode}
	return nil
}

func (m *recordingMailer) SendApprovalNotification(_ context.Context, toEmail, childNickname, familyCode string) error {
	m.sent <- sentEmail{kind: "approval", to: toEmail, nickname: childNickname, code: familyCode}
	return nil
}

// waitForEmail blocks until the mailer records a send or the test times out
func (m *recordingMailer) waitForEmail(t *testing.T) sentEmail {
	t.Helper()
	select {
	case email := <-m.sent:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email send")
		return sentEmail{}
	}
}

// testEnv wires the full service stack over an in-memory database
type testEnv struct {
	db *database.DB

	userRepo    *repository.UserRepository
	parentRepo  *repository.ParentRepository
	groupRepo   *repository.GroupRepository
	childRepo   *repository.ChildRepository
	requestRepo *repository.RequestRepository
	vaultRepo   *repository.VaultRepository
	prefRepo    *repository.PreferenceRepository

	auth        *AuthService
	directory   *DirectoryService
	pairing     *PairingService
	children    *ChildService
	vault       *VaultService
	preferences *PreferenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	env := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		parentRepo:  repository.NewParentRepository(db),
		groupRepo:   repository.NewGroupRepository(db),
		childRepo:   repository.NewChildRepository(db),
		requestRepo: repository.NewRequestRepository(db),
		vaultRepo:   repository.NewVaultRepository(db),
		prefRepo:    repository.NewPreferenceRepository(db),
	}

	email, err := NewEmailService("", "", "", false)
	if err != nil {
		t.Fatalf("create email service: %v", err)
	}

	env.auth = NewAuthService(env.userRepo, env.parentRepo, email, time.Hour)
	env.directory = NewDirectoryService(env.groupRepo, env.parentRepo, 6, 20)
	env.pairing = NewPairingService(env.requestRepo, env.groupRepo, env.childRepo, env.parentRepo, email)
	env.children = NewChildService(env.childRepo)
	env.vault = NewVaultService(env.vaultRepo, env.childRepo)
	env.preferences = NewPreferenceService(env.prefRepo)
	return env
}

// registerParent creates a parent account and returns its uid
func (env *testEnv) registerParent(t *testing.T, email string) string {
	t.Helper()
	user, err := env.auth.Register(email, "password123", "Test Parent")
	if err != nil {
		t.Fatalf("register parent: %v", err)
	}
	return user.UID
}

// parentWithGroup creates a parent with a family group and returns the uid
// and invite code
func (env *testEnv) parentWithGroup(t *testing.T, email string) (string, string) {
	t.Helper()
	uid := env.registerParent(t, email)
	group, err := env.directory.CreateFamilyGroup(uid)
	if err != nil {
		t.Fatalf("create family group: %v", err)
	}
	return uid, group.InviteCode
}

func validApproval(nickname string) *models.ParentApprovalPayload {
	return &models.ParentApprovalPayload{
		ConfirmedNickname:  nickname,
		ConfirmedAge:       8,
		ServiceTermsAgreed: true,
		PrivacyAgreed:      true,
		PushAgreed:         true,
		RewardEnabled:      true,
		BaseCoinReward:     10,
		ApprovalMode:       "manual",
		UsageStartTime:     "07:00",
		UsageEndTime:       "20:00",
		DailyMaxCompletion: 10,
	}
}
