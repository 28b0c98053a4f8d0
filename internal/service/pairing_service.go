package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"antgiftbox/internal/codes"
	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
	"antgiftbox/internal/validation"
)

var (
	ErrInvalidFamilyCode = errors.New("invalid family code")
	ErrRequestNotFound   = errors.New("link request not found")
	ErrRequestNotPending = errors.New("link request already resolved")
	ErrNotRequestOwner   = errors.New("request belongs to another family")
)

// PairingService runs the child link request workflow: a child device
// submits a request against a family code, the owning parent approves or
// rejects it, and approval creates the child profile.
type PairingService struct {
	requestRepo  *repository.RequestRepository
	groupRepo    *repository.GroupRepository
	childRepo    *repository.ChildRepository
	parentRepo   *repository.ParentRepository
	emailService Mailer
}

// NewPairingService creates a new pairing service
func NewPairingService(requestRepo *repository.RequestRepository, groupRepo *repository.GroupRepository, childRepo *repository.ChildRepository, parentRepo *repository.ParentRepository, emailService Mailer) *PairingService {
	return &PairingService{
		requestRepo:  requestRepo,
		groupRepo:    groupRepo,
		childRepo:    childRepo,
		parentRepo:   parentRepo,
		emailService: emailService,
	}
}

// CreateLinkRequest submits a pairing request from a child device. The
// family code is normalized before lookup: surrounding whitespace is
// dropped and letters are uppercased, so a child typing "  ab12cd " still
// reaches the right family. The returned request carries the id the device
// stores as its active request.
func (s *PairingService) CreateLinkRequest(familyCode, nickname, avatar string, age *int) (*models.LinkRequest, error) {
	familyCode = strings.ToUpper(strings.TrimSpace(familyCode))
	if familyCode == "" {
		return nil, ErrInvalidFamilyCode
	}
	if err := validation.Nickname(nickname); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetGroupByCode(familyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrInvalidFamilyCode
	}

	request := &models.LinkRequest{
		ID:            codes.NewRequestID(),
		FamilyCode:    familyCode,
		ChildNickname: strings.TrimSpace(nickname),
		ChildAvatar:   avatar,
		ChildAge:      age,
	}
	if err := s.requestRepo.CreateRequest(request); err != nil {
		return nil, fmt.Errorf("failed to create link request: %w", err)
	}

	s.notifyNewRequest(group.OwnerID, request)
	return request, nil
}

// notifyNewRequest tells the group owner a link request arrived, off the
// request path. Email failures are logged and never fail the submission.
func (s *PairingService) notifyNewRequest(ownerUID string, request *models.LinkRequest) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}
	nickname, familyCode := request.ChildNickname, request.FamilyCode
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		owner, err := s.parentRepo.GetParentByUID(ownerUID)
		if err != nil || owner == nil {
			log.Printf("Failed to resolve group owner %s for request notification: %v", ownerUID, err)
			return
		}
		if err := s.emailService.SendLinkRequestNotification(ctx, owner.Email, nickname, familyCode); err != nil {
			log.Printf("Failed to send link request notification: %v", err)
		}
	}()
}

// GetRequest retrieves a link request by id. Child devices poll this to
// learn whether their request was approved or rejected.
func (s *PairingService) GetRequest(requestID string) (*models.LinkRequest, error) {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	return request, nil
}

// ListPendingForParent returns the pending requests against the parent's
// family code, most recent first. A parent without a group has no code and
// therefore no requests.
func (s *PairingService) ListPendingForParent(parentUID string) ([]models.LinkRequest, error) {
	parent, err := s.parentRepo.GetParentByUID(parentUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}
	if parent.GroupID == nil {
		return nil, nil
	}
	return s.requestRepo.ListByFamilyCode(*parent.GroupID, models.LinkRequestPending)
}

// Approve resolves a pending request: the request flips to approved, a
// child profile is created from the confirmed payload, and the child joins
// the group roster. All three writes happen in one transaction, so a
// concurrent approval of the same request fails with ErrRequestNotPending
// and leaves nothing behind.
func (s *PairingService) Approve(requestID, parentUID string, payload *models.ParentApprovalPayload) (*models.ChildProfile, error) {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get link request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if err := s.checkOwnership(request, parentUID); err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}
	if err := validation.ApprovalPayload(payload); err != nil {
		return nil, err
	}

	age := payload.ConfirmedAge
	child := &models.ChildProfile{
		ChildID:          codes.NewChildID(),
		FamilyCode:       request.FamilyCode,
		Nickname:         strings.TrimSpace(payload.ConfirmedNickname),
		Avatar:           request.ChildAvatar,
		Age:              &age,
		ParentUID:        parentUID,
		ApprovalSettings: payload.Settings(),
	}

	snapshot, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approval snapshot: %w", err)
	}

	err = s.requestRepo.Approve(requestID, parentUID, child, string(snapshot))
	if errors.Is(err, repository.ErrRequestNotPending) {
		return nil, ErrRequestNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve link request: %w", err)
	}

	s.notifyApproval(child, payload.RecoveryEmail)
	return child, nil
}

// Reject resolves a pending request with a rejection. An empty reason is
// replaced with the default shown on the child device.
func (s *PairingService) Reject(requestID, parentUID, reason string) error {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("failed to get link request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if err := s.checkOwnership(request, parentUID); err != nil {
		return err
	}
	if reason == "" {
		reason = models.DefaultRejectionReason
	}

	err = s.requestRepo.Reject(requestID, parentUID, reason)
	if errors.Is(err, repository.ErrRequestNotPending) {
		return ErrRequestNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to reject link request: %w", err)
	}
	return nil
}

// checkOwnership verifies the acting parent owns the family code the
// request targets
func (s *PairingService) checkOwnership(request *models.LinkRequest, parentUID string) error {
	parent, err := s.parentRepo.GetParentByUID(parentUID)
	if err != nil {
		return fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return ErrParentNotFound
	}
	if parent.GroupID == nil || *parent.GroupID != request.FamilyCode {
		return ErrNotRequestOwner
	}
	return nil
}

// notifyApproval sends the approval notification off the request path.
// Email failures are logged and never fail the approval.
func (s *PairingService) notifyApproval(child *models.ChildProfile, recoveryEmail string) {
	if recoveryEmail == "" || s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.emailService.SendApprovalNotification(ctx, recoveryEmail, child.Nickname, child.FamilyCode); err != nil {
			log.Printf("Failed to send approval notification: %v", err)
		}
	}()
}

// CleanupStaleRequests drops pending requests older than the given age
func (s *PairingService) CleanupStaleRequests(maxAge time.Duration) error {
	deleted, err := s.requestRepo.DeleteStaleRequests(time.Now().Add(-maxAge))
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d stale link requests", deleted)
	}
	return nil
}
