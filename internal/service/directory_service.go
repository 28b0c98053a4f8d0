package service

import (
	"errors"
	"fmt"

	"antgiftbox/internal/codes"
	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
)

var (
	ErrParentNotFound     = errors.New("parent profile not found")
	ErrGroupNotFound      = errors.New("family group not found")
	ErrCodeSpaceExhausted = errors.New("could not generate a unique invite code")
)

// DirectoryService manages family groups and their invite codes
type DirectoryService struct {
	groupRepo    *repository.GroupRepository
	parentRepo   *repository.ParentRepository
	codeLength   int
	codeAttempts int
}

// NewDirectoryService creates a new family directory service
func NewDirectoryService(groupRepo *repository.GroupRepository, parentRepo *repository.ParentRepository, codeLength, codeAttempts int) *DirectoryService {
	return &DirectoryService{
		groupRepo:    groupRepo,
		parentRepo:   parentRepo,
		codeLength:   codeLength,
		codeAttempts: codeAttempts,
	}
}

// CreateFamilyGroup creates a group with a fresh unique invite code and
// links it to the owning parent
func (s *DirectoryService) CreateFamilyGroup(parentUID string) (*models.FamilyGroup, error) {
	parent, err := s.parentRepo.GetParentByUID(parentUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}

	code, err := s.uniqueInviteCode()
	if err != nil {
		return nil, err
	}

	group := &models.FamilyGroup{
		InviteCode:    code,
		OwnerID:       parentUID,
		SelectedTheme: models.DefaultTheme,
	}
	if err := s.groupRepo.CreateGroup(group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// GetOrCreateFamilyCode returns the parent's invite code, creating the
// group on first call. A parent whose recorded group no longer resolves
// gets a fresh group instead of an error.
func (s *DirectoryService) GetOrCreateFamilyCode(parentUID string) (string, error) {
	parent, err := s.parentRepo.GetParentByUID(parentUID)
	if err != nil {
		return "", fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return "", ErrParentNotFound
	}

	if parent.GroupID != nil {
		group, err := s.groupRepo.GetGroupByCode(*parent.GroupID)
		if err != nil {
			return "", fmt.Errorf("failed to get group: %w", err)
		}
		if group != nil {
			return group.InviteCode, nil
		}
	}

	group, err := s.CreateFamilyGroup(parentUID)
	if err != nil {
		return "", err
	}
	return group.InviteCode, nil
}

// GetGroup retrieves a family group by invite code
func (s *DirectoryService) GetGroup(code string) (*models.FamilyGroup, error) {
	group, err := s.groupRepo.GetGroupByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// UpdateGroupSettings saves the theme and auto approval flag of the
// parent's group
func (s *DirectoryService) UpdateGroupSettings(parentUID, selectedTheme string, allowAutoApproval bool) error {
	parent, err := s.parentRepo.GetParentByUID(parentUID)
	if err != nil {
		return fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return ErrParentNotFound
	}
	if parent.GroupID == nil {
		return ErrGroupNotFound
	}
	if selectedTheme == "" {
		selectedTheme = models.DefaultTheme
	}
	if err := s.groupRepo.UpdateSettings(*parent.GroupID, selectedTheme, allowAutoApproval); err != nil {
		return fmt.Errorf("failed to update group settings: %w", err)
	}
	return nil
}

// uniqueInviteCode draws random codes until one is unused, giving up after
// a bounded number of attempts
func (s *DirectoryService) uniqueInviteCode() (string, error) {
	for i := 0; i < s.codeAttempts; i++ {
		code, err := codes.GenerateInviteCode(s.codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		exists, err := s.groupRepo.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
