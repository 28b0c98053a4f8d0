package service

import (
	"errors"
	"fmt"
	"strings"

	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
	"antgiftbox/internal/validation"
)

var ErrChildNotFound = errors.New("child profile not found")

// ChildService manages child profiles after they have been created by an
// approved link request
type ChildService struct {
	childRepo *repository.ChildRepository
}

// NewChildService creates a new child service
func NewChildService(childRepo *repository.ChildRepository) *ChildService {
	return &ChildService{childRepo: childRepo}
}

// GetProfile retrieves a child profile by id
func (s *ChildService) GetProfile(childID string) (*models.ChildProfile, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// SessionValid reports whether a cached child session still points at an
// existing profile. Profiles removed by the parent invalidate the session.
func (s *ChildService) SessionValid(childID string) (bool, error) {
	if childID == "" {
		return false, nil
	}
	exists, err := s.childRepo.Exists(childID)
	if err != nil {
		return false, fmt.Errorf("failed to check child: %w", err)
	}
	return exists, nil
}

// ListForParent returns the children linked to the parent's family code
func (s *ChildService) ListForParent(parent *models.Parent) ([]models.ChildProfile, error) {
	if parent.GroupID == nil {
		return nil, nil
	}
	return s.childRepo.ListByFamilyCode(*parent.GroupID)
}

// UpdateProfile saves edits a parent made to a child's profile and
// settings. Only the owning parent may edit.
func (s *ChildService) UpdateProfile(childID, parentUID string, nickname, avatar string, age *int, settings models.ApprovalSettings) (*models.ChildProfile, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if child.ParentUID != parentUID {
		return nil, ErrNotRequestOwner
	}
	if err := validation.Nickname(nickname); err != nil {
		return nil, err
	}

	child.Nickname = strings.TrimSpace(nickname)
	if avatar != "" {
		child.Avatar = avatar
	}
	if age != nil {
		child.Age = age
	}
	child.ApprovalSettings = settings

	if err := s.childRepo.UpdateChild(child); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return child, nil
}
