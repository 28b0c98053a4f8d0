package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"antgiftbox/internal/codes"
	"antgiftbox/internal/models"
	"antgiftbox/internal/repository"
)

var (
	ErrVaultItemNotFound   = errors.New("vault item not found")
	ErrNotVaultOwner       = errors.New("vault item belongs to another parent")
	ErrVaultItemExpired    = errors.New("vault item has expired")
	ErrInvalidVaultItem    = errors.New("vault item name is required")
	ErrVaultItemNotPending = errors.New("vault item already delivered")
)

// VaultService manages the gifticons a parent stores for later delivery
type VaultService struct {
	vaultRepo *repository.VaultRepository
	childRepo *repository.ChildRepository
}

// NewVaultService creates a new vault service
func NewVaultService(vaultRepo *repository.VaultRepository, childRepo *repository.ChildRepository) *VaultService {
	return &VaultService{vaultRepo: vaultRepo, childRepo: childRepo}
}

// AddItem stores a new gifticon in the parent's vault
func (s *VaultService) AddItem(parentUID, name, imageURL, barcodeURL string, expiryDate *time.Time) (*models.VaultItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidVaultItem
	}

	item := &models.VaultItem{
		VaultID:    codes.NewVaultID(),
		ParentID:   parentUID,
		Name:       name,
		ImageURL:   imageURL,
		BarcodeURL: barcodeURL,
		ExpiryDate: expiryDate,
	}
	if err := s.vaultRepo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create vault item: %w", err)
	}
	return item, nil
}

// ListItems returns the parent's vault, newest first
func (s *VaultService) ListItems(parentUID string) ([]models.VaultItem, error) {
	return s.vaultRepo.ListByParent(parentUID)
}

// AssignItem targets a gifticon at one of the parent's children, or clears
// the target when childID is nil
func (s *VaultService) AssignItem(vaultID, parentUID string, childID *string) (*models.VaultItem, error) {
	item, err := s.ownedItem(vaultID, parentUID)
	if err != nil {
		return nil, err
	}

	if childID != nil {
		child, err := s.childRepo.GetChildByID(*childID)
		if err != nil {
			return nil, fmt.Errorf("failed to get child: %w", err)
		}
		if child == nil || child.ParentUID != parentUID {
			return nil, ErrChildNotFound
		}
	}

	if err := s.vaultRepo.Assign(vaultID, childID); err != nil {
		return nil, fmt.Errorf("failed to assign vault item: %w", err)
	}
	item.TargetChildID = childID
	return item, nil
}

// DeliverItem hands a pending gifticon to its child. Delivery is one-way;
// delivering twice fails.
func (s *VaultService) DeliverItem(vaultID, parentUID string) error {
	item, err := s.ownedItem(vaultID, parentUID)
	if err != nil {
		return err
	}
	if item.IsExpired() {
		return ErrVaultItemExpired
	}

	err = s.vaultRepo.MarkDelivered(vaultID)
	if errors.Is(err, repository.ErrVaultItemNotPending) {
		return ErrVaultItemNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to deliver vault item: %w", err)
	}
	return nil
}

func (s *VaultService) ownedItem(vaultID, parentUID string) (*models.VaultItem, error) {
	item, err := s.vaultRepo.GetByID(vaultID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault item: %w", err)
	}
	if item == nil {
		return nil, ErrVaultItemNotFound
	}
	if item.ParentID != parentUID {
		return nil, ErrNotVaultOwner
	}
	return item, nil
}
