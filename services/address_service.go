package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// ValidPhone accepts ten-digit Indian mobile numbers.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

func ValidPincode(s string) bool { return pincodePattern.MatchString(s) }

type AddressService struct {
	store repository.Store
	now   func() time.Time
}

func NewAddressService(store repository.Store) *AddressService {
	return &AddressService{store: store, now: time.Now}
}

func (s *AddressService) List(ctx context.Context, email string) ([]models.Address, error) {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}
	addresses, err := s.store.Addresses.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch addresses", err)
	}
	return addresses, nil
}

// Create adds an address for the caller. The first address a user saves
// becomes the default.
func (s *AddressService) Create(ctx context.Context, email string, req models.AddressRequest) (*models.Address, error) {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}
	a := &models.Address{UserID: user.ID, CreatedAt: s.now()}
	if err := s.apply(a, req); err != nil {
		return nil, err
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.store.Addresses.ListByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.IsDefault = true
		} else if a.IsDefault {
			if err := s.store.Addresses.ClearDefault(ctx, user.ID); err != nil {
				return err
			}
		}
		return s.store.Addresses.Create(ctx, a)
	})
	if err != nil {
		return nil, storeErr(err, "Address")
	}
	return a, nil
}

func (s *AddressService) Update(ctx context.Context, email string, id int64, req models.AddressRequest) (*models.Address, error) {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return nil, err
	}
	a, err := s.owned(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	wasDefault := a.IsDefault
	if err := s.apply(a, req); err != nil {
		return nil, err
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if a.IsDefault && !wasDefault {
			if err := s.store.Addresses.ClearDefault(ctx, user.ID); err != nil {
				return err
			}
		}
		if wasDefault && !a.IsDefault {
			return s.handOffDefault(ctx, user.ID, a)
		}
		return s.store.Addresses.Update(ctx, a)
	})
	if err != nil {
		return nil, storeErr(err, "Address")
	}
	return a, nil
}

// Delete removes the address. When it was the default, the most recent
// remaining address takes over.
func (s *AddressService) Delete(ctx context.Context, email string, id int64) error {
	user, err := resolveUser(ctx, s.store.Users, email)
	if err != nil {
		return err
	}
	a, err := s.owned(ctx, user.ID, id)
	if err != nil {
		return err
	}

	err = s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Addresses.Delete(ctx, id); err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		rest, err := s.store.Addresses.ListByUser(ctx, user.ID)
		if err != nil || len(rest) == 0 {
			return err
		}
		next := rest[0]
		next.IsDefault = true
		next.UpdatedAt = s.now()
		return s.store.Addresses.Update(ctx, &next)
	})
	if err != nil {
		return storeErr(err, "Address")
	}
	return nil
}

// handOffDefault saves a as non-default and promotes the most recent other
// address. With no other address, a stays the default.
func (s *AddressService) handOffDefault(ctx context.Context, userID int64, a *models.Address) error {
	rest, err := s.store.Addresses.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, next := range rest {
		if next.ID == a.ID {
			continue
		}
		if err := s.store.Addresses.Update(ctx, a); err != nil {
			return err
		}
		next.IsDefault = true
		next.UpdatedAt = s.now()
		return s.store.Addresses.Update(ctx, &next)
	}
	a.IsDefault = true
	return s.store.Addresses.Update(ctx, a)
}

func (s *AddressService) owned(ctx context.Context, userID, id int64) (*models.Address, error) {
	a, err := s.store.Addresses.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Address")
	}
	if a.UserID != userID {
		return nil, apperrors.NotFound("Address not found")
	}
	return a, nil
}

func (s *AddressService) apply(a *models.Address, req models.AddressRequest) error {
	phone := strings.TrimSpace(req.Phone)
	if !ValidPhone(phone) {
		return apperrors.InvalidRequest("Invalid phone number. Enter a 10-digit mobile number")
	}
	pincode := strings.TrimSpace(req.Pincode)
	if !ValidPincode(pincode) {
		return apperrors.InvalidRequest("Invalid pincode. Enter a 6-digit pincode")
	}
	a.FullName = strings.TrimSpace(req.FullName)
	a.Phone = phone
	a.Line1 = strings.TrimSpace(req.Line1)
	a.Line2 = strings.TrimSpace(req.Line2)
	a.City = strings.TrimSpace(req.City)
	a.State = strings.TrimSpace(req.State)
	a.Pincode = pincode
	a.IsDefault = req.IsDefault
	a.UpdatedAt = s.now()
	return nil
}
