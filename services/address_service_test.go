package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/apperrors"
	"storefront-service/models"
)

func addressReq(phone string, isDefault bool) models.AddressRequest {
	return models.AddressRequest{
		FullName:  "Asha Rao",
		Phone:     phone,
		Line1:     "14 Residency Road",
		City:      "Bengaluru",
		State:     "KA",
		Pincode:   "560025",
		IsDefault: isDefault,
	}
}

func defaults(addrs []models.Address) []int64 {
	var ids []int64
	for _, a := range addrs {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestValidPhoneAndPincode(t *testing.T) {
	for _, p := range []string{"9876543210", "6000000000"} {
		assert.True(t, ValidPhone(p), p)
	}
	for _, p := range []string{"12345", "5876543210", "98765432100", "98765-4321"} {
		assert.False(t, ValidPhone(p), p)
	}
	assert.True(t, ValidPincode("560025"))
	assert.False(t, ValidPincode("56002"))
	assert.False(t, ValidPincode("56002A"))
}

func TestAddressCreate_PhoneValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAddressService(f.store)

	_, err := svc.Create(ctx, buyerEmail, addressReq("12345", false))
	requireKind(t, err, apperrors.KindInvalidRequest)

	a, err := svc.Create(ctx, buyerEmail, addressReq("9876543210", false))
	require.NoError(t, err)
	assert.Equal(t, f.buyer.ID, a.UserID)

	bad := addressReq("9876543210", false)
	bad.Pincode = "1234"
	_, err = svc.Create(ctx, buyerEmail, bad)
	requireKind(t, err, apperrors.KindInvalidRequest)

	_, err = svc.Create(ctx, "", addressReq("9876543210", false))
	requireKind(t, err, apperrors.KindUnauthorized)
}

func TestAddressCreate_DefaultHandling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.AddUser(&models.User{Email: "new@example.com", Role: models.RoleUser})
	svc := NewAddressService(f.store)

	first, err := svc.Create(ctx, "new@example.com", addressReq("9876543210", false))
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address becomes the default")

	second, err := svc.Create(ctx, "new@example.com", addressReq("9123456780", false))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	third, err := svc.Create(ctx, "new@example.com", addressReq("9123456781", true))
	require.NoError(t, err)

	list, err := svc.List(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, []int64{third.ID}, defaults(list))

	_, err = svc.Update(ctx, "new@example.com", second.ID, addressReq("9123456780", true))
	require.NoError(t, err)
	list, err = svc.List(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID}, defaults(list))
}

func TestAddressUpdateDelete_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAddressService(f.store)

	_, err := svc.Update(ctx, buyerEmail, f.otherAddr.ID, addressReq("9876543210", false))
	requireKind(t, err, apperrors.KindNotFound)

	err = svc.Delete(ctx, buyerEmail, f.otherAddr.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.Update(ctx, buyerEmail, 777, addressReq("9876543210", false))
	requireKind(t, err, apperrors.KindNotFound)
}

func TestAddressDelete_PromotesNextDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAddressService(f.store)

	extra, err := svc.Create(ctx, buyerEmail, addressReq("9123456780", false))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, buyerEmail, f.address.ID))

	list, err := svc.List(ctx, buyerEmail)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []int64{extra.ID}, defaults(list))
}

func TestAddressUpdate_UnsetDefaultHandsOff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAddressService(f.store)

	// Only address: it stays the default.
	only, err := svc.Update(ctx, buyerEmail, f.address.ID, addressReq("9876543210", false))
	require.NoError(t, err)
	assert.True(t, only.IsDefault)

	extra, err := svc.Create(ctx, buyerEmail, addressReq("9123456780", false))
	require.NoError(t, err)
	require.False(t, extra.IsDefault)

	updated, err := svc.Update(ctx, buyerEmail, f.address.ID, addressReq("9876543210", false))
	require.NoError(t, err)
	assert.False(t, updated.IsDefault)

	list, err := svc.List(ctx, buyerEmail)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{extra.ID}, defaults(list))
}
