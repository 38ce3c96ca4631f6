package vendors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryVendorRepo struct {
	vendors map[int64]Vendor
	nextID  int64
}

func newMemoryVendorRepo() *memoryVendorRepo {
	return &memoryVendorRepo{vendors: make(map[int64]Vendor)}
}

func (r *memoryVendorRepo) Create(ctx context.Context, v Vendor) (Vendor, error) {
	r.nextID++
	v.ID = r.nextID
	v.IsActive = true
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	r.vendors[v.ID] = v
	return v, nil
}

func (r *memoryVendorRepo) Update(ctx context.Context, v Vendor) (Vendor, error) {
	if _, ok := r.vendors[v.ID]; !ok {
		return Vendor{}, ErrNotFound
	}
	r.vendors[v.ID] = v
	return v, nil
}

func (r *memoryVendorRepo) GetByID(ctx context.Context, id int64) (Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return Vendor{}, ErrNotFound
	}
	return v, nil
}

func (r *memoryVendorRepo) List(ctx context.Context, req ListVendorsRequest) ([]Vendor, int, error) {
	var out []Vendor
	for _, v := range r.vendors {
		out = append(out, v)
	}
	return out, len(out), nil
}

func TestUpdateVendorPartialPatch(t *testing.T) {
	repo := newMemoryVendorRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateVendor(ctx, CreateVendorRequest{Name: "Roadrunner Fuel", ContactName: "Pat Lee"})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	email := "billing@roadrunner.test"
	updated, err := svc.UpdateVendor(ctx, created.ID, UpdateVendorRequest{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "Roadrunner Fuel", updated.Name)
	require.Equal(t, "Pat Lee", updated.ContactName)
	require.Equal(t, email, updated.Email)

	_, err = svc.UpdateVendor(ctx, 999, UpdateVendorRequest{Email: &email})
	require.ErrorIs(t, err, ErrNotFound)
}
