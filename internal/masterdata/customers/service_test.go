package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCustomerRepo struct {
	customers map[int64]Customer
	nextID    int64
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[int64]Customer)}
}

func (r *memoryCustomerRepo) Create(ctx context.Context, c Customer) (Customer, error) {
	r.nextID++
	c.ID = r.nextID
	c.IsActive = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryCustomerRepo) Update(ctx context.Context, c Customer) (Customer, error) {
	if _, ok := r.customers[c.ID]; !ok {
		return Customer{}, ErrNotFound
	}
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryCustomerRepo) GetByID(ctx context.Context, id int64) (Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryCustomerRepo) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, len(out), nil
}

func TestUpdateCustomerPartialPatch(t *testing.T) {
	repo := newMemoryCustomerRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Acme Shipping", Email: "ops@acme.test"})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	phone := "+1555123456"
	updated, err := svc.UpdateCustomer(ctx, created.ID, UpdateCustomerRequest{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "Acme Shipping", updated.Name)
	require.Equal(t, "ops@acme.test", updated.Email)
	require.Equal(t, phone, updated.Phone)

	_, err = svc.UpdateCustomer(ctx, 999, UpdateCustomerRequest{Phone: &phone})
	require.ErrorIs(t, err, ErrNotFound)
}
