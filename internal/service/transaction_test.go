package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"transaction_system/internal/domain"
	"transaction_system/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (*TransactionService, *store.MemoryTransactionStore, *store.MemoryUserStore) {
	t.Helper()
	txs := store.NewMemoryTransactionStore()
	users := store.NewMemoryUserStore()
	balances := NewBalanceSynchronizer(txs, users, nil)
	svc := NewTransactionService(txs, users, NewRoleGate(users), balances)
	return svc, txs, users
}

func seedUser(t *testing.T, users *store.MemoryUserStore, role domain.UserRole) string {
	t.Helper()
	u := &domain.User{Name: string(role) + "-" + uuid.NewString(), Role: role}
	require.NoError(t, users.Insert(context.Background(), u))
	return u.ID
}

func validInput(userID string) CreateTransactionInput {
	return CreateTransactionInput{
		Name:   "Payroll",
		Type:   domain.TypeIncome,
		Amount: 1000,
		UserID: userID,
	}
}

func TestCreate_AssignsDefaultsAndFreshIDs(t *testing.T) {
	svc, _, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)

	first, err := svc.Create(context.Background(), validInput(adminID))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInput(adminID))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, adminID, first.UserID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)

	cases := []struct {
		name  string
		in    CreateTransactionInput
		field string
	}{
		{"empty name", CreateTransactionInput{Name: "  ", Type: domain.TypeIncome, Amount: 10, UserID: adminID}, "name"},
		{"unknown type", CreateTransactionInput{Name: "x", Type: "loan", Amount: 10, UserID: adminID}, "type"},
		{"zero amount", CreateTransactionInput{Name: "x", Type: domain.TypeIncome, Amount: 0, UserID: adminID}, "amount"},
		{"negative amount", CreateTransactionInput{Name: "x", Type: domain.TypeIncome, Amount: -5, UserID: adminID}, "amount"},
		{"missing user", CreateTransactionInput{Name: "x", Type: domain.TypeIncome, Amount: 10, UserID: ""}, "userId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	total, err := txs.Count(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "no invalid request may reach the store")
}

func TestCreate_PermissionDeniedLeavesStoreUnchanged(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	viewerID := seedUser(t, users, domain.RoleViewer)
	operatorID := seedUser(t, users, domain.RoleOperator)

	for _, userID := range []string{viewerID, operatorID} {
		_, err := svc.Create(context.Background(), validInput(userID))
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	}

	total, err := txs.Count(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreate_UnknownUserPropagatesNotFound(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	_, err := svc.Create(context.Background(), validInput(uuid.NewString()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBalanceFollowsMutations(t *testing.T) {
	svc, _, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	tx, err := svc.Create(ctx, validInput(adminID))
	require.NoError(t, err)

	balance, err := svc.GetUserBalance(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)

	amount := 500.0
	_, err = svc.Update(ctx, tx.ID, UpdateTransactionInput{Amount: &amount})
	require.NoError(t, err)

	balance, err = svc.GetUserBalance(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)

	require.NoError(t, svc.Delete(ctx, tx.ID))

	balance, err = svc.GetUserBalance(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestUpdate_PartialMerge(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	tx, err := svc.Create(ctx, validInput(adminID))
	require.NoError(t, err)

	status := domain.StatusCompleted
	updated, err := svc.Update(ctx, tx.ID, UpdateTransactionInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, tx.Name, updated.Name)
	assert.Equal(t, tx.Type, updated.Type)
	assert.Equal(t, tx.Amount, updated.Amount)
	assert.Equal(t, tx.UserID, updated.UserID)

	stored, err := txs.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestUpdate_EmptyPartialTouchesOnlyUpdatedAt(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	tx := &domain.Transaction{
		Name:      "Rent",
		Type:      domain.TypeExpense,
		Amount:    250,
		Status:    domain.StatusPending,
		UserID:    adminID,
		CreatedAt: past,
		UpdatedAt: past,
	}
	require.NoError(t, txs.Insert(ctx, tx))

	updated, err := svc.Update(ctx, tx.ID, UpdateTransactionInput{})
	require.NoError(t, err)

	assert.Equal(t, tx.Name, updated.Name)
	assert.Equal(t, tx.Type, updated.Type)
	assert.Equal(t, tx.Amount, updated.Amount)
	assert.Equal(t, tx.Status, updated.Status)
	assert.True(t, updated.UpdatedAt.After(past), "UpdatedAt must be refreshed")
}

func TestUpdate_ValidatesProvidedFields(t *testing.T) {
	svc, _, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	tx, err := svc.Create(ctx, validInput(adminID))
	require.NoError(t, err)

	badAmount := -1.0
	_, err = svc.Update(ctx, tx.ID, UpdateTransactionInput{Amount: &badAmount})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	badStatus := domain.TransactionStatus("archived")
	_, err = svc.Update(ctx, tx.ID, UpdateTransactionInput{Status: &badStatus})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateTransactionInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_GatesOnOwner(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	viewerID := seedUser(t, users, domain.RoleViewer)
	ctx := context.Background()

	tx := &domain.Transaction{Name: "Gift", Type: domain.TypeIncome, Amount: 20, Status: domain.StatusPending, UserID: viewerID}
	require.NoError(t, txs.Insert(ctx, tx))

	name := "Bonus"
	_, err := svc.Update(ctx, tx.ID, UpdateTransactionInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	stored, err := txs.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gift", stored.Name)
}

func TestDelete_NotFoundAndIdempotentFailure(t *testing.T) {
	svc, _, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, uuid.NewString()), domain.ErrNotFound)

	tx, err := svc.Create(ctx, validInput(adminID))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, tx.ID))
	assert.ErrorIs(t, svc.Delete(ctx, tx.ID), domain.ErrNotFound)
}

func TestList_Pagination(t *testing.T) {
	svc, txs, users := newTestEnv(t)
	adminID := seedUser(t, users, domain.RoleAdmin)
	otherID := seedUser(t, users, domain.RoleViewer)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		tx := &domain.Transaction{
			Name:      "tx",
			Type:      domain.TypePayment,
			Amount:    1,
			Status:    domain.StatusPending,
			UserID:    adminID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, txs.Insert(ctx, tx))
	}
	require.NoError(t, txs.Insert(ctx, &domain.Transaction{
		Name: "other", Type: domain.TypePayment, Amount: 1, Status: domain.StatusPending, UserID: otherID,
	}))

	filter := store.TransactionFilter{UserID: adminID}
	page, err := svc.List(ctx, filter, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Len(t, page.Data, 10)

	// Newest first within the page
	for i := 1; i < len(page.Data); i++ {
		assert.False(t, page.Data[i].CreatedAt.After(page.Data[i-1].CreatedAt))
	}

	// Concatenating all pages yields every record exactly once
	seen := make(map[string]bool)
	for p := 1; p <= page.Pagination.TotalPages; p++ {
		result, err := svc.List(ctx, filter, p, 10)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Data), 10)
		for _, tx := range result.Data {
			assert.False(t, seen[tx.ID], "duplicate record across pages")
			seen[tx.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestList_Defaults(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	page, err := svc.List(context.Background(), store.TransactionFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, 0, page.Pagination.TotalPages)
}

func TestGetUserBalance_NotFound(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	_, err := svc.GetUserBalance(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failingUserStore refuses balance writes while behaving normally otherwise
type failingUserStore struct {
	store.UserStore
}

func (f *failingUserStore) UpdateBalance(context.Context, string, float64) error {
	return errors.New("store unavailable")
}

func TestSyncFailureDoesNotFailTheMutation(t *testing.T) {
	txs := store.NewMemoryTransactionStore()
	users := store.NewMemoryUserStore()
	balances := NewBalanceSynchronizer(txs, &failingUserStore{users}, nil)
	svc := NewTransactionService(txs, users, NewRoleGate(users), balances)
	adminID := seedUser(t, users, domain.RoleAdmin)
	ctx := context.Background()

	tx, err := svc.Create(ctx, validInput(adminID))
	require.NoError(t, err, "the primary mutation must succeed")

	stored, err := txs.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, stored.ID)

	// Balance stays stale, the sync failure was swallowed
	balance, err := svc.GetUserBalance(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}
