package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/lock"
	"bendahara/internal/models"
	"bendahara/internal/pagination"
	"bendahara/internal/revalidate"
	"bendahara/internal/testutil"
)

// recordingLocker runs fn inline and remembers the keys it was asked for.
type recordingLocker struct {
	keys [][]string
	err  error
}

func (l *recordingLocker) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, append([]string(nil), keys...))
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

type txFixture struct {
	db       *gorm.DB
	svc      TransactionServicer
	notifier *recordingNotifier
	admin    *models.User
	komite   *models.User
}

func newTxFixture(t *testing.T, locker lock.Locker) *txFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	testutil.SeedSystemCategories(t, db)

	notifier := &recordingNotifier{}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	svc := NewTransactionService(db, NewCategoryService(db, notifier), NewPaymentGuard(db), locker, notifier)

	return &txFixture{
		db:       db,
		svc:      svc,
		notifier: notifier,
		admin:    testutil.CreateTestUser(t, db, models.RoleAdmin),
		komite:   testutil.CreateTestUser(t, db, models.RoleKomite),
	}
}

func (f *txFixture) students(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, testutil.CreateTestUser(t, f.db, models.RoleSantri).ID)
	}
	return ids
}

func (f *txFixture) countRows(t *testing.T, code string) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&models.Transaction{}).Where("type = ?", code).Count(&count).Error; err != nil {
		t.Fatalf("failed to count transactions: %v", err)
	}
	return count
}

func TestCreateBatch(t *testing.T) {
	ctx := context.Background()
	march := testutil.Date(2024, 3, 20)

	t.Run("skips_students_who_already_paid", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 5)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 150000, testutil.Date(2024, 3, 2), &ids[1])
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 150000, testutil.Date(2024, 3, 9), &ids[4])
		before := f.countRows(t, models.CodeSPP)

		result, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{
			Type:       models.CodeSPP,
			Amount:     150000,
			StudentIDs: ids,
			Date:       march,
		})
		testutil.AssertNoError(t, err)

		if result.Processed != 3 || result.Skipped != 2 {
			t.Errorf("expected processed=3 skipped=2, got %+v", result)
		}
		if created := f.countRows(t, models.CodeSPP) - before; created != 3 {
			t.Errorf("expected exactly 3 new rows, got %d", created)
		}
		if f.notifier.count() != 1 {
			t.Errorf("expected 1 revalidation, got %d", f.notifier.count())
		}
	})

	t.Run("rows_share_every_field_but_student", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 3)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{
			Type:        models.CodeTabungan,
			Amount:      25000,
			Description: "Setoran pekan ini",
			StudentIDs:  ids,
			Date:        march,
		})
		testutil.AssertNoError(t, err)

		var rows []models.Transaction
		f.db.Where("type = ?", models.CodeTabungan).Find(&rows)
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		seen := map[string]bool{}
		for _, r := range rows {
			if r.Amount != 25000 || r.Description != "Setoran pekan ini" || r.CreatorID != f.admin.ID || !r.Date.Equal(march) {
				t.Errorf("row does not match batch input: %+v", r)
			}
			if !r.IsHandover || r.HandoverStatus != models.HandoverStatusPending {
				t.Errorf("expected admin TABUNGAN to be pending handover, got %v/%s", r.IsHandover, r.HandoverStatus)
			}
			if r.HandoverDate != nil {
				t.Error("handover date must stay empty until handover")
			}
			seen[*r.StudentID] = true
		}
		for _, id := range ids {
			if !seen[id] {
				t.Errorf("missing row for student %s", id)
			}
		}
	})

	t.Run("handover_follows_role_and_category", func(t *testing.T) {
		tests := []struct {
			name       string
			komite     bool
			code       string
			wantStatus models.HandoverStatus
		}{
			{"admin_tabungan", false, models.CodeTabungan, models.HandoverStatusPending},
			{"admin_kas", false, models.CodeKas, models.HandoverStatusPending},
			{"admin_spp", false, models.CodeSPP, models.HandoverStatusNone},
			{"komite_tabungan", true, models.CodeTabungan, models.HandoverStatusNone},
			{"komite_kas", true, models.CodeKas, models.HandoverStatusNone},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newTxFixture(t, nil)
				ids := f.students(t, 1)
				actor := actorOf(f.admin)
				if tt.komite {
					actor = actorOf(f.komite)
				}

				_, err := f.svc.CreateBatch(ctx, actor, BatchInput{Type: tt.code, Amount: 1000, StudentIDs: ids, Date: march})
				testutil.AssertNoError(t, err)

				var row models.Transaction
				f.db.Where("type = ?", tt.code).First(&row)
				if row.HandoverStatus != tt.wantStatus {
					t.Errorf("expected %s, got %s", tt.wantStatus, row.HandoverStatus)
				}
				if row.IsHandover != (tt.wantStatus == models.HandoverStatusPending) {
					t.Errorf("isHandover %v inconsistent with status %s", row.IsHandover, row.HandoverStatus)
				}
			})
		}
	})

	t.Run("missing_category_uses_default_handover", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)
		f.db.Unscoped().Where("code = ?", models.CodeKas).Delete(&models.TransactionCategory{})

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeKas, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertNoError(t, err)

		var row models.Transaction
		f.db.Where("type = ?", models.CodeKas).First(&row)
		if row.HandoverStatus != models.HandoverStatusPending {
			t.Errorf("expected KAS without a record to still require handover, got %s", row.HandoverStatus)
		}
	})

	t.Run("category_flag_overrides_default", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)
		f.db.Model(&models.TransactionCategory{}).Where("code = ?", models.CodeTabungan).Update("requires_handover", false)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeTabungan, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertNoError(t, err)

		var row models.Transaction
		f.db.Where("type = ?", models.CodeTabungan).First(&row)
		if row.IsHandover {
			t.Error("expected registry flag to win over the default set")
		}
	})

	t.Run("empty_batch", func(t *testing.T) {
		f := newTxFixture(t, nil)

		for _, ids := range [][]string{nil, {}, {" ", ""}} {
			_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 1000, StudentIDs: ids, Date: march})
			testutil.AssertAppError(t, err, "EMPTY_BATCH")
		}
	})

	t.Run("all_duplicates", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 2)
		for _, id := range ids {
			id := id
			testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 150000, testutil.Date(2024, 3, 1), &id)
		}

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 150000, StudentIDs: ids, Date: march})
		testutil.AssertAppError(t, err, "ALL_DUPLICATES")

		if got := f.countRows(t, models.CodeSPP); got != 2 {
			t.Errorf("expected no new rows, got %d total", got)
		}
		if f.notifier.count() != 0 {
			t.Error("expected no revalidation on failure")
		}
	})

	t.Run("installment_students_never_skipped", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 2)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 75000, testutil.Date(2024, 3, 1), &ids[0])
		testutil.CreateTestInstallment(t, f.db, ids[0], true)

		result, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 75000, StudentIDs: ids, Date: march})
		testutil.AssertNoError(t, err)
		if result.Processed != 2 || result.Skipped != 0 {
			t.Errorf("expected processed=2 skipped=0, got %+v", result)
		}
	})

	t.Run("guard_only_applies_to_spp", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeKas, 1000, testutil.Date(2024, 3, 1), &ids[0])

		result, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeKas, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertNoError(t, err)
		if result.Processed != 1 {
			t.Errorf("expected processed=1, got %+v", result)
		}
	})

	t.Run("duplicate_ids_collapsed", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 2)

		result, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{
			Type: models.CodeSPP, Amount: 1000, StudentIDs: []string{ids[0], ids[1], ids[0]}, Date: march,
		})
		testutil.AssertNoError(t, err)
		if result.Processed != 2 || f.countRows(t, models.CodeSPP) != 2 {
			t.Errorf("expected repeated student to be recorded once, got %+v", result)
		}
	})

	t.Run("unauthorized_before_any_check", func(t *testing.T) {
		f := newTxFixture(t, nil)

		for _, role := range []models.Role{models.RoleSantri, models.RoleGuru} {
			user := testutil.CreateTestUser(t, f.db, role)
			// Empty batch would fail too; the role check must come first.
			_, err := f.svc.CreateBatch(ctx, actorOf(user), BatchInput{Type: models.CodeSPP, Amount: 1000})
			testutil.AssertAppError(t, err, "UNAUTHORIZED")
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: -1, StudentIDs: ids, Date: march})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("insert_failure_is_all_or_nothing", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 3)
		if err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(db *gorm.DB) {
			if db.Statement.Table == "transactions" {
				_ = db.AddError(errors.New("disk full"))
			}
		}); err != nil {
			t.Fatalf("failed to register callback: %v", err)
		}

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertAppError(t, err, "PERSISTENCE_FAILURE")

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != apperrors.ErrPersistenceFailure.Message {
			t.Errorf("expected stable message, got %q", appErr.Message)
		}
		if got := f.countRows(t, models.CodeSPP); got != 0 {
			t.Errorf("expected no rows after failed insert, got %d", got)
		}
	})

	t.Run("spp_locks_every_student_once", func(t *testing.T) {
		locker := &recordingLocker{}
		f := newTxFixture(t, locker)
		ids := f.students(t, 3)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 1000, StudentIDs: append(ids, ids[0]), Date: march})
		testutil.AssertNoError(t, err)

		if len(locker.keys) != 1 {
			t.Fatalf("expected one lock acquisition, got %d", len(locker.keys))
		}
		got := append([]string(nil), locker.keys[0]...)
		sort.Strings(got)
		want := []string{sppLockKey(ids[0]), sppLockKey(ids[1]), sppLockKey(ids[2])}
		sort.Strings(want)
		if len(got) != len(want) {
			t.Fatalf("expected keys %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("expected keys %v, got %v", want, got)
				break
			}
		}
	})

	t.Run("non_spp_takes_no_lock", func(t *testing.T) {
		locker := &recordingLocker{}
		f := newTxFixture(t, locker)
		ids := f.students(t, 2)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeTabungan, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertNoError(t, err)
		if len(locker.keys) != 0 {
			t.Errorf("expected no locks for TABUNGAN, got %v", locker.keys)
		}
	})

	t.Run("lock_failure", func(t *testing.T) {
		locker := &recordingLocker{err: errors.New("redsync: failed to acquire lock")}
		f := newTxFixture(t, locker)
		ids := f.students(t, 1)

		_, err := f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 1000, StudentIDs: ids, Date: march})
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
		if got := f.countRows(t, models.CodeSPP); got != 0 {
			t.Errorf("expected no rows, got %d", got)
		}
	})

	t.Run("concurrent_batches_pay_once", func(t *testing.T) {
		f := newTxFixture(t, nil)
		sqlDB, err := f.db.DB()
		testutil.AssertNoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		ids := f.students(t, 1)

		var wg sync.WaitGroup
		results := make([]error, 6)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = f.svc.CreateBatch(ctx, actorOf(f.admin), BatchInput{Type: models.CodeSPP, Amount: 1000, StudentIDs: ids, Date: march})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			if !errors.Is(err, apperrors.ErrAllDuplicates) {
				t.Errorf("unexpected error: %v", err)
			}
		}
		if succeeded != 1 {
			t.Errorf("expected exactly one batch to succeed, got %d", succeeded)
		}
		if got := f.countRows(t, models.CodeSPP); got != 1 {
			t.Errorf("expected exactly one SPP row, got %d", got)
		}
	})
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	march := testutil.Date(2024, 3, 20)

	t.Run("admin_kas_pending", func(t *testing.T) {
		f := newTxFixture(t, nil)

		tx, err := f.svc.CreateTransaction(ctx, actorOf(f.admin), CreateTransactionInput{Type: models.CodeKas, Amount: 20000, Date: march})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be assigned")
		}
		if tx.StudentID != nil {
			t.Error("expected no student on KAS")
		}
		if tx.HandoverStatus != models.HandoverStatusPending || !tx.IsHandover {
			t.Errorf("expected pending handover, got %v/%s", tx.IsHandover, tx.HandoverStatus)
		}
	})

	t.Run("komite_operational_expense", func(t *testing.T) {
		f := newTxFixture(t, nil)

		tx, err := f.svc.CreateTransaction(ctx, actorOf(f.komite), CreateTransactionInput{
			Type: models.CodeOperasionalKomite, Amount: 5000, Description: "ATK", Date: march,
		})
		testutil.AssertNoError(t, err)
		if tx.HandoverStatus != models.HandoverStatusNone || tx.CreatorID != f.komite.ID {
			t.Errorf("unexpected transaction %+v", tx)
		}
	})

	t.Run("spp_requires_student", func(t *testing.T) {
		f := newTxFixture(t, nil)

		_, err := f.svc.CreateTransaction(ctx, actorOf(f.admin), CreateTransactionInput{Type: models.CodeSPP, Amount: 150000, StudentID: strPtr(" "), Date: march})
		testutil.AssertAppError(t, err, "STUDENT_REQUIRED")
	})

	t.Run("spp_duplicate_payment", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 150000, testutil.Date(2024, 3, 15), &ids[0])

		_, err := f.svc.CreateTransaction(ctx, actorOf(f.admin), CreateTransactionInput{Type: models.CodeSPP, Amount: 150000, StudentID: &ids[0], Date: march})
		testutil.AssertAppError(t, err, "DUPLICATE_PAYMENT")

		_, err = f.svc.CreateTransaction(ctx, actorOf(f.admin), CreateTransactionInput{Type: models.CodeSPP, Amount: 150000, StudentID: &ids[0], Date: testutil.Date(2024, 4, 1)})
		testutil.AssertNoError(t, err)
	})

	t.Run("defaults_date_to_now", func(t *testing.T) {
		f := newTxFixture(t, nil)
		before := time.Now().Add(-time.Second)

		tx, err := f.svc.CreateTransaction(ctx, actorOf(f.komite), CreateTransactionInput{Type: models.CodeKas, Amount: 1})
		testutil.AssertNoError(t, err)
		if tx.Date.Before(before) {
			t.Errorf("expected date to default to now, got %s", tx.Date)
		}
	})

	t.Run("guru_unauthorized", func(t *testing.T) {
		f := newTxFixture(t, nil)
		guru := testutil.CreateTestUser(t, f.db, models.RoleGuru)

		_, err := f.svc.CreateTransaction(ctx, actorOf(guru), CreateTransactionInput{Type: models.CodeKas, Amount: 1})
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("missing_type", func(t *testing.T) {
		f := newTxFixture(t, nil)

		_, err := f.svc.CreateTransaction(ctx, actorOf(f.admin), CreateTransactionInput{Amount: 1})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("komite_visibility_applied", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 1)
		hidden := testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeTabungan, 1000, testutil.Date(2024, 3, 1), &ids[0])
		own := testutil.CreateTestTransaction(t, f.db, f.komite, models.CodeKas, 2000, testutil.Date(2024, 3, 2), nil)

		page, err := f.svc.ListTransactions(ctx, actorOf(f.komite), pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 1 || len(page.Data) != 1 || page.Data[0].ID != own.ID {
			t.Errorf("expected only komite's own transaction, got %+v", page.Data)
		}
		if containsEntry(page.Data, hidden.ID) {
			t.Error("pending admin transaction must be hidden from komite")
		}

		adminPage, err := f.svc.ListTransactions(ctx, actorOf(f.admin), pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if adminPage.TotalItems != 2 {
			t.Errorf("expected admin to see 2 transactions, got %d", adminPage.TotalItems)
		}
	})

	t.Run("paginates_most_recent_first", func(t *testing.T) {
		f := newTxFixture(t, nil)
		for day := 1; day <= 5; day++ {
			testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, int64(day), testutil.Date(2024, 3, day), nil)
		}

		page, err := f.svc.ListTransactions(ctx, actorOf(f.admin), pagination.PageRequest{Page: 1, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 5 || page.TotalPages != 3 || len(page.Data) != 2 {
			t.Fatalf("unexpected page metadata %+v", page)
		}
		if page.Data[0].Amount != 5 || page.Data[1].Amount != 4 {
			t.Errorf("expected most recent first, got %d then %d", page.Data[0].Amount, page.Data[1].Amount)
		}
	})

	t.Run("filters", func(t *testing.T) {
		f := newTxFixture(t, nil)
		ids := f.students(t, 2)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 1, testutil.Date(2024, 2, 10), &ids[0])
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 2, testutil.Date(2024, 3, 10), &ids[0])
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeTabungan, 3, testutil.Date(2024, 3, 11), &ids[0])
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 4, testutil.Date(2024, 3, 12), &ids[1])

		from := testutil.Date(2024, 3, 1)
		to := testutil.Date(2024, 3, 31)
		page, err := f.svc.ListTransactions(ctx, actorOf(f.admin), pagination.PageRequest{}, TransactionFilter{
			FromDate:  &from,
			ToDate:    &to,
			Type:      strPtr(models.CodeSPP),
			StudentID: &ids[0],
		})
		testutil.AssertNoError(t, err)

		if len(page.Data) != 1 || page.Data[0].Amount != 2 {
			t.Errorf("expected only the March SPP of the first student, got %+v", page.Data)
		}
	})

	t.Run("until_keeps_rows_later_on_the_last_day", func(t *testing.T) {
		f := newTxFixture(t, nil)
		lastDay := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
		row := testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 150000, lastDay, nil)
		testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeSPP, 1, testutil.Date(2024, 4, 1), nil)

		from := testutil.Date(2024, 3, 31)
		until := testutil.Date(2024, 4, 1)
		page, err := f.svc.ListTransactions(ctx, actorOf(f.admin), pagination.PageRequest{}, TransactionFilter{
			FromDate: &from,
			Until:    &until,
		})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].ID != row.ID {
			t.Errorf("expected only the 10:00 row of March 31, got %+v", page.Data)
		}

		// An inclusive bound at midnight stops before that row.
		page, err = f.svc.ListTransactions(ctx, actorOf(f.admin), pagination.PageRequest{}, TransactionFilter{
			FromDate: &from,
			ToDate:   &from,
		})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected no rows at or before midnight, got %d", page.TotalItems)
		}
	})

	t.Run("santri_unauthorized", func(t *testing.T) {
		f := newTxFixture(t, nil)
		santri := testutil.CreateTestUser(t, f.db, models.RoleSantri)

		_, err := f.svc.ListTransactions(ctx, actorOf(santri), pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("admin_soft_deletes", func(t *testing.T) {
		f := newTxFixture(t, nil)
		tx := testutil.CreateTestTransaction(t, f.db, f.admin, models.CodeKas, 1000, testutil.Date(2024, 3, 1), nil)

		err := f.svc.DeleteTransaction(ctx, actorOf(f.admin), tx.ID)
		testutil.AssertNoError(t, err)

		if f.countRows(t, models.CodeKas) != 0 {
			t.Error("expected transaction to be hidden after delete")
		}
		var count int64
		f.db.Unscoped().Model(&models.Transaction{}).Where("id = ?", tx.ID).Count(&count)
		if count != 1 {
			t.Error("expected soft delete to keep the row")
		}
		if f.notifier.count() != 1 {
			t.Errorf("expected 1 revalidation, got %d", f.notifier.count())
		}
	})

	t.Run("not_found", func(t *testing.T) {
		f := newTxFixture(t, nil)

		err := f.svc.DeleteTransaction(ctx, actorOf(f.admin), "0191d5a0-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("komite_unauthorized", func(t *testing.T) {
		f := newTxFixture(t, nil)
		tx := testutil.CreateTestTransaction(t, f.db, f.komite, models.CodeKas, 1000, testutil.Date(2024, 3, 1), nil)

		err := f.svc.DeleteTransaction(ctx, actorOf(f.komite), tx.ID)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newTxFixture(t, nil)

		err := f.svc.DeleteTransaction(ctx, authz.Actor{}, "anything")
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

var _ revalidate.Notifier = (*recordingNotifier)(nil)
