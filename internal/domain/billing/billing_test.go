package billing

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/domain/stockledger"
	"vetdesk/pkg/numerator"
)

// --- Fakes ---

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	invoices     map[id.ID]*Invoice
	items        map[id.ID]*InvoiceItem
	installments map[id.ID]*InvoiceInstallment
	statuses     map[string]*InvoiceStatus
	seq          int
	insSeq       map[id.ID]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices:     make(map[id.ID]*Invoice),
		items:        make(map[id.ID]*InvoiceItem),
		installments: make(map[id.ID]*InvoiceInstallment),
		statuses:     make(map[string]*InvoiceStatus),
		insSeq:       make(map[id.ID]int),
	}
}

func (f *fakeRepo) seedStatuses() {
	for _, slug := range []string{StatusSlugOpen, StatusSlugPartiallyPaid, StatusSlugPaid} {
		st := &InvoiceStatus{Slug: slug}
		st.ID = id.New()
		st.Name = slug
		f.statuses[slug] = st
	}
}

func (f *fakeRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	header := *inv
	header.Items = nil
	header.Installments = nil
	f.invoices[inv.ID] = &header
	return nil
}

func (f *fakeRepo) GetInvoiceByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	stored, ok := f.invoices[invoiceID]
	if !ok {
		return nil, nil
	}
	inv := *stored
	for _, item := range f.items {
		if item.InvoiceID == invoiceID {
			inv.Items = append(inv.Items, *item)
		}
	}
	sort.Slice(inv.Items, func(i, j int) bool {
		return inv.Items[i].Description < inv.Items[j].Description
	})
	installments, _ := f.ListInstallments(ctx, invoiceID)
	inv.Installments = installments
	return &inv, nil
}

func (f *fakeRepo) GetInvoiceByAttendance(ctx context.Context, attendanceID id.ID) (*Invoice, error) {
	for _, item := range f.items {
		if item.AttendanceID != nil && *item.AttendanceID == attendanceID {
			return f.GetInvoiceByID(ctx, item.InvoiceID)
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	stored, ok := f.invoices[inv.ID]
	if !ok {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	stored.Total = inv.Total
	stored.DueDate = inv.DueDate
	stored.StatusID = inv.StatusID
	stored.StatusSlug = inv.StatusSlug
	stored.ResponsibleID = inv.ResponsibleID
	stored.PaidAt = inv.PaidAt
	return nil
}

func (f *fakeRepo) ListInvoices(ctx context.Context, lf ListFilter) ([]*Invoice, error) {
	var result []*Invoice
	for invID := range f.invoices {
		inv, _ := f.GetInvoiceByID(ctx, invID)
		result = append(result, inv)
	}
	return result, nil
}

func (f *fakeRepo) CreateItems(ctx context.Context, items []InvoiceItem) error {
	for i := range items {
		item := items[i]
		f.items[item.ID] = &item
	}
	return nil
}

func (f *fakeRepo) UpdateItem(ctx context.Context, item *InvoiceItem) error {
	stored, ok := f.items[item.ID]
	if !ok {
		return apperror.NewNotFound("invoice item", item.ID.String())
	}
	*stored = *item
	return nil
}

func (f *fakeRepo) DeleteAttendanceItems(ctx context.Context, invoiceID, attendanceID id.ID) error {
	for itemID, item := range f.items {
		if item.InvoiceID == invoiceID && item.AttendanceID != nil && *item.AttendanceID == attendanceID {
			delete(f.items, itemID)
		}
	}
	return nil
}

func (f *fakeRepo) GetItem(ctx context.Context, itemID id.ID) (*InvoiceItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("invoice item", itemID.String())
	}
	copied := *item
	return &copied, nil
}

func (f *fakeRepo) DeleteItem(ctx context.Context, itemID id.ID) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepo) GetStatusBySlug(ctx context.Context, slug string) (*InvoiceStatus, error) {
	return f.statuses[slug], nil
}

func (f *fakeRepo) CreateInstallment(ctx context.Context, ins *InvoiceInstallment) error {
	copied := *ins
	f.installments[ins.ID] = &copied
	f.seq++
	f.insSeq[ins.ID] = f.seq
	return nil
}

func (f *fakeRepo) UpdateInstallment(ctx context.Context, ins *InvoiceInstallment) error {
	stored, ok := f.installments[ins.ID]
	if !ok {
		return apperror.NewNotFound("installment", ins.ID.String())
	}
	*stored = *ins
	return nil
}

func (f *fakeRepo) ListInstallments(ctx context.Context, invoiceID id.ID) ([]InvoiceInstallment, error) {
	var result []InvoiceInstallment
	for _, ins := range f.installments {
		if ins.InvoiceID == invoiceID {
			result = append(result, *ins)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return f.insSeq[result[i].ID] < f.insSeq[result[j].ID]
	})
	return result, nil
}

func (f *fakeRepo) GetInstallment(ctx context.Context, installmentID id.ID) (*InvoiceInstallment, error) {
	ins, ok := f.installments[installmentID]
	if !ok {
		return nil, apperror.NewNotFound("installment", installmentID.String())
	}
	copied := *ins
	return &copied, nil
}

type fakeAttendances struct {
	byID map[id.ID]*attendance.Attendance
}

func (f *fakeAttendances) GetByID(ctx context.Context, attID id.ID) (*attendance.Attendance, error) {
	att, ok := f.byID[attID]
	if !ok {
		return nil, apperror.NewNotFound("attendance", attID.String())
	}
	return att, nil
}

type fakeAnimals struct {
	byID map[id.ID]*animal.Animal
}

func (f *fakeAnimals) GetByID(ctx context.Context, animalID id.ID) (*animal.Animal, error) {
	a, ok := f.byID[animalID]
	if !ok {
		return nil, apperror.NewNotFound("animal", animalID.String())
	}
	return a, nil
}

type fakeProducts struct {
	byID map[id.ID]*product.Product
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

type memStockRepo struct {
	stock map[id.ID]*stockledger.ProductStock
}

func (m *memStockRepo) GetStock(ctx context.Context, productID id.ID) (*stockledger.ProductStock, error) {
	ps, ok := m.stock[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return ps, nil
}

func (m *memStockRepo) TryDecrement(ctx context.Context, productID id.ID, qty int) (bool, error) {
	ps, ok := m.stock[productID]
	if !ok {
		return false, apperror.NewNotFound("product", productID.String())
	}
	if ps.Stock < qty {
		return false, nil
	}
	ps.Stock -= qty
	return true, nil
}

func (m *memStockRepo) Increment(ctx context.Context, productID id.ID, qty int) error {
	m.stock[productID].Stock += qty
	return nil
}

func (m *memStockRepo) RecordMovement(ctx context.Context, mv *stockledger.Movement) error {
	return nil
}

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return &seqRow{val: q.n}
}

// --- Test harness ---

type harness struct {
	svc         *Service
	repo        *fakeRepo
	attendances *fakeAttendances
	animals     *fakeAnimals
	products    *fakeProducts
	stock       *memStockRepo
}

func newHarness() *harness {
	repo := newFakeRepo()
	repo.seedStatuses()

	h := &harness{
		repo:        repo,
		attendances: &fakeAttendances{byID: make(map[id.ID]*attendance.Attendance)},
		animals:     &fakeAnimals{byID: make(map[id.ID]*animal.Animal)},
		products:    &fakeProducts{byID: make(map[id.ID]*product.Product)},
		stock:       &memStockRepo{stock: make(map[id.ID]*stockledger.ProductStock)},
	}
	h.svc = NewService(
		repo,
		h.attendances,
		h.animals,
		h.products,
		noopTxManager{},
		stockledger.NewLedger(h.stock),
		numerator.New(&seqQuerier{}),
	)
	return h
}

func (h *harness) addAnimal() *animal.Animal {
	a := animal.NewAnimal("AN-1", "Rex", id.New(), "dog")
	h.animals.byID[a.ID] = a
	return a
}

func (h *harness) addProduct(name string, stock int, price string) *product.Product {
	p := product.NewProduct("PR-"+name, name)
	p.Stock = stock
	p.SalePrice = types.MustMoney(price)
	h.products.byID[p.ID] = p
	h.stock.stock[p.ID] = &stockledger.ProductStock{ID: p.ID, Name: name, Stock: stock}
	return p
}

// addAttendance registers a visit with one catalog item (qty 2 × 50.00).
func (h *harness) addAttendance(a *animal.Animal) *attendance.Attendance {
	att := attendance.NewAttendance(a.ID, attendance.KindConsultation)
	att.Date = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	att.CatalogItems = []attendance.CatalogItem{{
		ID:                  id.New(),
		AttendanceID:        att.ID,
		ServiceDefinitionID: id.New(),
		Description:         "Consultation",
		Quantity:            2,
		UnitPrice:           types.MustMoney("50.00"),
	}}
	att.RecalculateItems()
	h.attendances.byID[att.ID] = att
	return att
}

// --- Synchronizer ---

func TestSyncForAttendance_CreatesInvoice(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	assert.True(t, types.MustMoney("100.00").Equal(inv.Total), "total = %s", inv.Total)
	assert.Equal(t, StatusSlugOpen, inv.StatusSlug)
	assert.Equal(t, a.TutorID, inv.TutorID)
	assert.NotEmpty(t, inv.Number)
	require.Len(t, inv.Items, 1)
	assert.False(t, inv.Items[0].IsManual())

	// One installment of the full amount, due attendance date + 7 days.
	require.Len(t, inv.Installments, 1)
	assert.True(t, types.MustMoney("100.00").Equal(inv.Installments[0].Amount))
	assert.Equal(t, att.Date.AddDate(0, 0, 7), inv.Installments[0].DueDate)
	assert.Equal(t, inv.DueDate, inv.Installments[0].DueDate)
}

func TestSyncForAttendance_SyntheticLineWithoutCatalogItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()

	att := attendance.NewAttendance(a.ID, attendance.KindSurgery)
	att.Date = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	price := types.MustMoney("350.00")
	att.Price = &price
	h.attendances.byID[att.ID] = att

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, 1, inv.Items[0].Quantity)
	assert.True(t, price.Equal(inv.Items[0].Total))
	assert.True(t, price.Equal(inv.Total))
}

func TestSyncForAttendance_ExplicitPriceIgnoredWithCatalogItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	// An explicit price set alongside catalog items only matters for
	// the synthetic-line path; the lines must win here.
	price := types.MustMoney("80.00")
	att.Price = &price

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	assert.True(t, types.MustMoney("100.00").Equal(inv.Total), "total = %s", inv.Total)
	assert.True(t, inv.ItemsTotal().Equal(inv.Total), "total matches the line sum, items = %s", inv.ItemsTotal())
	assert.True(t, inv.InstallmentsTotal().Equal(inv.Total))
}

func TestSyncForAttendance_Idempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	first, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	second, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same invoice, not a new one")
	assert.True(t, first.Total.Equal(second.Total))
	assert.Len(t, second.Items, len(first.Items), "no item drift")
	assert.Len(t, second.Installments, 1)
	assert.True(t, second.InstallmentsTotal().Equal(second.Total))
}

func TestSyncForAttendance_ResyncAfterEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	_, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	// Add a product line (qty 1 × 20.00) to the attendance.
	p := h.addProduct("Vermifuge", 10, "20.00")
	att.ProductUsageItems = []attendance.ProductUsageItem{{
		ID:           id.New(),
		AttendanceID: att.ID,
		ProductID:    p.ID,
		Description:  "Vermifuge",
		Quantity:     1,
		UnitPrice:    types.MustMoney("20.00"),
	}}
	att.RecalculateItems()

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	assert.True(t, types.MustMoney("120.00").Equal(inv.Total), "total = %s", inv.Total)
	assert.Len(t, inv.Items, 2)

	// The difference went to the single installment.
	require.Len(t, inv.Installments, 1)
	assert.True(t, types.MustMoney("120.00").Equal(inv.Installments[0].Amount))
}

func TestSyncForAttendance_PreservesManualItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Elizabethan collar",
		Quantity:    1,
		UnitPrice:   types.MustMoney("15.00"),
	})
	require.NoError(t, err)

	resynced, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	assert.True(t, types.MustMoney("115.00").Equal(resynced.Total), "total = %s", resynced.Total)

	manual := 0
	for _, item := range resynced.Items {
		if item.IsManual() {
			manual++
			assert.Equal(t, "Elizabethan collar", item.Description)
		}
	}
	assert.Equal(t, 1, manual, "manual line survives resync untouched")
}

func TestSyncForAttendance_RelinksOrphanedProductItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)
	p := h.addProduct("Bandage", 10, "8.00")

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	// Manually add the same product the attendance will consume.
	pid := p.ID
	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Bandage",
		Quantity:    1,
		UnitPrice:   types.MustMoney("8.00"),
		ProductID:   &pid,
	})
	require.NoError(t, err)

	att.ProductUsageItems = []attendance.ProductUsageItem{{
		ID:           id.New(),
		AttendanceID: att.ID,
		ProductID:    p.ID,
		Description:  "Bandage",
		Quantity:     1,
		UnitPrice:    types.MustMoney("8.00"),
	}}
	att.RecalculateItems()

	resynced, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err)
	// 100 (catalog) + 8 (product), the manual line was re-linked and
	// replaced by the derived product line rather than duplicated.
	assert.True(t, types.MustMoney("108.00").Equal(resynced.Total), "total = %s", resynced.Total)

	productLines := 0
	for _, item := range resynced.Items {
		if item.ProductID != nil {
			productLines++
			assert.False(t, item.IsManual())
		}
	}
	assert.Equal(t, 1, productLines)
}

func TestSyncForAttendance_PaidInvoiceFrozen(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	_, err = h.svc.PayInstallment(ctx, inv.ID, inv.Installments[0].ID)
	require.NoError(t, err)

	// Mutate the attendance, then resync: nothing may change.
	att.CatalogItems[0].Quantity = 10
	att.RecalculateItems()

	frozen, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.NoError(t, err, "re-syncing a paid invoice is a no-op, not an error")
	assert.Equal(t, StatusSlugPaid, frozen.StatusSlug)
	assert.True(t, types.MustMoney("100.00").Equal(frozen.Total), "total unchanged")
}

func TestSyncForAttendance_MissingStatusSeedIsInternal(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	delete(h.repo.statuses, StatusSlugOpen)
	a := h.addAnimal()
	att := h.addAttendance(a)

	_, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInternal, appErr.Code, "deployment defect, not a user error")
}

// --- Reconciler ---

func TestReconcile_DifferenceToLastInstallment(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	invoiceID := id.New()
	h.repo.invoices[invoiceID] = &Invoice{}

	due := func(day int) time.Time {
		return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC)
	}
	first := &InvoiceInstallment{ID: id.New(), InvoiceID: invoiceID, DueDate: due(1), Amount: types.MustMoney("40.00")}
	second := &InvoiceInstallment{ID: id.New(), InvoiceID: invoiceID, DueDate: due(15), Amount: types.MustMoney("60.00")}
	require.NoError(t, h.repo.CreateInstallment(ctx, first))
	require.NoError(t, h.repo.CreateInstallment(ctx, second))

	err := h.svc.Reconcile(ctx, invoiceID, types.MustMoney("120.00"), due(30))

	require.NoError(t, err)
	installments, _ := h.repo.ListInstallments(ctx, invoiceID)
	require.Len(t, installments, 2)
	assert.True(t, types.MustMoney("40.00").Equal(installments[0].Amount), "earlier installment untouched")
	assert.True(t, types.MustMoney("80.00").Equal(installments[1].Amount), "last absorbs the variance")
}

func TestReconcile_NegativeDifference(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	invoiceID := id.New()
	h.repo.invoices[invoiceID] = &Invoice{}

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ins := &InvoiceInstallment{ID: id.New(), InvoiceID: invoiceID, DueDate: due, Amount: types.MustMoney("135.00")}
	require.NoError(t, h.repo.CreateInstallment(ctx, ins))

	err := h.svc.Reconcile(ctx, invoiceID, types.MustMoney("120.00"), due)

	require.NoError(t, err)
	installments, _ := h.repo.ListInstallments(ctx, invoiceID)
	assert.True(t, types.MustMoney("120.00").Equal(installments[0].Amount))
}

func TestReconcile_ExactDecimalSum(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	invoiceID := id.New()
	h.repo.invoices[invoiceID] = &Invoice{}

	due := func(day int) time.Time {
		return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC)
	}
	// Three-way split of 100.00 with classic penny drift.
	for i, amount := range []string{"33.33", "33.33", "33.33"} {
		ins := &InvoiceInstallment{ID: id.New(), InvoiceID: invoiceID, DueDate: due(i + 1), Amount: types.MustMoney(amount)}
		require.NoError(t, h.repo.CreateInstallment(ctx, ins))
	}

	err := h.svc.Reconcile(ctx, invoiceID, types.MustMoney("100.00"), due(30))

	require.NoError(t, err)
	installments, _ := h.repo.ListInstallments(ctx, invoiceID)
	sum := types.Zero()
	for _, ins := range installments {
		sum = sum.Add(ins.Amount)
	}
	assert.True(t, types.MustMoney("100.00").Equal(sum), "exact decimal equality, sum = %s", sum)
	assert.True(t, types.MustMoney("33.34").Equal(installments[2].Amount))
}

// --- Manual items ---

func TestAddManualItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	updated, err := h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Transport fee",
		Quantity:    1,
		UnitPrice:   types.MustMoney("15.00"),
	})

	require.NoError(t, err)
	assert.True(t, types.MustMoney("115.00").Equal(updated.Total), "total = %s", updated.Total)
	assert.True(t, updated.InstallmentsTotal().Equal(updated.Total))
}

func TestAddManualItem_RoundsUnitPriceBeforeTotal(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	updated, err := h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Compounded medication",
		Quantity:    3,
		UnitPrice:   types.MustMoney("9.999"),
	})

	require.NoError(t, err)
	var manual *InvoiceItem
	for i := range updated.Items {
		if updated.Items[i].IsManual() {
			manual = &updated.Items[i]
		}
	}
	require.NotNil(t, manual)
	assert.True(t, types.MustMoney("10.00").Equal(manual.UnitPrice), "unit price = %s", manual.UnitPrice)
	assert.True(t, types.LineTotal(manual.Quantity, manual.UnitPrice).Equal(manual.Total),
		"total derives from the stored unit price, total = %s", manual.Total)
	assert.True(t, types.MustMoney("130.00").Equal(updated.Total), "total = %s", updated.Total)
}

func TestAddManualItem_ProductLinkedDecrementsStock(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)
	p := h.addProduct("Shampoo", 5, "25.00")

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	pid := p.ID
	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Shampoo",
		Quantity:    2,
		UnitPrice:   types.MustMoney("25.00"),
		ProductID:   &pid,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, h.stock.stock[p.ID].Stock)
}

func TestAddManualItem_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)
	p := h.addProduct("Serum", 3, "12.00")

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	pid := p.ID
	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Serum",
		Quantity:    5,
		UnitPrice:   types.MustMoney("12.00"),
		ProductID:   &pid,
	})

	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Serum")
	assert.Contains(t, appErr.Message, "available: 3")
}

func TestAddManualItem_NotSellable(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)
	p := h.addProduct("Internal cleaner", 10, "5.00")
	p.Sellable = false

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	pid := p.ID
	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Internal cleaner",
		Quantity:    1,
		UnitPrice:   types.MustMoney("5.00"),
		ProductID:   &pid,
	})

	require.Error(t, err)
	assert.Equal(t, 10, h.stock.stock[p.ID].Stock, "no stock change")
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)
	p := h.addProduct("Collar", 5, "15.00")

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	pid := p.ID
	inv, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Collar",
		Quantity:    1,
		UnitPrice:   types.MustMoney("15.00"),
		ProductID:   &pid,
	})
	require.NoError(t, err)
	require.Equal(t, 4, h.stock.stock[p.ID].Stock)

	var manualID, linkedID id.ID
	for _, item := range inv.Items {
		if item.IsManual() {
			manualID = item.ID
		} else {
			linkedID = item.ID
		}
	}

	t.Run("attendance-linked item refused", func(t *testing.T) {
		_, err := h.svc.RemoveItem(ctx, inv.ID, linkedID)
		require.Error(t, err)
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, apperror.CodeServiceLinkedItem, appErr.Code)
	})

	t.Run("manual item removed, stock restored", func(t *testing.T) {
		updated, err := h.svc.RemoveItem(ctx, inv.ID, manualID)
		require.NoError(t, err)
		assert.True(t, types.MustMoney("100.00").Equal(updated.Total), "total = %s", updated.Total)
		assert.Equal(t, 5, h.stock.stock[p.ID].Stock, "stock restored")
		assert.True(t, updated.InstallmentsTotal().Equal(updated.Total))
	})
}

// --- Payments ---

func TestPayInstallment_StatusProgression(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	// Split into two installments: add an earlier 50.00 installment,
	// then reconcile so the original one absorbs the difference.
	second := &InvoiceInstallment{
		ID:        id.New(),
		InvoiceID: inv.ID,
		DueDate:   inv.DueDate.AddDate(0, 0, -14),
		Amount:    types.MustMoney("50.00"),
	}
	require.NoError(t, h.repo.CreateInstallment(ctx, second))
	require.NoError(t, h.svc.Reconcile(ctx, inv.ID, inv.Total, inv.DueDate))

	inv, err = h.svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, inv.Installments, 2)
	assert.True(t, inv.InstallmentsTotal().Equal(inv.Total))

	paid, err := h.svc.PayInstallment(ctx, inv.ID, inv.Installments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSlugPartiallyPaid, paid.StatusSlug)
	assert.Nil(t, paid.PaidAt)

	paid, err = h.svc.PayInstallment(ctx, inv.ID, inv.Installments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSlugPaid, paid.StatusSlug)
	assert.NotNil(t, paid.PaidAt)

	// Paid is terminal.
	_, err = h.svc.PayInstallment(ctx, inv.ID, inv.Installments[0].ID)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInvoicePaid, appErr.Code)
}

func TestAddManualItem_PaidInvoiceRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	_, err = h.svc.PayInstallment(ctx, inv.ID, inv.Installments[0].ID)
	require.NoError(t, err)

	_, err = h.svc.AddManualItem(ctx, inv.ID, ManualItemInput{
		Description: "Late fee",
		Quantity:    1,
		UnitPrice:   types.MustMoney("10.00"),
	})

	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInvoicePaid, appErr.Code)
}

// --- Gateway ---

func TestIsPaid(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	paid, err := h.svc.IsPaid(ctx, att.ID)
	require.NoError(t, err)
	assert.False(t, paid, "no invoice yet")

	inv, err := h.svc.SyncForAttendance(ctx, att.ID, SyncOptions{})
	require.NoError(t, err)

	paid, err = h.svc.IsPaid(ctx, att.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	_, err = h.svc.PayInstallment(ctx, inv.ID, inv.Installments[0].ID)
	require.NoError(t, err)

	paid, err = h.svc.IsPaid(ctx, att.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestResyncIfLinked_NoInvoiceIsNoop(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.addAnimal()
	att := h.addAttendance(a)

	err := h.svc.ResyncIfLinked(ctx, att.ID)

	require.NoError(t, err)
	inv, err := h.repo.GetInvoiceByAttendance(ctx, att.ID)
	require.NoError(t, err)
	assert.Nil(t, inv, "no invoice created implicitly")
}
