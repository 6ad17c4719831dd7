package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sobitas/backoffice/internal/clients"
	"github.com/sobitas/backoffice/internal/settings"
	"github.com/sobitas/backoffice/internal/shared"
	"github.com/sobitas/backoffice/internal/stock"
)

type mockStore struct {
	docs     map[int64]*Document
	lines    map[int64][]Line
	stockQty map[int64]int
	clients  map[int64]clients.Client
	seq      map[string]int64

	nextDocID    int64
	nextLineID   int64
	nextClientID int64

	now time.Time
}

func newMockStore() *mockStore {
	return &mockStore{
		docs:         map[int64]*Document{},
		lines:        map[int64][]Line{},
		stockQty:     map[int64]int{},
		clients:      map[int64]clients.Client{},
		seq:          map[string]int64{},
		nextDocID:    1,
		nextLineID:   1,
		nextClientID: 1,
		now:          time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func (m *mockStore) snapshot() *mockStore {
	c := newMockStore()
	c.nextDocID, c.nextLineID, c.nextClientID, c.now = m.nextDocID, m.nextLineID, m.nextClientID, m.now
	for id, d := range m.docs {
		copied := *d
		c.docs[id] = &copied
	}
	for id, ls := range m.lines {
		c.lines[id] = append([]Line(nil), ls...)
	}
	for id, q := range m.stockQty {
		c.stockQty[id] = q
	}
	for id, cl := range m.clients {
		c.clients[id] = cl
	}
	for key, n := range m.seq {
		c.seq[key] = n
	}
	return c
}

func (m *mockStore) restore(s *mockStore) {
	m.docs, m.lines, m.stockQty, m.clients, m.seq = s.docs, s.lines, s.stockQty, s.clients, s.seq
	m.nextDocID, m.nextLineID, m.nextClientID = s.nextDocID, s.nextLineID, s.nextClientID
}

type mockRepository struct {
	store *mockStore
}

func (r *mockRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	before := r.store.snapshot()
	if err := fn(ctx, &mockTx{store: r.store}); err != nil {
		r.store.restore(before)
		return err
	}
	return nil
}

func (r *mockRepository) Get(ctx context.Context, docType DocType, id int64) (*Document, error) {
	d, ok := r.store.docs[id]
	if !ok || d.DocType != docType {
		return nil, shared.ErrNotFound
	}
	copied := *d
	copied.Lines = append([]Line(nil), r.store.lines[id]...)
	return &copied, nil
}

func (r *mockRepository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	result := []Document{}
	for _, d := range r.store.docs {
		if d.DocType != req.DocType {
			continue
		}
		if req.Status != nil && (d.Status == nil || *d.Status != *req.Status) {
			continue
		}
		result = append(result, *d)
	}
	return result, len(result), nil
}

type mockTx struct {
	store *mockStore
}

func (t *mockTx) NextNumber(ctx context.Context, docType DocType, now time.Time) (string, error) {
	key := fmt.Sprintf("%s:%d", docType, now.Year())
	t.store.seq[key]++
	return fmt.Sprintf("%d/%04d", now.Year(), t.store.seq[key]), nil
}

func (t *mockTx) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	id := t.store.nextDocID
	t.store.nextDocID++
	doc.ID = id
	doc.CreatedAt = t.store.now
	doc.UpdatedAt = t.store.now
	t.store.docs[id] = &doc
	return id, nil
}

func (t *mockTx) GetForUpdate(ctx context.Context, docType DocType, id int64) (*Document, error) {
	d, ok := t.store.docs[id]
	if !ok || d.DocType != docType {
		return nil, shared.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (t *mockTx) UpdateHeader(ctx context.Context, doc *Document) error {
	stored, ok := t.store.docs[doc.ID]
	if !ok {
		return shared.ErrNotFound
	}
	stored.ClientID = doc.ClientID
	stored.Customer = doc.Customer
	stored.Status = doc.Status
	stored.History = doc.History
	stored.Note = doc.Note
	return nil
}

func (t *mockTx) UpdateTotals(ctx context.Context, id int64, totalHT, totalTVA, discount, stampDuty, shippingFee, totalTTC float64) error {
	d, ok := t.store.docs[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.TotalHT, d.TotalTVA, d.Discount = totalHT, totalTVA, discount
	d.StampDuty, d.ShippingFee, d.TotalTTC = stampDuty, shippingFee, totalTTC
	return nil
}

func (t *mockTx) InsertLine(ctx context.Context, line Line) error {
	line.ID = t.store.nextLineID
	t.store.nextLineID++
	t.store.lines[line.DocumentID] = append(t.store.lines[line.DocumentID], line)
	return nil
}

func (t *mockTx) ListLines(ctx context.Context, docID int64) ([]Line, error) {
	return append([]Line(nil), t.store.lines[docID]...), nil
}

func (t *mockTx) DeleteLines(ctx context.Context, docID int64) error {
	delete(t.store.lines, docID)
	return nil
}

func (t *mockTx) DecrementStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error {
	t.store.stockQty[productID] -= qty
	return nil
}

func (t *mockTx) RestoreStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error {
	t.store.stockQty[productID] += qty
	return nil
}

func (t *mockTx) CreateClient(ctx context.Context, client clients.Client) (int64, error) {
	id := t.store.nextClientID
	t.store.nextClientID++
	client.ID = id
	t.store.clients[id] = client
	return id, nil
}

type staticRate float64

func (r staticRate) Current(ctx context.Context) float64 { return float64(r) }

type staticTemplates settings.MessageTemplates

func (s staticTemplates) Templates(ctx context.Context) settings.MessageTemplates {
	return settings.MessageTemplates(s)
}

type recordingDispatcher struct {
	smsPhones []string
	smsBodies []string
	emails    []string
	subjects  []string
}

func (d *recordingDispatcher) SMS(ctx context.Context, phone, body string) {
	d.smsPhones = append(d.smsPhones, phone)
	d.smsBodies = append(d.smsBodies, body)
}

func (d *recordingDispatcher) Email(ctx context.Context, to, subject, body string) {
	d.emails = append(d.emails, to)
	d.subjects = append(d.subjects, subject)
}

type testEnv struct {
	store      *mockStore
	dispatcher *recordingDispatcher
	service    *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMockStore()
	dispatcher := &recordingDispatcher{}
	templates := staticTemplates{
		Welcome:       "Bienvenue chez SOBITAS",
		OrderPlaced:   "Bonjour [prenom] [nom], votre commande [num_commande] est enregistrée.",
		StatusChanged: "Commande [num_commande]: [etat]",
	}
	svc := NewService(&mockRepository{store: store}, staticRate(19), templates, dispatcher, nil,
		slog.Default(), "admin@protein.tn")
	svc.SetClock(func() time.Time { return store.now })
	return &testEnv{store: store, dispatcher: dispatcher, service: svc}
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

func TestCreateVatInvoiceComposesDiscountAndStamp(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[7] = 50

	doc, err := env.service.Create(context.Background(), DocTypeVatInvoice, CreateDocumentRequest{
		ClientID:  int64Ptr(3),
		Discount:  20,
		StampDuty: 1,
		Lines:     []LineInput{{ProductID: 7, Quantity: 2, UnitPrice: 100}},
	})
	require.NoError(t, err)

	assert.InDelta(t, 200.0, doc.TotalHT, 0.001)
	assert.InDelta(t, 38.0, doc.TotalTVA, 0.001)
	assert.InDelta(t, 215.20, doc.TotalTTC, 0.001)
	require.Len(t, doc.Lines, 1)
	assert.InDelta(t, 238.0, doc.Lines[0].TotalTTC, 0.001)
	assert.Equal(t, 48, env.store.stockQty[7])
}

func TestCreateReceiptFloorsNegativeTotal(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[1] = 10

	doc, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Discount: 500,
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 30}},
	})
	require.NoError(t, err)
	assert.Zero(t, doc.TotalTTC)
}

func TestCreateSkipsUnusableLines(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[5] = 20

	doc, err := env.service.Create(context.Background(), DocTypeDeliveryNote, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines: []LineInput{
			{ProductID: 0, Quantity: 3, UnitPrice: 10},
			{ProductID: 5, Quantity: 0, UnitPrice: 10},
			{ProductID: 5, Quantity: -2, UnitPrice: 10},
			{ProductID: 5, Quantity: 4, UnitPrice: 10},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	assert.InDelta(t, 40.0, doc.TotalHT, 0.001)
	assert.Equal(t, 16, env.store.stockQty[5])
}

func TestQuotationNeverTouchesStock(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[9] = 12

	doc, err := env.service.Create(context.Background(), DocTypeQuotation, CreateDocumentRequest{
		ClientID:  int64Ptr(2),
		StampDuty: 1,
		Lines:     []LineInput{{ProductID: 9, Quantity: 5, UnitPrice: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, env.store.stockQty[9])

	_, err = env.service.Update(context.Background(), DocTypeQuotation, doc.ID, UpdateDocumentRequest{
		StampDuty: 1,
		Lines:     []LineInput{{ProductID: 9, Quantity: 2, UnitPrice: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, env.store.stockQty[9])
}

func TestQuotationAppliesVAT(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.service.Create(context.Background(), DocTypeQuotation, CreateDocumentRequest{
		ClientID: int64Ptr(2),
		Lines:    []LineInput{{ProductID: 9, Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 19.0, doc.TotalTVA, 0.001)
	assert.InDelta(t, 119.0, doc.TotalTTC, 0.001)
}

func TestDeliveryNoteHasNoVAT(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[3] = 5

	doc, err := env.service.Create(context.Background(), DocTypeDeliveryNote, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 3, Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)
	assert.Zero(t, doc.TotalTVA)
	assert.InDelta(t, 100.0, doc.TotalTTC, 0.001)
}

func TestUpdateRestoresStockBeforeReapplying(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[4] = 10

	doc, err := env.service.Create(context.Background(), DocTypeDeliveryNote, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 4, Quantity: 5, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, env.store.stockQty[4])

	updated, err := env.service.Update(context.Background(), DocTypeDeliveryNote, doc.ID, UpdateDocumentRequest{
		Lines: []LineInput{{ProductID: 4, Quantity: 2, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, env.store.stockQty[4])
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, 2, updated.Lines[0].Quantity)
	assert.Equal(t, doc.Number, updated.Number)
}

func TestUpdateMissingDocument(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Update(context.Background(), DocTypeReceipt, 42, UpdateDocumentRequest{
		Lines: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNumberingIsSequentialPerVariantAndYear(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	second, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	other, err := env.service.Create(context.Background(), DocTypeQuotation, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, "2026/0001", first.Number)
	assert.Equal(t, "2026/0002", second.Number)
	assert.Equal(t, "2026/0001", other.Number)

	env.store.now = time.Date(2027, 1, 2, 9, 0, 0, 0, time.UTC)
	next, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2027/0001", next.Number)
}

func TestNumberingDoesNotDependOnVisibleRows(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026/0001", first.Number)

	// An allocator that derives the number from the rows it can see
	// would hand out 0001 again here. The counter row is the source of
	// truth, not the document table.
	delete(env.store.docs, first.ID)

	second, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026/0002", second.Number)

	// A rolled-back creation releases its number instead of burning it.
	_, err = env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		Lines: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	third, err := env.service.Create(context.Background(), DocTypeReceipt, CreateDocumentRequest{
		ClientID: int64Ptr(1),
		Lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026/0003", third.Number)
}

func TestNewClientGetsWelcomeSMSAfterCommit(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.service.Create(context.Background(), DocTypeVatInvoice, CreateDocumentRequest{
		NewClient: &NewClientInput{Name: "Nouvelle Cliente", Phone1: strPtr("98123456")},
		Lines:     []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	require.NotNil(t, doc.ClientID)

	require.Len(t, env.dispatcher.smsPhones, 1)
	assert.Equal(t, "21698123456", env.dispatcher.smsPhones[0])
	assert.Equal(t, "Bienvenue chez SOBITAS", env.dispatcher.smsBodies[0])
}

func TestNoWelcomeSMSWhenTransactionFails(t *testing.T) {
	env := newTestEnv(t)

	// A missing client reference and no new client payload aborts the
	// transaction before anything is written.
	_, err := env.service.Create(context.Background(), DocTypeVatInvoice, CreateDocumentRequest{
		Lines: []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: 10}},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, env.dispatcher.smsPhones)
	assert.Empty(t, env.store.docs)
}

func TestCreateOrderDecrementsStockWithEmptyHistory(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[2] = 9

	doc, err := env.service.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:    OrderCustomerInput{FirstName: "Ali", LastName: "Trabelsi", Phone: strPtr("21698123456")},
		ShippingFee: 7,
		Lines:       []LineInput{{ProductID: 2, Quantity: 3, UnitPrice: 50}},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, env.store.stockQty[2])
	require.NotNil(t, doc.Status)
	assert.Equal(t, StatusNew, *doc.Status)
	assert.Empty(t, doc.History)
	assert.InDelta(t, 157.0, doc.TotalTTC, 0.001)
}

func TestOrderTotalMayGoNegative(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[2] = 9

	doc, err := env.service.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:    OrderCustomerInput{FirstName: "Ali", LastName: "Trabelsi"},
		Discount:    100,
		ShippingFee: 7,
		Lines:       []LineInput{{ProductID: 2, Quantity: 1, UnitPrice: 50}},
	})
	require.NoError(t, err)
	assert.InDelta(t, -43.0, doc.TotalTTC, 0.001)
}

func TestStorefrontOrderLeavesStockAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[8] = 15

	doc, err := env.service.CreateStorefrontOrder(context.Background(), StorefrontOrderRequest{
		Customer: OrderCustomerInput{
			FirstName: "Sana",
			LastName:  "Guedria",
			Phone:     strPtr("98765432"),
			Email:     strPtr("sana@example.tn"),
		},
		ShippingFee: 8,
		Lines:       []LineInput{{ProductID: 8, Quantity: 2, UnitPrice: 60}},
	})
	require.NoError(t, err)

	assert.Equal(t, 15, env.store.stockQty[8])
	assert.InDelta(t, 128.0, doc.TotalTTC, 0.001)

	require.Len(t, env.dispatcher.smsPhones, 1)
	assert.Equal(t, "21698765432", env.dispatcher.smsPhones[0])
	assert.Contains(t, env.dispatcher.smsBodies[0], doc.Number)

	require.Len(t, env.dispatcher.emails, 2)
	assert.Equal(t, "admin@protein.tn", env.dispatcher.emails[0])
	assert.Equal(t, "sana@example.tn", env.dispatcher.emails[1])
}

func TestUpdateOrderAppendsHistoryAndSendsStatusSMS(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[2] = 20

	doc, err := env.service.CreateOrder(context.Background(), CreateOrderRequest{
		Customer:    OrderCustomerInput{FirstName: "Ali", LastName: "Trabelsi", Phone: strPtr("98123456")},
		ShippingFee: 7,
		Lines:       []LineInput{{ProductID: 2, Quantity: 3, UnitPrice: 50}},
	})
	require.NoError(t, err)

	env.store.now = env.store.now.Add(2 * time.Hour)
	status := StatusReady
	updated, err := env.service.UpdateOrder(context.Background(), doc.ID, UpdateOrderRequest{
		Status:           &status,
		SendNotification: true,
		ShippingFee:      7,
		Lines:            []LineInput{{ProductID: 2, Quantity: 3, UnitPrice: 50}},
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Status)
	assert.Equal(t, StatusReady, *updated.Status)
	parts := strings.Split(updated.History, ";")
	require.Len(t, parts, 2)
	assert.Equal(t, "prete,2026-03-15 12:30:00", parts[1])

	require.Len(t, env.dispatcher.smsPhones, 1)
	assert.Equal(t, "Commande "+doc.Number+": Prête", env.dispatcher.smsBodies[len(env.dispatcher.smsBodies)-1])
	assert.Equal(t, 17, env.store.stockQty[2])
}

func TestUpdateOrderSameStatusNoHistoryEntry(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[2] = 20

	doc, err := env.service.CreateOrder(context.Background(), CreateOrderRequest{
		Customer: OrderCustomerInput{FirstName: "Ali", LastName: "Trabelsi"},
		Lines:    []LineInput{{ProductID: 2, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)

	status := StatusNew
	updated, err := env.service.UpdateOrder(context.Background(), doc.ID, UpdateOrderRequest{
		Status:           &status,
		SendNotification: true,
		Lines:            []LineInput{{ProductID: 2, Quantity: 1, UnitPrice: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, doc.History, updated.History)
	assert.Empty(t, env.dispatcher.smsPhones)
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	bad := OrderStatus("livree_peut_etre")
	_, err := env.service.UpdateOrder(context.Background(), 1, UpdateOrderRequest{
		Status: &bad,
		Lines:  []LineInput{},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestStorefrontOrderThenAdminUpdateMovesStock(t *testing.T) {
	env := newTestEnv(t)
	env.store.stockQty[6] = 10

	doc, err := env.service.CreateStorefrontOrder(context.Background(), StorefrontOrderRequest{
		Customer: OrderCustomerInput{FirstName: "Sana", LastName: "Guedria"},
		Lines:    []LineInput{{ProductID: 6, Quantity: 4, UnitPrice: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, env.store.stockQty[6])

	// The admin edit restores the old lines even though the storefront
	// create never decremented them, then decrements the new lines, so
	// identical lines net out to zero.
	_, err = env.service.UpdateOrder(context.Background(), doc.ID, UpdateOrderRequest{
		Lines: []LineInput{{ProductID: 6, Quantity: 4, UnitPrice: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, env.store.stockQty[6])
}
