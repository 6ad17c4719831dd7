package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sobitas/backoffice/internal/billing/pricing"
	"github.com/sobitas/backoffice/internal/clients"
	"github.com/sobitas/backoffice/internal/notify"
	"github.com/sobitas/backoffice/internal/settings"
	"github.com/sobitas/backoffice/internal/shared"
	"github.com/sobitas/backoffice/internal/stock"
)

// TaxRateProvider resolves the current VAT percentage.
type TaxRateProvider interface {
	Current(ctx context.Context) float64
}

// TemplateProvider resolves the SMS message templates.
type TemplateProvider interface {
	Templates(ctx context.Context) settings.MessageTemplates
}

// DocumentCounter observes persisted documents and stock mutations.
// Satisfied by observability.Metrics.
type DocumentCounter interface {
	CountDocument(docType, operation string)
	CountStockMovement(direction string)
}

type nopCounter struct{}

func (nopCounter) CountDocument(docType, operation string) {}
func (nopCounter) CountStockMovement(direction string)     {}

type Service struct {
	repo       Repository
	taxRates   TaxRateProvider
	templates  TemplateProvider
	dispatcher notify.Dispatcher
	counter    DocumentCounter
	validate   *validator.Validate
	logger     *slog.Logger
	adminEmail string
	now        func() time.Time
}

func NewService(
	repo Repository,
	taxRates TaxRateProvider,
	templates TemplateProvider,
	dispatcher notify.Dispatcher,
	counter DocumentCounter,
	logger *slog.Logger,
	adminEmail string,
) *Service {
	if counter == nil {
		counter = nopCounter{}
	}
	return &Service{
		repo:       repo,
		taxRates:   taxRates,
		templates:  templates,
		dispatcher: dispatcher,
		counter:    counter,
		validate:   validator.New(),
		logger:     logger,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

// SetClock overrides the service clock. Tests pin the year so numbering
// assertions stay stable.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Get(ctx context.Context, docType DocType, id int64) (*Document, error) {
	return s.repo.Get(ctx, docType, id)
}

func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return s.repo.List(ctx, req)
}

// acceptLine reports whether an input row participates in pricing and
// stock movement. Rows without a product or with a non-positive
// quantity are dropped without an error.
func acceptLine(in LineInput) bool {
	return in.ProductID != 0 && in.Quantity > 0
}

// writeLines prices and inserts the accepted input rows, decrementing
// stock when the variant moves it, and returns the aggregated pre-tax
// and VAT totals.
func (s *Service) writeLines(ctx context.Context, tx TxRepository, docType DocType, docID int64, inputs []LineInput, taxRate float64, moveStock bool) (float64, float64, error) {
	var totalHT, totalTVA float64
	ref := stock.Ref{DocType: string(docType), DocID: docID}
	for _, in := range inputs {
		if !acceptLine(in) {
			continue
		}
		priced := pricing.ComputeLine(in.Quantity, in.UnitPrice, taxRate)
		if err := tx.InsertLine(ctx, Line{
			DocumentID: docID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalHT:    priced.TotalHT,
			TVA:        priced.TVA,
			TotalTTC:   priced.TotalTTC,
		}); err != nil {
			return 0, 0, err
		}
		if moveStock {
			if err := tx.DecrementStock(ctx, in.ProductID, in.Quantity, ref); err != nil {
				return 0, 0, err
			}
			s.counter.CountStockMovement(string(stock.DirectionOut))
		}
		totalHT = pricing.Round2(totalHT + priced.TotalHT)
		totalTVA = pricing.Round2(totalTVA + priced.TVA)
	}
	return totalHT, totalTVA, nil
}

// restoreLines puts each existing line's quantity back on the shelf.
// Quotations never moved stock, so their updates skip this.
func (s *Service) restoreLines(ctx context.Context, tx TxRepository, doc *Document) error {
	if !PolicyFor(doc.DocType).MovesStock {
		return nil
	}
	lines, err := tx.ListLines(ctx, doc.ID)
	if err != nil {
		return err
	}
	ref := stock.Ref{DocType: string(doc.DocType), DocID: doc.ID}
	for _, l := range lines {
		if err := tx.RestoreStock(ctx, l.ProductID, l.Quantity, ref); err != nil {
			return err
		}
		s.counter.CountStockMovement(string(stock.DirectionIn))
	}
	return nil
}

// pendingMessage is a notification assembled inside a transaction and
// dispatched only after commit.
type pendingMessage struct {
	smsPhone  string
	smsBody   string
	emailTo   string
	emailSubj string
	emailBody string
}

func (s *Service) flush(ctx context.Context, pending []pendingMessage) {
	for _, m := range pending {
		if m.smsPhone != "" && m.smsBody != "" {
			s.dispatcher.SMS(ctx, m.smsPhone, m.smsBody)
		}
		if m.emailTo != "" {
			s.dispatcher.Email(ctx, m.emailTo, m.emailSubj, m.emailBody)
		}
	}
}

// resolveClient returns the client id a document should reference. A
// new-client payload inserts the client and stages a welcome SMS; a
// plain id is stored verbatim.
func (s *Service) resolveClient(ctx context.Context, tx TxRepository, clientID *int64, newClient *NewClientInput, pending *[]pendingMessage) (*int64, error) {
	if newClient == nil {
		if clientID == nil {
			return nil, fmt.Errorf("%w: client_id or new_client required", shared.ErrValidation)
		}
		return clientID, nil
	}
	id, err := tx.CreateClient(ctx, clients.Client{
		Name:    newClient.Name,
		Address: newClient.Address,
		Phone1:  newClient.Phone1,
		Phone2:  newClient.Phone2,
		TaxID:   newClient.TaxID,
	})
	if err != nil {
		return nil, err
	}
	if newClient.Phone1 != nil {
		if phone := notify.NormalizePhone(*newClient.Phone1); phone != "" {
			welcome := s.templates.Templates(ctx).Welcome
			if welcome != "" {
				*pending = append(*pending, pendingMessage{smsPhone: phone, smsBody: welcome})
			}
		}
	}
	return &id, nil
}

// Create builds a client-referencing document: delivery note, VAT
// invoice, receipt or quotation. Orders go through CreateOrder.
func (s *Service) Create(ctx context.Context, docType DocType, req CreateDocumentRequest) (*Document, error) {
	if docType == DocTypeOrder {
		return nil, fmt.Errorf("%w: orders use the order endpoints", shared.ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	policy := PolicyFor(docType)

	var taxRate float64
	if policy.TaxedLines {
		taxRate = s.taxRates.Current(ctx)
	}
	stampDuty := 0.0
	if policy.StampDuty {
		stampDuty = req.StampDuty
	}

	var (
		docID   int64
		pending []pendingMessage
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		clientID, err := s.resolveClient(ctx, tx, req.ClientID, req.NewClient, &pending)
		if err != nil {
			return err
		}
		number, err := tx.NextNumber(ctx, docType, s.now())
		if err != nil {
			return err
		}
		docID, err = tx.InsertDocument(ctx, Document{
			DocType:  docType,
			Number:   number,
			ClientID: clientID,
			Note:     req.Note,
		})
		if err != nil {
			return err
		}
		totalHT, totalTVA, err := s.writeLines(ctx, tx, docType, docID, req.Lines, taxRate, policy.MovesStock)
		if err != nil {
			return err
		}
		totalTTC := pricing.TotalTTC(totalHT, totalTVA, req.Discount, stampDuty)
		if policy.FloorTotal {
			totalTTC = pricing.FloorZero(totalTTC)
		}
		return tx.UpdateTotals(ctx, docID, totalHT, totalTVA, req.Discount, stampDuty, 0, totalTTC)
	})
	if err != nil {
		return nil, err
	}

	s.counter.CountDocument(string(docType), "create")
	s.flush(ctx, pending)
	return s.repo.Get(ctx, docType, docID)
}

// Update replaces a document's lines and recomputes its totals. Stock
// consumed by the old lines is restored before the new lines apply.
func (s *Service) Update(ctx context.Context, docType DocType, id int64, req UpdateDocumentRequest) (*Document, error) {
	if docType == DocTypeOrder {
		return nil, fmt.Errorf("%w: orders use the order endpoints", shared.ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	policy := PolicyFor(docType)

	var taxRate float64
	if policy.TaxedLines {
		taxRate = s.taxRates.Current(ctx)
	}
	stampDuty := 0.0
	if policy.StampDuty {
		stampDuty = req.StampDuty
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetForUpdate(ctx, docType, id)
		if err != nil {
			return err
		}
		if err := s.restoreLines(ctx, tx, doc); err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, doc.ID); err != nil {
			return err
		}
		if req.ClientID != nil {
			doc.ClientID = req.ClientID
		}
		if req.Note != nil {
			doc.Note = req.Note
		}
		if err := tx.UpdateHeader(ctx, doc); err != nil {
			return err
		}
		totalHT, totalTVA, err := s.writeLines(ctx, tx, docType, doc.ID, req.Lines, taxRate, policy.MovesStock)
		if err != nil {
			return err
		}
		totalTTC := pricing.TotalTTC(totalHT, totalTVA, req.Discount, stampDuty)
		if policy.FloorTotal {
			totalTTC = pricing.FloorZero(totalTTC)
		}
		return tx.UpdateTotals(ctx, doc.ID, totalHT, totalTVA, req.Discount, stampDuty, 0, totalTTC)
	})
	if err != nil {
		return nil, err
	}

	s.counter.CountDocument(string(docType), "update")
	return s.repo.Get(ctx, docType, id)
}

func customerFromInput(in OrderCustomerInput) *OrderCustomer {
	return &OrderCustomer{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
	}
}

// CreateOrder registers a back-office order. Accepted lines decrement
// stock immediately.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return s.createOrder(ctx, req.Customer, req.Discount, req.ShippingFee, req.Note, req.Lines, true, nil)
}

// CreateStorefrontOrder registers an order arriving from the public
// shop. Stock stays untouched until the back office processes the
// order; confirmation messages go to the customer and the admin inbox.
func (s *Service) CreateStorefrontOrder(ctx context.Context, req StorefrontOrderRequest) (*Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	confirm := s.storefrontMessages
	return s.createOrder(ctx, req.Customer, 0, req.ShippingFee, req.Note, req.Lines, false, confirm)
}

func (s *Service) createOrder(
	ctx context.Context,
	customer OrderCustomerInput,
	discount, shippingFee float64,
	note *string,
	lines []LineInput,
	moveStock bool,
	confirm func(ctx context.Context, doc Document) []pendingMessage,
) (*Document, error) {
	status := StatusNew
	now := s.now()

	var (
		docID   int64
		number  string
		pending []pendingMessage
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		number, err = tx.NextNumber(ctx, DocTypeOrder, now)
		if err != nil {
			return err
		}
		docID, err = tx.InsertDocument(ctx, Document{
			DocType:  DocTypeOrder,
			Number:   number,
			Customer: customerFromInput(customer),
			Status:   &status,
			History:  "",
			Note:     note,
		})
		if err != nil {
			return err
		}
		totalHT, _, err := s.writeLines(ctx, tx, DocTypeOrder, docID, lines, 0, moveStock)
		if err != nil {
			return err
		}
		totalTTC := pricing.OrderTotal(totalHT, discount, shippingFee)
		return tx.UpdateTotals(ctx, docID, totalHT, 0, discount, 0, shippingFee, totalTTC)
	})
	if err != nil {
		return nil, err
	}

	s.counter.CountDocument(string(DocTypeOrder), "create")
	doc, err := s.repo.Get(ctx, DocTypeOrder, docID)
	if err != nil {
		return nil, err
	}
	if confirm != nil {
		pending = append(pending, confirm(ctx, *doc)...)
	}
	s.flush(ctx, pending)
	return doc, nil
}

// UpdateOrder replaces an order's lines, patches its header and tracks
// status transitions in the history field. Stock from the previous
// lines is restored first, so an order created by the storefront starts
// moving stock once the back office edits it.
func (s *Service) UpdateOrder(ctx context.Context, id int64, req UpdateOrderRequest) (*Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", shared.ErrValidation, *req.Status)
	}

	var pending []pendingMessage
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetForUpdate(ctx, DocTypeOrder, id)
		if err != nil {
			return err
		}
		if err := s.restoreLines(ctx, tx, doc); err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, doc.ID); err != nil {
			return err
		}

		if req.Customer != nil {
			doc.Customer = customerFromInput(*req.Customer)
		}
		if req.Note != nil {
			doc.Note = req.Note
		}
		if req.Status != nil && (doc.Status == nil || *doc.Status != *req.Status) {
			doc.History = AppendHistory(doc.History, *req.Status, s.now())
			doc.Status = req.Status
			if req.SendNotification {
				if m := s.statusMessage(ctx, *doc, *req.Status); m != nil {
					pending = append(pending, *m)
				}
			}
		}
		if err := tx.UpdateHeader(ctx, doc); err != nil {
			return err
		}

		totalHT, _, err := s.writeLines(ctx, tx, DocTypeOrder, doc.ID, req.Lines, 0, true)
		if err != nil {
			return err
		}
		totalTTC := pricing.OrderTotal(totalHT, req.Discount, req.ShippingFee)
		return tx.UpdateTotals(ctx, doc.ID, totalHT, 0, req.Discount, 0, req.ShippingFee, totalTTC)
	})
	if err != nil {
		return nil, err
	}

	s.counter.CountDocument(string(DocTypeOrder), "update")
	s.flush(ctx, pending)
	return s.repo.Get(ctx, DocTypeOrder, id)
}

func (s *Service) statusMessage(ctx context.Context, doc Document, status OrderStatus) *pendingMessage {
	if doc.Customer == nil || doc.Customer.Phone == nil {
		return nil
	}
	phone := notify.NormalizePhone(*doc.Customer.Phone)
	if phone == "" {
		s.logger.Warn("skipping status sms, unusable phone",
			slog.String("number", doc.Number), slog.String("phone", *doc.Customer.Phone))
		return nil
	}
	tpl := s.templates.Templates(ctx).StatusChanged
	if tpl == "" {
		return nil
	}
	body := notify.RenderTemplate(tpl, notify.TemplateData{
		FirstName:   doc.Customer.FirstName,
		LastName:    doc.Customer.LastName,
		OrderNumber: doc.Number,
		Status:      status.Label(),
	})
	return &pendingMessage{smsPhone: phone, smsBody: body}
}

func (s *Service) storefrontMessages(ctx context.Context, doc Document) []pendingMessage {
	var out []pendingMessage
	if doc.Customer == nil {
		return out
	}
	templates := s.templates.Templates(ctx)

	if doc.Customer.Phone != nil && templates.OrderPlaced != "" {
		if phone := notify.NormalizePhone(*doc.Customer.Phone); phone != "" {
			body := notify.RenderTemplate(templates.OrderPlaced, notify.TemplateData{
				FirstName:   doc.Customer.FirstName,
				LastName:    doc.Customer.LastName,
				OrderNumber: doc.Number,
				Status:      StatusNew.Label(),
			})
			out = append(out, pendingMessage{smsPhone: phone, smsBody: body})
		}
	}

	summary := fmt.Sprintf("Commande %s de %s %s, total %s TND",
		doc.Number, doc.Customer.FirstName, doc.Customer.LastName, notify.FormatAmount(doc.TotalTTC))
	if s.adminEmail != "" {
		out = append(out, pendingMessage{
			emailTo:   s.adminEmail,
			emailSubj: "Nouvelle commande " + doc.Number,
			emailBody: summary,
		})
	}
	if doc.Customer.Email != nil && *doc.Customer.Email != "" {
		out = append(out, pendingMessage{
			emailTo:   *doc.Customer.Email,
			emailSubj: "Confirmation de votre commande " + doc.Number,
			emailBody: summary,
		})
	}
	return out
}
