package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetpos/internal/dto"
	"vetpos/internal/model"
	"vetpos/internal/repository"
	"vetpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptService owns the draft → completed receipt lifecycle. Line items may
// be added, removed or requantified only while the receipt is draft; the
// running total is recomputed from the full item set after every mutation,
// always as the last action before the row lock is released.
type ReceiptService interface {
	CreateDraft(ctx context.Context, branchID, staffID uuid.UUID, req dto.CreateDraftRequest) (*dto.ReceiptResponse, error)
	AddItem(ctx context.Context, receiptID uuid.UUID, req dto.AddItemRequest) (int, error)
	// AddVaccineDose is the dedicated path for dose items; the generic AddItem
	// rejects raw vaccine ids to keep doses tied to their issuance record.
	AddVaccineDose(ctx context.Context, receiptID, vaccineID, petID uuid.UUID) (int, error)
	RemoveItem(ctx context.Context, receiptID uuid.UUID, itemNo int) error
	UpdateItemQuantity(ctx context.Context, receiptID uuid.UUID, itemNo, quantity int) error
	Complete(ctx context.Context, receiptID uuid.UUID) (*dto.ReceiptResponse, error)

	GetByID(ctx context.Context, receiptID uuid.UUID) (*dto.ReceiptResponse, error)
	List(ctx context.Context, filter dto.ReceiptFilter) (*dto.ReceiptListResponse, error)

	// One-shot flows: draft, line item and completion in a single transaction.
	RetailPurchase(ctx context.Context, branchID, staffID uuid.UUID, req dto.RetailPurchaseRequest) (*dto.ReceiptResponse, error)
	PurchaseVaccinationPlan(ctx context.Context, branchID, staffID uuid.UUID, req dto.VaccinationPlanPurchaseRequest) (*dto.ReceiptResponse, error)
}

type receiptService struct {
	repo       repository.ReceiptRepository
	pricing    PricingResolver
	loyalty    LoyaltyService
	pets       repository.PetRepository
	customers  repository.CustomerRepository
	catalog    repository.CatalogRepository
	dispatcher *worker.Dispatcher
}

func NewReceiptService(
	repo repository.ReceiptRepository,
	pricing PricingResolver,
	loyalty LoyaltyService,
	pets repository.PetRepository,
	customers repository.CustomerRepository,
	catalog repository.CatalogRepository,
	dispatcher *worker.Dispatcher,
) ReceiptService {
	return &receiptService{
		repo:       repo,
		pricing:    pricing,
		loyalty:    loyalty,
		pets:       pets,
		customers:  customers,
		catalog:    catalog,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreateDraft ───────────────────────────────────────────────────────────────

func (s *receiptService) CreateDraft(ctx context.Context, branchID, staffID uuid.UUID, req dto.CreateDraftRequest) (*dto.ReceiptResponse, error) {
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer id: %w", err)
		}
		if _, err := s.customers.FindByID(ctx, id); err != nil {
			return nil, ErrCustomerNotFound
		}
		customerID = &id
	}

	var rec model.Receipt
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		rec = model.Receipt{
			Number:         number,
			BranchID:       branchID,
			CustomerID:     customerID,
			ReceptionistID: staffID,
			Status:         model.ReceiptDraft,
			PaymentMethod:  req.PaymentMethod,
			TotalPrice:     decimal.Zero,
		}
		return s.repo.Create(ctx, tx, &rec)
	})
	if txErr != nil {
		return nil, txErr
	}
	return receiptToResponse(&rec), nil
}

// ── AddItem ───────────────────────────────────────────────────────────────────
// The draft-status check runs under a row lock BEFORE any mutation: two
// concurrent calls on the same receipt serialize, so an add can never land
// after a concurrent complete.

func (s *receiptService) AddItem(ctx context.Context, receiptID uuid.UUID, req dto.AddItemRequest) (int, error) {
	if req.Item.Kind == model.ItemVaccineDose {
		return 0, ErrUseVaccinationLookup
	}

	item, err := s.pricing.Resolve(ctx, req.Item)
	if err != nil {
		return 0, err
	}

	// Services, plans and doses are single-unit; only retail products take a
	// caller-supplied quantity.
	quantity := 1
	if item.Kind == model.ItemRetailProduct {
		switch {
		case req.Quantity < 0:
			return 0, ErrInvalidQuantity
		case req.Quantity == 0:
			quantity = 1
		default:
			quantity = req.Quantity
		}
	}

	var petID *uuid.UUID
	if req.PetID != nil {
		id, err := uuid.Parse(*req.PetID)
		if err != nil {
			return 0, fmt.Errorf("invalid pet id: %w", err)
		}
		petID = &id
	}

	var itemNo int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, receiptID)
		if err != nil {
			return ErrReceiptNotFound
		}
		if rec.Status != model.ReceiptDraft {
			return ErrReceiptAlreadyCompleted
		}

		if item.Kind == model.ItemVaccinationPlan {
			if petID == nil {
				return ErrPetRequired
			}
			if rec.CustomerID == nil {
				return ErrCustomerRequired
			}
			if _, err := s.pets.FindByID(ctx, *petID); err != nil {
				return ErrPetNotFound
			}
		}

		// Snapshot the unit price now; later catalog changes never touch drafts.
		unitPrice, err := s.pricing.UnitPrice(ctx, item, rec.CustomerID)
		if err != nil {
			return err
		}

		itemNo, err = s.repo.NextItemNoTx(tx, receiptID)
		if err != nil {
			return err
		}
		if err := s.repo.CreateItemTx(tx, &model.ReceiptItem{
			ReceiptID: receiptID,
			ItemNo:    itemNo,
			ItemType:  item.Kind,
			ItemRefID: item.RefID,
			ItemName:  item.Name,
			PetID:     petID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		}); err != nil {
			return err
		}

		if item.Kind == model.ItemVaccinationPlan {
			if err := s.pets.CreatePlanTx(tx, &model.PetVaccinationPlan{
				PetID:             *petID,
				VaccinationPlanID: item.RefID,
				ReceiptID:         receiptID,
				StartDate:         time.Now(),
			}); err != nil {
				return err
			}
		}

		return s.recomputeTotalTx(tx, receiptID)
	})
	if txErr != nil {
		return 0, txErr
	}
	return itemNo, nil
}

func (s *receiptService) AddVaccineDose(ctx context.Context, receiptID, vaccineID, petID uuid.UUID) (int, error) {
	vaccine, err := s.catalog.FindVaccine(ctx, vaccineID)
	if err != nil {
		return 0, ErrItemRefNotFound
	}
	if _, err := s.pets.FindByID(ctx, petID); err != nil {
		return 0, ErrPetNotFound
	}

	var itemNo int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, receiptID)
		if err != nil {
			return ErrReceiptNotFound
		}
		if rec.Status != model.ReceiptDraft {
			return ErrReceiptAlreadyCompleted
		}

		itemNo, err = s.repo.NextItemNoTx(tx, receiptID)
		if err != nil {
			return err
		}
		pid := petID
		if err := s.repo.CreateItemTx(tx, &model.ReceiptItem{
			ReceiptID: receiptID,
			ItemNo:    itemNo,
			ItemType:  model.ItemVaccineDose,
			ItemRefID: vaccineID,
			ItemName:  vaccine.Name,
			PetID:     &pid,
			Quantity:  1,
			UnitPrice: vaccine.Price,
		}); err != nil {
			return err
		}
		return s.recomputeTotalTx(tx, receiptID)
	})
	if txErr != nil {
		return 0, txErr
	}
	return itemNo, nil
}

// ── RemoveItem / UpdateItemQuantity ──────────────────────────────────────────

func (s *receiptService) RemoveItem(ctx context.Context, receiptID uuid.UUID, itemNo int) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, receiptID)
		if err != nil {
			return ErrReceiptNotFound
		}
		if rec.Status != model.ReceiptDraft {
			return ErrReceiptAlreadyCompleted
		}

		affected, err := s.repo.DeleteItemTx(tx, receiptID, itemNo)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		return s.recomputeTotalTx(tx, receiptID)
	})
}

func (s *receiptService) UpdateItemQuantity(ctx context.Context, receiptID uuid.UUID, itemNo, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, receiptID)
		if err != nil {
			return ErrReceiptNotFound
		}
		if rec.Status != model.ReceiptDraft {
			return ErrReceiptAlreadyCompleted
		}

		affected, err := s.repo.UpdateItemQuantityTx(tx, receiptID, itemNo, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		return s.recomputeTotalTx(tx, receiptID)
	})
}

// ── Complete ──────────────────────────────────────────────────────────────────
// Marking the receipt paid and crediting the loyalty ledger are one atomic
// transaction: a crash between the two must never be observable. The draft
// check doubles as the idempotency boundary — a second Complete is rejected
// before the ledger is touched.

func (s *receiptService) Complete(ctx context.Context, receiptID uuid.UUID) (*dto.ReceiptResponse, error) {
	var customerID *uuid.UUID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdateTx(tx, receiptID)
		if err != nil {
			return ErrReceiptNotFound
		}
		if rec.Status != model.ReceiptDraft {
			return ErrReceiptAlreadyCompleted
		}
		customerID = rec.CustomerID

		total, err := s.repo.SumItemsTx(tx, receiptID)
		if err != nil {
			return err
		}
		if err := s.repo.SetTotalTx(tx, receiptID, total); err != nil {
			return err
		}
		if err := s.repo.SetStatusTx(tx, receiptID, model.ReceiptCompleted); err != nil {
			return err
		}

		if rec.CustomerID != nil {
			year := time.Now().Year()
			if err := s.loyalty.IncrementTx(tx, *rec.CustomerID, year, total); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort receipt email — fire and forget.
	if s.dispatcher != nil && customerID != nil {
		if customer, err := s.customers.FindByID(ctx, *customerID); err == nil && customer.Email != nil {
			_ = s.dispatcher.EnqueueReceiptEmail(ctx, worker.ReceiptEmailPayload{
				ReceiptID: receiptID.String(),
				Email:     *customer.Email,
			})
		}
	}

	return s.GetByID(ctx, receiptID)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *receiptService) GetByID(ctx context.Context, receiptID uuid.UUID) (*dto.ReceiptResponse, error) {
	rec, err := s.repo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, ErrReceiptNotFound
	}
	return receiptToResponse(rec), nil
}

func (s *receiptService) List(ctx context.Context, filter dto.ReceiptFilter) (*dto.ReceiptListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	receipts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		items = append(items, *receiptToResponse(&receipts[i]))
	}
	return &dto.ReceiptListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── One-shot purchases ───────────────────────────────────────────────────────

// RetailPurchase checks branch stock, creates a completed single-line receipt
// and credits the ledger, all in one transaction.
func (s *receiptService) RetailPurchase(ctx context.Context, branchID, staffID uuid.UUID, req dto.RetailPurchaseRequest) (*dto.ReceiptResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	product, err := s.catalog.FindRetailProduct(ctx, productID)
	if err != nil {
		return nil, ErrItemRefNotFound
	}
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, ErrCustomerNotFound
	}

	var rec model.Receipt
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stock, err := s.catalog.FindStock(ctx, branchID, productID)
		if err != nil || stock.Quantity < req.Quantity {
			return ErrInsufficientStock
		}

		number, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		total := product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		rec = model.Receipt{
			Number:         number,
			BranchID:       branchID,
			CustomerID:     &customerID,
			ReceptionistID: staffID,
			Status:         model.ReceiptCompleted,
			PaymentMethod:  req.PaymentMethod,
			TotalPrice:     total,
		}
		if err := s.repo.Create(ctx, tx, &rec); err != nil {
			return err
		}
		if err := s.repo.CreateItemTx(tx, &model.ReceiptItem{
			ReceiptID: rec.ID,
			ItemNo:    1,
			ItemType:  model.ItemRetailProduct,
			ItemRefID: productID,
			ItemName:  product.Name,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		}); err != nil {
			return err
		}
		// The decrement re-checks remaining quantity; a concurrent sale
		// landing between the read above and this write surfaces here.
		if err := s.catalog.DecrementStockTx(tx, branchID, productID, req.Quantity); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientStock
			}
			return err
		}
		return s.loyalty.IncrementTx(tx, customerID, time.Now().Year(), total)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetByID(ctx, rec.ID)
}

// PurchaseVaccinationPlan sells a plan for one pet as a completed receipt,
// applying the customer's current rank discount and enrolling the pet.
func (s *receiptService) PurchaseVaccinationPlan(ctx context.Context, branchID, staffID uuid.UUID, req dto.VaccinationPlanPurchaseRequest) (*dto.ReceiptResponse, error) {
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id: %w", err)
	}
	petID, err := uuid.Parse(req.PetID)
	if err != nil {
		return nil, fmt.Errorf("invalid pet id: %w", err)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	plan, err := s.catalog.FindVaccinationPlan(ctx, planID)
	if err != nil {
		return nil, ErrItemRefNotFound
	}
	if _, err := s.pets.FindByID(ctx, petID); err != nil {
		return nil, ErrPetNotFound
	}

	item := &ResolvedItem{Kind: model.ItemVaccinationPlan, RefID: planID, Name: plan.Name, CatalogPrice: plan.Price}
	unitPrice, err := s.pricing.UnitPrice(ctx, item, &customerID)
	if err != nil {
		return nil, err
	}

	var rec model.Receipt
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		rec = model.Receipt{
			Number:         number,
			BranchID:       branchID,
			CustomerID:     &customerID,
			ReceptionistID: staffID,
			Status:         model.ReceiptCompleted,
			PaymentMethod:  req.PaymentMethod,
			TotalPrice:     unitPrice,
		}
		if err := s.repo.Create(ctx, tx, &rec); err != nil {
			return err
		}
		if err := s.repo.CreateItemTx(tx, &model.ReceiptItem{
			ReceiptID: rec.ID,
			ItemNo:    1,
			ItemType:  model.ItemVaccinationPlan,
			ItemRefID: planID,
			ItemName:  plan.Name,
			PetID:     &petID,
			Quantity:  1,
			UnitPrice: unitPrice,
		}); err != nil {
			return err
		}
		if err := s.pets.CreatePlanTx(tx, &model.PetVaccinationPlan{
			PetID:             petID,
			VaccinationPlanID: planID,
			ReceiptID:         rec.ID,
			StartDate:         time.Now(),
		}); err != nil {
			return err
		}
		return s.loyalty.IncrementTx(tx, customerID, time.Now().Year(), unitPrice)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetByID(ctx, rec.ID)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// recomputeTotalTx derives the total from the full line-item set — never
// incrementally — and must be the last write before the lock is released.
func (s *receiptService) recomputeTotalTx(tx *gorm.DB, receiptID uuid.UUID) error {
	total, err := s.repo.SumItemsTx(tx, receiptID)
	if err != nil {
		return err
	}
	return s.repo.SetTotalTx(tx, receiptID, total)
}

func receiptToResponse(rec *model.Receipt) *dto.ReceiptResponse {
	items := make([]dto.ReceiptItemResponse, 0, len(rec.Items))
	for _, it := range rec.Items {
		var petID *string
		if it.PetID != nil {
			s := it.PetID.String()
			petID = &s
		}
		items = append(items, dto.ReceiptItemResponse{
			ItemNo:    it.ItemNo,
			Kind:      it.ItemType,
			Name:      it.ItemName,
			PetID:     petID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}

	var customerID *string
	customerName := ""
	if rec.CustomerID != nil {
		s := rec.CustomerID.String()
		customerID = &s
	}
	if rec.Customer != nil {
		customerName = rec.Customer.Name
	}
	receptionist := ""
	if rec.Receptionist != nil {
		receptionist = rec.Receptionist.Name
	}

	return &dto.ReceiptResponse{
		ID:            rec.ID.String(),
		Number:        rec.Number,
		BranchID:      rec.BranchID.String(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		Receptionist:  receptionist,
		Status:        rec.Status,
		PaymentMethod: rec.PaymentMethod,
		TotalPrice:    rec.TotalPrice,
		Items:         items,
		CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
