package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	productRepo    secondary.ProductRepository
	workCenterRepo secondary.WorkCenterRepository
	bomRepo        secondary.BOMRepository
	journal        journal
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(
	productRepo secondary.ProductRepository,
	workCenterRepo secondary.WorkCenterRepository,
	bomRepo secondary.BOMRepository,
	eventWriter secondary.EventWriter,
	logger *zap.Logger,
) *CatalogServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogServiceImpl{
		productRepo:    productRepo,
		workCenterRepo: workCenterRepo,
		bomRepo:        bomRepo,
		journal:        journal{writer: eventWriter, logger: logger},
	}
}

// CreateProduct creates a product and books its opening stock.
func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, req primary.CreateProductRequest) (*primary.Product, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.SKU) == "" {
		return nil, apperr.Validation("product name and SKU are required")
	}
	if req.Type != primary.ProductTypeRawMaterial && req.Type != primary.ProductTypeFinishedGood {
		return nil, apperr.Validation("unknown product type %q (want %s or %s)", req.Type, primary.ProductTypeRawMaterial, primary.ProductTypeFinishedGood)
	}
	if req.OpeningStock < 0 {
		return nil, apperr.Validation("opening stock cannot be negative")
	}

	nextID, err := s.productRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate product ID: %w", err)
	}
	err = s.productRepo.Create(ctx, &secondary.ProductRecord{
		ID:            nextID,
		Name:          req.Name,
		SKU:           req.SKU,
		Type:          req.Type,
		UnitOfMeasure: req.UnitOfMeasure,
		CurrentStock:  req.OpeningStock,
	})
	if err != nil {
		return nil, err
	}
	s.journal.created(ctx, secondary.EntityProduct, nextID)

	return s.GetProduct(ctx, nextID)
}

// GetProduct retrieves a product by ID.
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, productID string) (*primary.Product, error) {
	record, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return recordToProduct(record), nil
}

// ListProducts lists products with optional filters.
func (s *CatalogServiceImpl) ListProducts(ctx context.Context, filters primary.ProductFilters) ([]*primary.Product, error) {
	records, err := s.productRepo.List(ctx, secondary.ProductFilters{Type: filters.Type, Limit: filters.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]*primary.Product, len(records))
	for i, r := range records {
		products[i] = recordToProduct(r)
	}
	return products, nil
}

// CreateWorkCenter creates an active work center.
func (s *CatalogServiceImpl) CreateWorkCenter(ctx context.Context, req primary.CreateWorkCenterRequest) (*primary.WorkCenter, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return nil, apperr.Validation("work center name and code are required")
	}
	if req.CostPerHour < 0 {
		return nil, apperr.Validation("cost per hour cannot be negative")
	}

	nextID, err := s.workCenterRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate work center ID: %w", err)
	}
	err = s.workCenterRepo.Create(ctx, &secondary.WorkCenterRecord{
		ID:          nextID,
		Name:        req.Name,
		Code:        strings.ToUpper(req.Code),
		CostPerHour: req.CostPerHour,
		Active:      true,
	})
	if err != nil {
		return nil, err
	}
	s.journal.created(ctx, secondary.EntityWorkCenter, nextID)

	return s.GetWorkCenter(ctx, nextID)
}

// GetWorkCenter retrieves a work center by ID.
func (s *CatalogServiceImpl) GetWorkCenter(ctx context.Context, workCenterID string) (*primary.WorkCenter, error) {
	record, err := s.workCenterRepo.GetByID(ctx, workCenterID)
	if err != nil {
		return nil, err
	}
	return recordToWorkCenter(record), nil
}

// ListWorkCenters lists all work centers.
func (s *CatalogServiceImpl) ListWorkCenters(ctx context.Context) ([]*primary.WorkCenter, error) {
	records, err := s.workCenterRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list work centers: %w", err)
	}
	centers := make([]*primary.WorkCenter, len(records))
	for i, r := range records {
		centers[i] = recordToWorkCenter(r)
	}
	return centers, nil
}

// CreateBOM creates an empty, active bill of materials for a finished good.
func (s *CatalogServiceImpl) CreateBOM(ctx context.Context, req primary.CreateBOMRequest) (*primary.BOM, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Type != primary.ProductTypeFinishedGood {
		return nil, apperr.Validation("product %s is not a finished good", product.ID)
	}

	name := req.Name
	if name == "" {
		name = product.Name
	}
	version := req.Version
	if version == "" {
		version = "1.0"
	}

	nextID, err := s.bomRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate BOM ID: %w", err)
	}
	err = s.bomRepo.Create(ctx, &secondary.BOMRecord{
		ID:        nextID,
		ProductID: product.ID,
		Name:      name,
		Version:   version,
		Active:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bom: %w", err)
	}
	s.journal.created(ctx, secondary.EntityBOM, nextID)

	return s.GetBOM(ctx, nextID)
}

// AddBOMComponent adds a component line to a bill of materials.
func (s *CatalogServiceImpl) AddBOMComponent(ctx context.Context, req primary.AddBOMComponentRequest) (*primary.BOM, error) {
	if req.QuantityPerUnit <= 0 {
		return nil, apperr.Validation("quantity per unit must be positive")
	}
	bom, err := s.bomRepo.GetByID(ctx, req.BOMID)
	if err != nil {
		return nil, err
	}
	if req.ProductID == bom.ProductID {
		return nil, apperr.Validation("a product cannot be a component of itself")
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	err = s.bomRepo.AddComponent(ctx, &secondary.BOMComponentRecord{
		BOMID:           bom.ID,
		ProductID:       req.ProductID,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		return nil, err
	}
	return s.GetBOM(ctx, bom.ID)
}

// AddBOMOperation adds a routing step to a bill of materials.
func (s *CatalogServiceImpl) AddBOMOperation(ctx context.Context, req primary.AddBOMOperationRequest) (*primary.BOM, error) {
	if req.Sequence <= 0 {
		return nil, apperr.Validation("sequence must be positive")
	}
	if req.DurationMinutes < 0 || req.SetupMinutes < 0 {
		return nil, apperr.Validation("durations cannot be negative")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("operation name is required")
	}
	if _, err := s.bomRepo.GetByID(ctx, req.BOMID); err != nil {
		return nil, err
	}
	if _, err := s.workCenterRepo.GetByID(ctx, req.WorkCenterID); err != nil {
		return nil, err
	}

	err := s.bomRepo.AddOperation(ctx, &secondary.BOMOperationRecord{
		BOMID:           req.BOMID,
		Sequence:        req.Sequence,
		Name:            req.Name,
		WorkCenterID:    req.WorkCenterID,
		DurationMinutes: req.DurationMinutes,
		SetupMinutes:    req.SetupMinutes,
	})
	if err != nil {
		return nil, err
	}
	return s.GetBOM(ctx, req.BOMID)
}

// GetBOM retrieves a bill of materials with its lines.
func (s *CatalogServiceImpl) GetBOM(ctx context.Context, bomID string) (*primary.BOM, error) {
	record, err := s.bomRepo.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	return recordToBOM(record), nil
}

// ListBOMs lists bill of materials headers, optionally for one product.
func (s *CatalogServiceImpl) ListBOMs(ctx context.Context, productID string) ([]*primary.BOM, error) {
	records, err := s.bomRepo.List(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boms: %w", err)
	}
	boms := make([]*primary.BOM, len(records))
	for i, r := range records {
		boms[i] = recordToBOM(r)
	}
	return boms, nil
}

// Helper methods

func recordToProduct(r *secondary.ProductRecord) *primary.Product {
	return &primary.Product{
		ID:            r.ID,
		Name:          r.Name,
		SKU:           r.SKU,
		Type:          r.Type,
		UnitOfMeasure: r.UnitOfMeasure,
		CurrentStock:  r.CurrentStock,
		CreatedAt:     r.CreatedAt,
	}
}

func recordToWorkCenter(r *secondary.WorkCenterRecord) *primary.WorkCenter {
	return &primary.WorkCenter{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		CostPerHour: r.CostPerHour,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

func recordToBOM(r *secondary.BOMRecord) *primary.BOM {
	bom := &primary.BOM{
		ID:        r.ID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Version:   r.Version,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
	for _, c := range r.Components {
		bom.Components = append(bom.Components, primary.BOMComponent{ProductID: c.ProductID, QuantityPerUnit: c.QuantityPerUnit})
	}
	for _, op := range r.Operations {
		bom.Operations = append(bom.Operations, primary.BOMOperation{
			Sequence:        op.Sequence,
			Name:            op.Name,
			WorkCenterID:    op.WorkCenterID,
			DurationMinutes: op.DurationMinutes,
			SetupMinutes:    op.SetupMinutes,
		})
	}
	return bom
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
