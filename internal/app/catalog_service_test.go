package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// mockWorkCenterRepository implements secondary.WorkCenterRepository for testing.
type mockWorkCenterRepository struct {
	centers map[string]*secondary.WorkCenterRecord
}

func newMockWorkCenterRepository() *mockWorkCenterRepository {
	return &mockWorkCenterRepository{centers: make(map[string]*secondary.WorkCenterRecord)}
}

func (m *mockWorkCenterRepository) Create(ctx context.Context, wc *secondary.WorkCenterRecord) error {
	for _, existing := range m.centers {
		if existing.Code == wc.Code {
			return apperr.Validation("work center with code %s already exists", wc.Code)
		}
	}
	m.centers[wc.ID] = wc
	return nil
}

func (m *mockWorkCenterRepository) GetByID(ctx context.Context, id string) (*secondary.WorkCenterRecord, error) {
	wc, ok := m.centers[id]
	if !ok {
		return nil, apperr.NotFound("work center", id)
	}
	return wc, nil
}

func (m *mockWorkCenterRepository) List(ctx context.Context) ([]*secondary.WorkCenterRecord, error) {
	var result []*secondary.WorkCenterRecord
	for _, wc := range m.centers {
		result = append(result, wc)
	}
	return result, nil
}

func (m *mockWorkCenterRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("WC-%03d", len(m.centers)+1), nil
}

func newTestCatalogService() (*CatalogServiceImpl, *mockProductRepository, *mockBOMRepository, *mockEventWriter) {
	products := newMockProductRepository()
	boms := newMockBOMRepository()
	events := &mockEventWriter{}
	svc := NewCatalogService(products, newMockWorkCenterRepository(), boms, events, nil)
	return svc, products, boms, events
}

func TestCatalogService_CreateProduct(t *testing.T) {
	svc, _, _, events := newTestCatalogService()

	product, err := svc.CreateProduct(context.Background(), primary.CreateProductRequest{
		Name: "Oak plank", SKU: "OAK-1", Type: primary.ProductTypeRawMaterial, UnitOfMeasure: "pcs", OpeningStock: 40,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if product.ID != "PROD-001" || product.CurrentStock != 40 {
		t.Errorf("unexpected product %+v", product)
	}
	if len(events.entries) != 1 || events.entries[0] != "create PROD-001" {
		t.Errorf("unexpected journal %v", events.entries)
	}
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	tests := []struct {
		name string
		req  primary.CreateProductRequest
	}{
		{"missing name", primary.CreateProductRequest{SKU: "X", Type: primary.ProductTypeRawMaterial}},
		{"missing sku", primary.CreateProductRequest{Name: "X", Type: primary.ProductTypeRawMaterial}},
		{"bad type", primary.CreateProductRequest{Name: "X", SKU: "X", Type: "SERVICE"}},
		{"negative stock", primary.CreateProductRequest{Name: "X", SKU: "X", Type: primary.ProductTypeRawMaterial, OpeningStock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newTestCatalogService()
			if _, err := svc.CreateProduct(context.Background(), tt.req); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCatalogService_CreateWorkCenterUppercasesCode(t *testing.T) {
	svc, _, _, _ := newTestCatalogService()
	ctx := context.Background()

	wc, err := svc.CreateWorkCenter(ctx, primary.CreateWorkCenterRequest{Name: "Assembly", Code: "asm", CostPerHour: 45})
	if err != nil {
		t.Fatalf("CreateWorkCenter failed: %v", err)
	}
	if wc.Code != "ASM" || !wc.Active {
		t.Errorf("unexpected work center %+v", wc)
	}

	_, err = svc.CreateWorkCenter(ctx, primary.CreateWorkCenterRequest{Name: "Assembly 2", Code: "ASM"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected duplicate code rejected, got %v", err)
	}
}

func TestCatalogService_BuildBOM(t *testing.T) {
	svc, products, _, _ := newTestCatalogService()
	ctx := context.Background()
	products.add("PROD-001", primary.ProductTypeFinishedGood, 0)
	products.add("PROD-002", primary.ProductTypeRawMaterial, 10)
	wc, err := svc.CreateWorkCenter(ctx, primary.CreateWorkCenterRequest{Name: "Assembly", Code: "ASM"})
	if err != nil {
		t.Fatalf("CreateWorkCenter failed: %v", err)
	}

	bom, err := svc.CreateBOM(ctx, primary.CreateBOMRequest{ProductID: "PROD-001"})
	if err != nil {
		t.Fatalf("CreateBOM failed: %v", err)
	}
	if bom.Name != "PROD-001" || bom.Version != "1.0" || !bom.Active {
		t.Errorf("unexpected defaults %+v", bom)
	}

	bom, err = svc.AddBOMComponent(ctx, primary.AddBOMComponentRequest{BOMID: bom.ID, ProductID: "PROD-002", QuantityPerUnit: 4})
	if err != nil {
		t.Fatalf("AddBOMComponent failed: %v", err)
	}
	bom, err = svc.AddBOMOperation(ctx, primary.AddBOMOperationRequest{
		BOMID: bom.ID, Sequence: 1, Name: "Assemble", WorkCenterID: wc.ID, DurationMinutes: 30, SetupMinutes: 5,
	})
	if err != nil {
		t.Fatalf("AddBOMOperation failed: %v", err)
	}
	if len(bom.Components) != 1 || len(bom.Operations) != 1 {
		t.Errorf("unexpected bom lines %+v", bom)
	}
}

func TestCatalogService_BOMValidation(t *testing.T) {
	svc, products, boms, _ := newTestCatalogService()
	ctx := context.Background()
	products.add("PROD-001", primary.ProductTypeFinishedGood, 0)
	products.add("PROD-002", primary.ProductTypeRawMaterial, 10)
	boms.boms["BOM-001"] = &secondary.BOMRecord{ID: "BOM-001", ProductID: "PROD-001", Active: true}

	if _, err := svc.CreateBOM(ctx, primary.CreateBOMRequest{ProductID: "PROD-002"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("BOM for raw material: expected validation error, got %v", err)
	}
	if _, err := svc.AddBOMComponent(ctx, primary.AddBOMComponentRequest{BOMID: "BOM-001", ProductID: "PROD-001", QuantityPerUnit: 1}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("self component: expected validation error, got %v", err)
	}
	if _, err := svc.AddBOMComponent(ctx, primary.AddBOMComponentRequest{BOMID: "BOM-001", ProductID: "PROD-002"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}
	if _, err := svc.AddBOMOperation(ctx, primary.AddBOMOperationRequest{BOMID: "BOM-001", Sequence: 0, Name: "Cut"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero sequence: expected validation error, got %v", err)
	}
	if _, err := svc.AddBOMOperation(ctx, primary.AddBOMOperationRequest{BOMID: "BOM-001", Sequence: 1, Name: "Cut", WorkCenterID: "WC-404"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown work center: expected not found, got %v", err)
	}
}
