package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/shopfloor/internal/adapters/sqlite"
	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ports/secondary"
)

func TestProductRepository_CreateBooksOpeningStock(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewProductRepository(db)
	ledger := sqlite.NewStockLedgerRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "PROD-001" {
		t.Errorf("expected PROD-001, got %s", id)
	}

	err = repo.Create(ctx, &secondary.ProductRecord{ID: id, Name: "Bolt", SKU: "RM-BOLT", Type: "RAW_MATERIAL", CurrentStock: 25})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UnitOfMeasure != "pcs" {
		t.Errorf("expected default unit pcs, got %q", got.UnitOfMeasure)
	}
	if got.CurrentStock != 25 {
		t.Errorf("expected stock 25, got %v", got.CurrentStock)
	}

	movements, err := ledger.List(ctx, secondary.StockFilters{ProductID: id})
	if err != nil {
		t.Fatalf("List movements failed: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != "ADJUSTMENT" || movements[0].QuantityChange != 25 {
		t.Errorf("expected one opening adjustment of 25, got %+v", movements)
	}
}

func TestProductRepository_DuplicateSKU(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewProductRepository(db)

	err := repo.Create(context.Background(), &secondary.ProductRecord{ID: "PROD-099", Name: "Clone", SKU: "RM-LEG-01", Type: "RAW_MATERIAL"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewProductRepository(db)

	_, err := repo.GetByID(context.Background(), "PROD-404")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestProductRepository_ListAndStockLevels(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewProductRepository(db)
	ctx := context.Background()

	raws, err := repo.List(ctx, secondary.ProductFilters{Type: "RAW_MATERIAL"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(raws) != 4 {
		t.Errorf("expected 4 raw materials, got %d", len(raws))
	}

	levels, err := repo.StockLevels(ctx, []string{"PROD-002", "PROD-005", "PROD-404"})
	if err != nil {
		t.Fatalf("StockLevels failed: %v", err)
	}
	if levels["PROD-002"] != 40 || levels["PROD-005"] != 20 {
		t.Errorf("unexpected levels %v", levels)
	}
	if _, ok := levels["PROD-404"]; ok {
		t.Error("unknown products should be omitted")
	}
}

func TestWorkCenterRepository(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewWorkCenterRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "WC-004" {
		t.Errorf("expected WC-004, got %s", id)
	}

	if err := repo.Create(ctx, &secondary.WorkCenterRecord{ID: id, Name: "Quality Gate", Code: "QA", CostPerHour: 30, Active: true}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Code != "QA" || !got.Active {
		t.Errorf("unexpected work center %+v", got)
	}

	err = repo.Create(ctx, &secondary.WorkCenterRecord{ID: "WC-005", Name: "Dup", Code: "QA"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for duplicate code, got %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 work centers, got %d", len(all))
	}
}

func TestBOMRepository_LinesAndActive(t *testing.T) {
	db := setupSeededDB(t)
	repo := sqlite.NewBOMRepository(db)
	ctx := context.Background()

	bom, err := repo.GetActiveForProduct(ctx, "PROD-001")
	if err != nil {
		t.Fatalf("GetActiveForProduct failed: %v", err)
	}
	if bom.ID != "BOM-001" {
		t.Errorf("expected BOM-001, got %s", bom.ID)
	}
	if len(bom.Components) != 4 {
		t.Errorf("expected 4 components, got %d", len(bom.Components))
	}
	if len(bom.Operations) != 3 || bom.Operations[0].Sequence != 10 {
		t.Errorf("expected 3 operations ordered by sequence, got %+v", bom.Operations)
	}

	err = repo.AddComponent(ctx, &secondary.BOMComponentRecord{BOMID: "BOM-001", ProductID: "PROD-002", QuantityPerUnit: 1})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for duplicate component, got %v", err)
	}
	err = repo.AddOperation(ctx, &secondary.BOMOperationRecord{BOMID: "BOM-001", Sequence: 10, Name: "Again", WorkCenterID: "WC-001"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for duplicate sequence, got %v", err)
	}

	if _, err := repo.GetActiveForProduct(ctx, "PROD-002"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for product without BOM, got %v", err)
	}
}
