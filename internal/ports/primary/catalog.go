package primary

import "context"

// CatalogService defines the primary port for products, work centers and bills of materials.
type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]*Product, error)

	CreateWorkCenter(ctx context.Context, req CreateWorkCenterRequest) (*WorkCenter, error)
	GetWorkCenter(ctx context.Context, workCenterID string) (*WorkCenter, error)
	ListWorkCenters(ctx context.Context) ([]*WorkCenter, error)

	CreateBOM(ctx context.Context, req CreateBOMRequest) (*BOM, error)
	AddBOMComponent(ctx context.Context, req AddBOMComponentRequest) (*BOM, error)
	AddBOMOperation(ctx context.Context, req AddBOMOperationRequest) (*BOM, error)
	GetBOM(ctx context.Context, bomID string) (*BOM, error)
	ListBOMs(ctx context.Context, productID string) ([]*BOM, error)
}

// Product types.
const (
	ProductTypeRawMaterial  = "RAW_MATERIAL"
	ProductTypeFinishedGood = "FINISHED_GOOD"
)

// CreateProductRequest contains parameters for creating a product.
type CreateProductRequest struct {
	Name          string
	SKU           string
	Type          string
	UnitOfMeasure string
	OpeningStock  float64
}

// Product represents a product at the port boundary.
type Product struct {
	ID            string
	Name          string
	SKU           string
	Type          string
	UnitOfMeasure string
	CurrentStock  float64
	CreatedAt     string
}

// ProductFilters contains filter options for querying products.
type ProductFilters struct {
	Type  string
	Limit int
}

// CreateWorkCenterRequest contains parameters for creating a work center.
type CreateWorkCenterRequest struct {
	Name        string
	Code        string
	CostPerHour float64
}

// WorkCenter represents a work center at the port boundary.
type WorkCenter struct {
	ID          string
	Name        string
	Code        string
	CostPerHour float64
	Active      bool
	CreatedAt   string
}

// CreateBOMRequest contains parameters for creating a bill of materials.
type CreateBOMRequest struct {
	ProductID string
	Name      string
	Version   string
}

// AddBOMComponentRequest adds a component line to a bill of materials.
type AddBOMComponentRequest struct {
	BOMID           string
	ProductID       string
	QuantityPerUnit float64
}

// AddBOMOperationRequest adds a routing step to a bill of materials.
type AddBOMOperationRequest struct {
	BOMID           string
	Sequence        int
	Name            string
	WorkCenterID    string
	DurationMinutes int
	SetupMinutes    int
}

// BOM represents a bill of materials at the port boundary.
type BOM struct {
	ID         string
	ProductID  string
	Name       string
	Version    string
	Active     bool
	Components []BOMComponent
	Operations []BOMOperation
	CreatedAt  string
}

// BOMComponent is a component line of a bill of materials.
type BOMComponent struct {
	ProductID       string
	QuantityPerUnit float64
}

// BOMOperation is a routing step of a bill of materials.
type BOMOperation struct {
	Sequence        int
	Name            string
	WorkCenterID    string
	DurationMinutes int
	SetupMinutes    int
}
