package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/domain/stockledger"
	"vetdesk/internal/infrastructure/http/v1/dto"
	"vetdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"vetdesk/internal/infrastructure/storage/postgres/stock_repo"
)

type productCatalogHandler = CatalogHandler[
	*product.Product,
	dto.CreateProductRequest,
	dto.UpdateProductRequest,
]

// ProductHandler extends the generic catalog handler with stock-aware
// endpoints: low-stock listing and per-product movement history.
type ProductHandler struct {
	*productCatalogHandler
	productRepo *catalog_repo.ProductRepo
	stockRepo   *stock_repo.StockRepo
}

// NewProductHandler wires the product handler.
func NewProductHandler(
	base *BaseHandler,
	service *domain.CatalogService[*product.Product],
	productRepo *catalog_repo.ProductRepo,
	stockRepo *stock_repo.StockRepo,
) *ProductHandler {
	config := CatalogHandlerConfig[
		*product.Product,
		dto.CreateProductRequest,
		dto.UpdateProductRequest,
	]{
		Service:    service,
		EntityName: "product",

		MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
			return req.ToEntity(), nil
		},

		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) (*product.Product, error) {
			req.ApplyTo(existing)
			return existing, nil
		},

		MapToDTO: func(entity *product.Product) any {
			return dto.FromProduct(entity)
		},
	}

	return &ProductHandler{
		productCatalogHandler: NewCatalogHandler(base, config),
		productRepo:           productRepo,
		stockRepo:             stockRepo,
	}
}

// LowStock handles GET /products/low-stock - products at or below minimum stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.productRepo.FindLowStock(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, p := range result.Items {
		items[i] = dto.FromProduct(p)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Movements handles GET /products/:id/movements - stock ledger history.
func (h *ProductHandler) Movements(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := stock_repo.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if dir := c.Query("direction"); dir != "" {
		d := stockledger.Direction(dir)
		if d != stockledger.DirectionIn && d != stockledger.DirectionOut {
			h.Error(c, apperror.NewValidation("invalid direction, expected in or out"))
			return
		}
		filter.Direction = &d
	}
	if refType := c.Query("refType"); refType != "" {
		rt := stockledger.RefType(refType)
		filter.RefType = &rt
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected"))
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected"))
			return
		}
		filter.To = &t
	}

	movements, err := h.stockRepo.ListMovements(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromMovements(movements)})
}
