package exchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const exportLimit = 10000

// ProductStore contract interface
type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	FindAll(ctx context.Context, f domain.ProductFilters) ([]domain.Product, int64, error)
}

// OrderStore contract interface
type OrderStore interface {
	ListOrders(ctx context.Context, f domain.OrderFilters) ([]domain.Order, int64, error)
}

// CategoryStore contract interface
type CategoryStore interface {
	FindAll(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, int64, error)
}

// ImportRow is one product line of a bulk import payload. Pointer fields
// distinguish "absent" from zero values so row validation can report them.
type ImportRow struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       *int             `json:"stock"`
	Status      string           `json:"status"`
	CategoryID  *uint            `json:"category_id"`
}

type exchangeService struct {
	products   ProductStore
	orders     OrderStore
	categories CategoryStore
}

func NewExchangeService(products ProductStore, orders OrderStore, categories CategoryStore) *exchangeService {
	return &exchangeService{
		products:   products,
		orders:     orders,
		categories: categories,
	}
}

// ImportProducts creates products row by row. A bad row is recorded and
// skipped, it never aborts the batch.
func (s *exchangeService) ImportProducts(ctx context.Context, rows []ImportRow) (domain.ImportResult, error) {
	if len(rows) == 0 {
		return domain.ImportResult{}, apperror.Validation("import payload must contain at least one row")
	}

	result := domain.ImportResult{
		BatchID: uuid.NewString(),
		Errors:  []string{},
	}

	for i, row := range rows {
		rowNum := i + 1

		if row.Name == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: name is required", rowNum))
			continue
		}
		if row.Price == nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: price is required", rowNum))
			continue
		}
		if row.Price.LessThanOrEqual(decimal.Zero) {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: price must be greater than 0", rowNum))
			continue
		}

		product := domain.Product{
			Name:        row.Name,
			Description: row.Description,
			Price:       *row.Price,
			SalePrice:   row.SalePrice,
			Status:      row.Status,
			CategoryID:  row.CategoryID,
		}
		if row.Stock != nil {
			product.Stock = *row.Stock
		}
		if product.Status == "" {
			product.Status = domain.StatusActive
		}

		if err := s.products.Create(ctx, &product); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		result.Success++
	}

	logger.Info("product import finished",
		"batch_id", result.BatchID,
		"success", result.Success,
		"failed", result.Failed,
	)

	return result, nil
}

func (s *exchangeService) ExportProducts(ctx context.Context, format string) (domain.ExportFile, error) {
	products, _, err := s.products.FindAll(ctx, domain.ProductFilters{Page: 1, Limit: exportLimit})
	if err != nil {
		return domain.ExportFile{}, err
	}

	switch format {
	case "json":
		return jsonExport("products", products)
	case "csv", "":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)

		_ = w.Write([]string{"id", "name", "description", "price", "sale_price", "stock", "status", "category"})
		for _, p := range products {
			salePrice := ""
			if p.SalePrice != nil {
				salePrice = p.SalePrice.String()
			}
			category := ""
			if p.Category != nil {
				category = p.Category.Name
			}
			_ = w.Write([]string{
				strconv.FormatUint(uint64(p.ID), 10),
				p.Name,
				p.Description,
				p.Price.String(),
				salePrice,
				strconv.Itoa(p.Stock),
				p.Status,
				category,
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return domain.ExportFile{}, apperror.Internal(err, "failed to build csv export")
		}

		return csvExport("products", buf.Bytes()), nil
	default:
		return domain.ExportFile{}, apperror.Validation("invalid export format (csv, json)")
	}
}

func (s *exchangeService) ExportOrders(ctx context.Context, format string) (domain.ExportFile, error) {
	orders, _, err := s.orders.ListOrders(ctx, domain.OrderFilters{Page: 1, Limit: exportLimit})
	if err != nil {
		return domain.ExportFile{}, err
	}

	switch format {
	case "json":
		return jsonExport("orders", orders)
	case "csv", "":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)

		_ = w.Write([]string{"id", "user_email", "total_amount", "status", "items", "created_at"})
		for _, o := range orders {
			email := ""
			if o.User != nil {
				email = o.User.Email
			}
			_ = w.Write([]string{
				strconv.FormatUint(uint64(o.ID), 10),
				email,
				o.TotalAmount.String(),
				o.Status,
				strconv.Itoa(len(o.Items)),
				o.CreatedAt.Format(time.RFC3339),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return domain.ExportFile{}, apperror.Internal(err, "failed to build csv export")
		}

		return csvExport("orders", buf.Bytes()), nil
	default:
		return domain.ExportFile{}, apperror.Validation("invalid export format (csv, json)")
	}
}

func (s *exchangeService) ExportCategories(ctx context.Context, format string) (domain.ExportFile, error) {
	categories, _, err := s.categories.FindAll(ctx, domain.CategoryFilters{Page: 1, Limit: exportLimit})
	if err != nil {
		return domain.ExportFile{}, err
	}

	switch format {
	case "json":
		return jsonExport("categories", categories)
	case "csv", "":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)

		_ = w.Write([]string{"id", "name", "status", "created_at"})
		for _, c := range categories {
			_ = w.Write([]string{
				strconv.FormatUint(uint64(c.ID), 10),
				c.Name,
				c.Status,
				c.CreatedAt.Format(time.RFC3339),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return domain.ExportFile{}, apperror.Internal(err, "failed to build csv export")
		}

		return csvExport("categories", buf.Bytes()), nil
	default:
		return domain.ExportFile{}, apperror.Validation("invalid export format (csv, json)")
	}
}

func csvExport(name string, content []byte) domain.ExportFile {
	return domain.ExportFile{
		Content:     content,
		Filename:    fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02")),
		ContentType: "text/csv",
	}
}

func jsonExport(name string, v interface{}) (domain.ExportFile, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.ExportFile{}, apperror.Internal(err, "failed to build json export")
	}

	return domain.ExportFile{
		Content:     content,
		Filename:    fmt.Sprintf("%s_%s.json", name, time.Now().Format("2006-01-02")),
		ContentType: "application/json",
	}, nil
}
