package product

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Category", "Price", "SaleAmount", "Stock",
	"IsHot", "IsOnSale", "IsFeatured", "IsTrending", "ViewCount",
	"CreatedAt", "UpdatedAt",
}

// ExportProducts writes every product as an xlsx workbook to w
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	var products []Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}

		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.SaleAmount.StringFixed(2))
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.IsHot)
		row.AddCell().SetValue(p.IsOnSale)
		row.AddCell().SetValue(p.IsFeatured)
		row.AddCell().SetValue(p.IsTrending)
		row.AddCell().SetValue(p.ViewCount)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
