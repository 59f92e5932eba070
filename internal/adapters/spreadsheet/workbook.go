// Package spreadsheet exporta el carrito y lee catálogos en formato XLSX.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/stylevision/internal/cart"
	"github.com/phenrril/stylevision/internal/domain"
)

const (
	CartSheet    = "Carrinho"
	CatalogSheet = "Catalogo"
)

var cartHeader = []any{"ID", "Nome", "Categoria", "Tamanho", "Cor", "Preço", "Quantidade", "Subtotal"}

// CartWorkbook arma un XLSX con una fila por línea y los totales al final.
func CartWorkbook(lines []domain.CartLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CartSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(CartSheet, "A1", &cartHeader); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(`"R$" #,##0.00`)})
	if err != nil {
		return nil, err
	}
	row := 2
	for _, l := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		vals := []any{l.ItemID, l.Name, l.Category, l.Size, l.Color, l.Price, l.Quantity, l.Subtotal()}
		if err := f.SetSheetRow(CartSheet, cell, &vals); err != nil {
			return nil, err
		}
		row++
	}
	totalRow := row + 1
	if err := f.SetCellValue(CartSheet, fmt.Sprintf("F%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(CartSheet, fmt.Sprintf("G%d", totalRow), cart.TotalQuantity(lines)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(CartSheet, fmt.Sprintf("H%d", totalRow), cart.TotalPrice(lines)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(CartSheet, "F2", fmt.Sprintf("F%d", totalRow), money); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(CartSheet, "H2", fmt.Sprintf("H%d", totalRow), money); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errInvalidPrice = errors.New("precio inválido")

func strPtr(s string) *string { return &s }

// ParseCatalog lee la primera hoja: id, nombre, imagen, categoría, precio. La primera fila es encabezado.
func ParseCatalog(r io.Reader) ([]domain.Garment, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx sin hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	out := []domain.Garment{}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		for len(row) < 5 {
			row = append(row, "")
		}
		id := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if id == "" || name == "" {
			continue
		}
		price, err := parsePrice(row[4])
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio %q: %w", i+1, row[4], err)
		}
		out = append(out, domain.Garment{
			ID:       id,
			Name:     name,
			Image:    strings.TrimSpace(row[2]),
			Category: strings.TrimSpace(row[3]),
			Price:    price,
			Active:   true,
		})
	}
	return out, nil
}

// parsePrice acepta "129.90", "129,90" y "1.234,56".
func parsePrice(s string) (float64, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, errInvalidPrice
	}
	return f, nil
}
