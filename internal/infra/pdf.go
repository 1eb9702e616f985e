package infra

// pdf.go — invoice PDF generation using go-pdf/fpdf.
// Generates A4 invoices with:
//   - Company header (name, NIT, address, contact)
//   - Invoice number and emission date
//   - Client block (document, name, phone)
//   - Line-item table (code, product name, quantity, unit price, subtotal)
//   - Subtotal / tax / bold total
//   - Payment method, amount received and change for cash sales
//   - ANULADA watermark when the invoice was annulled
//
// The output file is saved to storagePath/factura_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"ferrepos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF renders a Factura to an A4 PDF under storagePath
// (created if needed). Returns the absolute path to the generated file.
func GenerateFacturaPDF(factura *model.Factura, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%s.pdf", factura.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Company header ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, factura.EmpresaNombre, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "NIT: "+factura.EmpresaNIT, "", 1, "C", false, 0, "")
	if factura.EmpresaDireccion != "" {
		pdf.CellFormat(contentW, 5, factura.EmpresaDireccion, "", 1, "C", false, 0, "")
	}
	contacto := factura.EmpresaTelefono
	if factura.EmpresaEmail != "" {
		if contacto != "" {
			contacto += "  |  "
		}
		contacto += factura.EmpresaEmail
	}
	if contacto != "" {
		pdf.CellFormat(contentW, 5, contacto, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	// ── Invoice info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW/2, 7, "Factura "+factura.Numero, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 7, factura.CreatedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	if factura.Estado == model.FacturaAnulada {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentW, 7, "*** ANULADA ***", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(2)

	// ── Client block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, "Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, factura.ClienteNombre, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, factura.ClienteTipoDocumento+" "+factura.ClienteDocumento, "", 1, "L", false, 0, "")
	if factura.ClienteTelefono != nil && *factura.ClienteTelefono != "" {
		pdf.CellFormat(contentW, 5, "Tel: "+*factura.ClienteTelefono, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Items header ─────────────────────────────────────────────────────────
	col1 := contentW * 0.15 // código
	col2 := contentW * 0.37 // nombre
	col3 := contentW * 0.10 // cantidad
	col4 := contentW * 0.19 // precio unitario
	col5 := contentW * 0.19 // subtotal línea

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Código", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 6, "Precio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	for _, det := range factura.Detalles {
		nombre := det.ProductoNombre
		if len(nombre) > 38 {
			nombre = nombre[:37] + "…"
		}
		pdf.CellFormat(col1, 6, det.ProductoCodigo, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, fmt.Sprintf("x%d", det.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+det.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+det.SubtotalLinea.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3 + col4
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "$"+factura.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	if !factura.Impuesto.IsZero() {
		pdf.CellFormat(labelW, 6, "Impuesto:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+factura.Impuesto.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 7, "$"+factura.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payment ──────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 5, "Método de pago:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 5, factura.MetodoPago, "", 1, "R", false, 0, "")
	if factura.MetodoPago == "efectivo" {
		pdf.CellFormat(labelW, 5, "Recibido:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "$"+factura.MontoRecibido.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(labelW, 5, "Cambio:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "$"+factura.Cambio.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
