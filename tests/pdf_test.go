package tests

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ferrepos/internal/infra"
	"ferrepos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facturaDePrueba() *model.Factura {
	return &model.Factura{
		ID:                   uuid.New(),
		Numero:               "FAC-20260901-0001",
		ClienteTipoDocumento: "CC",
		ClienteDocumento:     "1020304050",
		ClienteNombre:        "Pedro Gómez",
		EmpresaNombre:        "Ferretería El Tornillo",
		EmpresaNIT:           "901234567-8",
		EmpresaDireccion:     "Calle 45 # 12-30",
		Subtotal:             decimal.NewFromInt(65000),
		Impuesto:             decimal.Zero,
		Total:                decimal.NewFromInt(65000),
		MetodoPago:           "efectivo",
		MontoRecibido:        decimal.NewFromInt(70000),
		Cambio:               decimal.NewFromInt(5000),
		Estado:               model.FacturaActiva,
		CreatedAt:            time.Now(),
		Detalles: []model.DetalleFactura{
			{
				ProductoID:     uuid.New(),
				ProductoCodigo: "MART-001",
				ProductoNombre: "Martillo de uña",
				Cantidad:       2,
				PrecioUnitario: decimal.NewFromInt(25000),
				SubtotalLinea:  decimal.NewFromInt(50000),
			},
			{
				ProductoID:     uuid.New(),
				ProductoCodigo: "TORN-001",
				ProductoNombre: "Caja tornillos 1/4",
				Cantidad:       3,
				PrecioUnitario: decimal.NewFromInt(5000),
				SubtotalLinea:  decimal.NewFromInt(15000),
			},
		},
	}
}

func TestGenerateFacturaPDF(t *testing.T) {
	dir := t.TempDir()

	path, err := infra.GenerateFacturaPDF(facturaDePrueba(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "factura_FAC-20260901-0001.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500), "el PDF no puede estar vacío")
}

func TestGenerateFacturaPDF_Anulada(t *testing.T) {
	dir := t.TempDir()
	factura := facturaDePrueba()
	factura.Estado = model.FacturaAnulada

	path, err := infra.GenerateFacturaPDF(factura, dir)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGenerateFacturaPDF_CreaDirectorio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "anidado", "pdfs")

	path, err := infra.GenerateFacturaPDF(facturaDePrueba(), dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
