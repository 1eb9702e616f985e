package tests

import (
	"context"
	"strings"
	"testing"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"
	"ferrepos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Crear(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) ObtenerPorDocumento(_ context.Context, documento string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.Documento == documento {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) Listar(_ context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	matched := make([]model.Cliente, 0)
	for _, c := range r.clientes {
		if !c.Activo {
			continue
		}
		if filter.Busqueda != "" &&
			!strings.Contains(strings.ToLower(c.Nombre), strings.ToLower(filter.Busqueda)) &&
			!strings.Contains(c.Documento, filter.Busqueda) {
			continue
		}
		matched = append(matched, *c)
	}
	return matched, int64(len(matched)), nil
}

func (r *stubClienteRepo) Actualizar(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCrearCliente(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)

	resp, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "CC",
		Documento:     "1020304050",
		Nombre:        "Pedro Gómez",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pedro Gómez", resp.Nombre)
	assert.True(t, resp.Activo)
}

func TestCrearCliente_DocumentoDuplicado(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)

	_, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "CC", Documento: "1020304050", Nombre: "Pedro Gómez",
	})
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "CC", Documento: "1020304050", Nombre: "Otro Pedro",
	})
	assert.ErrorIs(t, err, service.ErrDocumentoDuplicado)
}

func TestObtenerClientePorDocumento(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)

	_, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "NIT", Documento: "901234567", Nombre: "Constructora Andes",
	})
	require.NoError(t, err)

	resp, err := svc.ObtenerPorDocumento(context.Background(), "901234567")
	require.NoError(t, err)
	assert.Equal(t, "Constructora Andes", resp.Nombre)

	_, err = svc.ObtenerPorDocumento(context.Background(), "000")
	assert.ErrorIs(t, err, service.ErrClienteNoEncontrado)
}

func TestActualizarCliente_CamposParciales(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)

	creado, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "CC", Documento: "1020304050", Nombre: "Pedro Gómez",
	})
	require.NoError(t, err)

	tel := "3001234567"
	id := uuid.MustParse(creado.ID)
	resp, err := svc.Actualizar(context.Background(), id, dto.ActualizarClienteRequest{
		Telefono: &tel,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Telefono)
	assert.Equal(t, "3001234567", *resp.Telefono)
	// Fields not present in the patch stay untouched.
	assert.Equal(t, "Pedro Gómez", resp.Nombre)
}

func TestDesactivarCliente_SaleDelListado(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)

	creado, err := svc.Crear(context.Background(), dto.CrearClienteRequest{
		TipoDocumento: "CC", Documento: "1020304050", Nombre: "Pedro Gómez",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Desactivar(context.Background(), uuid.MustParse(creado.ID)))

	lista, err := svc.Listar(context.Background(), dto.ClienteFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(0), lista.Pagination.Total)
}
