package service_test

import (
	"context"
	"testing"

	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporte_ResumenMensual(t *testing.T) {
	espacio := nuevoEspacio("500", 5)
	repo := newStubCobroRepo()
	cobros := service.NewCobroService(repo, newStubEspacioRepo(espacio))
	reportes := service.NewReporteService(repo)
	ctx := context.Background()
	id := espacio.ID.String()

	crear := func(req dto.CrearCobroRequest) {
		_, err := cobros.Crear(ctx, req)
		require.NoError(t, err)
	}

	// renta de marzo pagada en abril: cuenta para marzo
	crear(dto.CrearCobroRequest{EspacioID: &id, Concepto: model.ConceptoRenta, Periodo: str("2024-03"),
		MontoPagado: dec("500"), FechaPago: str("2024-04-02"), MetodoPago: str("efectivo")})
	// renta de abril: no cuenta para marzo
	crear(dto.CrearCobroRequest{EspacioID: &id, Concepto: model.ConceptoRenta, Periodo: str("2024-04"),
		MontoPagado: dec("500"), FechaPago: str("2024-03-30"), MetodoPago: str("efectivo")})
	// corta estancia: por fecha de pago
	crear(dto.CrearCobroRequest{EspacioID: &id, Concepto: model.ConceptoCortaEstancia,
		MontoPagado: dec("180"), FechaPago: str("2024-03-15"), MetodoPago: str("tarjeta")})
	crear(dto.CrearCobroRequest{Concepto: model.ConceptoOtro, Periodo: str("2024-03"),
		MontoPagado: dec("40"), FechaPago: str("2024-03-20"), MetodoPago: str("efectivo")})
	// egresos: por periodo, o por fecha de pago sin periodo
	crear(dto.CrearCobroRequest{Tipo: model.TipoEgreso, Categoria: str(model.CategoriaServicios), Concepto: model.ConceptoOtro,
		Periodo: str("2024-03"), MontoPagado: dec("320"), FechaPago: str("2024-04-05"), MetodoPago: str("transferencia")})
	crear(dto.CrearCobroRequest{Tipo: model.TipoEgreso, Categoria: str(model.CategoriaMantenimiento), Concepto: model.ConceptoOtro,
		MontoPagado: dec("75"), FechaPago: str("2024-03-09"), MetodoPago: str("efectivo")})
	crear(dto.CrearCobroRequest{Tipo: model.TipoEgreso, Categoria: str(model.CategoriaNomina), Concepto: model.ConceptoOtro,
		Periodo: str("2024-02"), MontoPagado: dec("900"), FechaPago: str("2024-03-01"), MetodoPago: str("transferencia")})

	resp, err := reportes.ResumenMensual(ctx, 3, 2024)
	require.NoError(t, err)

	assert.True(t, resp.Ingresos.Renta.Equal(dec("500")))
	assert.True(t, resp.Ingresos.CortaEstancia.Equal(dec("180")))
	assert.True(t, resp.Ingresos.Otro.Equal(dec("40")))
	assert.True(t, resp.Ingresos.Total.Equal(dec("720")))
	assert.True(t, resp.Egresos.Servicios.Equal(dec("320")))
	assert.True(t, resp.Egresos.Mantenimiento.Equal(dec("75")))
	assert.True(t, resp.Egresos.Nomina.IsZero(), "nómina de febrero no cuenta")
	assert.True(t, resp.Egresos.Total.Equal(dec("395")))
	assert.True(t, resp.Balance.Equal(dec("325")))
}

func TestReporte_ResumenMensualConAbonos(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	repo := newStubCobroRepo()
	espacioRepo := newStubEspacioRepo(espacio)
	cobros := service.NewCobroService(repo, espacioRepo)
	parciales := service.NewPagoParcialService(repo, espacioRepo, cobros)
	ctx := context.Background()

	for _, monto := range []string{"200", "96"} {
		_, err := parciales.RegistrarAbono(ctx, abono(espacio, monto, "2024-05-10"))
		require.NoError(t, err)
	}

	resp, err := service.NewReporteService(repo).ResumenMensual(ctx, 5, 2024)
	require.NoError(t, err)
	assert.True(t, resp.Ingresos.Renta.Equal(dec("296")), "cada abono suma lo que pagó")
}

func TestEstadisticas_Vacia(t *testing.T) {
	est := service.Estadisticas(nil)
	assert.Empty(t, est.PorEstado)
	assert.True(t, est.Balance.IsZero())
}
