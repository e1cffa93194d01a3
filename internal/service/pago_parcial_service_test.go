package service_test

import (
	"context"
	"testing"

	"admincs/internal/apierror"
	"admincs/internal/dto"
	"admincs/internal/model"
	"admincs/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPagoParcialSvc(espacios ...*model.Espacio) (service.PagoParcialService, service.CobroService, *stubCobroRepo) {
	repo := newStubCobroRepo()
	espacioRepo := newStubEspacioRepo(espacios...)
	cobros := service.NewCobroService(repo, espacioRepo)
	return service.NewPagoParcialService(repo, espacioRepo, cobros), cobros, repo
}

func abono(espacio *model.Espacio, monto, fechaPago string) dto.RegistrarAbonoRequest {
	return dto.RegistrarAbonoRequest{
		EspacioID:  espacio.ID.String(),
		Concepto:   model.ConceptoRenta,
		Periodo:    "2024-05",
		Abono:      dec(monto),
		FechaPago:  fechaPago,
		MetodoPago: "efectivo",
	}
}

func TestPagoParcial_AbrirCuenta(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, repo := buildPagoParcialSvc(espacio)

	resp, err := svc.RegistrarAbono(context.Background(), abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)

	assert.Equal(t, string(model.VinculoPadre), resp.Abono.Vinculo)
	assert.Equal(t, model.EstadoParcial, resp.Abono.Estado)
	assert.Nil(t, resp.Abono.CobroPadreID)
	assert.True(t, resp.Cuenta.SaldoPendiente.Equal(dec("250")))
	assert.Equal(t, model.EstadoParcial, resp.Cuenta.Estado)
	assert.Len(t, resp.Cuenta.Abonos, 1)
	assert.Len(t, repo.cobros, 1)
}

// Scenario: 450 agreed, paid 200 then 96.
func TestPagoParcial_SegundoAbono(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	resp, err := svc.RegistrarAbono(ctx, abono(espacio, "96", "2024-05-20"))
	require.NoError(t, err)

	hijo := resp.Abono
	assert.Equal(t, string(model.VinculoHijo), hijo.Vinculo)
	require.NotNil(t, hijo.CobroPadreID)
	assert.Equal(t, primero.Abono.ID, *hijo.CobroPadreID)
	assert.True(t, hijo.MontoAcordado.Equal(dec("250")), "el hijo acuerda el saldo previo")
	assert.Equal(t, model.EstadoParcial, hijo.Estado)

	cuenta := resp.Cuenta
	assert.True(t, cuenta.TotalPagado.Equal(dec("296")))
	assert.True(t, cuenta.SaldoPendiente.Equal(dec("154")))
	assert.True(t, cuenta.PorcentajeAvance.Equal(dec("65.78")), "avance = %s", cuenta.PorcentajeAvance)
	assert.Equal(t, model.EstadoParcial, cuenta.Estado)
	require.Len(t, cuenta.Abonos, 2)
	assert.Equal(t, primero.Abono.ID, cuenta.Abonos[0].ID)
}

func TestPagoParcial_AbonoExcedeSaldo(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, repo := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, abono(espacio, "96", "2024-05-20"))
	require.NoError(t, err)

	_, err = svc.RegistrarAbono(ctx, abono(espacio, "300", "2024-05-25"))
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	cuenta, err := svc.ResumenCuenta(ctx, uuid.MustParse(primero.Abono.ID))
	require.NoError(t, err)
	assert.True(t, cuenta.TotalPagado.Equal(dec("296")))
	assert.True(t, cuenta.SaldoPendiente.Equal(dec("154")))
	assert.Len(t, repo.cobros, 2)
}

func TestPagoParcial_AbonoQueSalda(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	_, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	resp, err := svc.RegistrarAbono(ctx, abono(espacio, "250", "2024-05-28"))
	require.NoError(t, err)

	assert.Equal(t, model.EstadoPagado, resp.Abono.Estado)
	assert.True(t, resp.Cuenta.SaldoPendiente.IsZero())
	assert.Equal(t, model.EstadoPagado, resp.Cuenta.Estado)
	assert.True(t, resp.Cuenta.PorcentajeAvance.Equal(dec("100")))

	_, err = svc.RegistrarAbono(ctx, abono(espacio, "1", "2024-05-29"))
	assert.True(t, apierror.Is(err, apierror.KindValidation), "cuenta saldada no admite abonos")
}

func TestPagoParcial_AbonoNoPositivo(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, repo := buildPagoParcialSvc(espacio)

	_, err := svc.RegistrarAbono(context.Background(), abono(espacio, "0", "2024-05-03"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	_, err = svc.RegistrarAbono(context.Background(), abono(espacio, "-10", "2024-05-03"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Empty(t, repo.cobros)
}

func TestPagoParcial_PrimerAbonoExcedeAcordado(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, repo := buildPagoParcialSvc(espacio)

	_, err := svc.RegistrarAbono(context.Background(), abono(espacio, "451", "2024-05-03"))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	assert.Empty(t, repo.cobros)
}

func TestPagoParcial_MontoAcordadoDelRequest(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)

	req := abono(espacio, "100", "2024-05-03")
	req.MontoAcordado = decP("300")
	resp, err := svc.RegistrarAbono(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Cuenta.MontoAcordado.Equal(dec("300")))
	assert.True(t, resp.Cuenta.SaldoPendiente.Equal(dec("200")))
}

func TestPagoParcial_SumaDeAbonos(t *testing.T) {
	espacio := nuevoEspacio("1000", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	var ultimo *dto.RegistrarAbonoResponse
	for _, monto := range []string{"100", "250.25", "49.75", "300"} {
		resp, err := svc.RegistrarAbono(ctx, abono(espacio, monto, "2024-05-10"))
		require.NoError(t, err)
		ultimo = resp
	}

	cuenta := ultimo.Cuenta
	suma := dec("0")
	for _, a := range cuenta.Abonos {
		suma = suma.Add(a.MontoPagado)
	}
	assert.True(t, cuenta.TotalPagado.Equal(suma))
	assert.True(t, cuenta.SaldoPendiente.Equal(cuenta.MontoAcordado.Sub(cuenta.TotalPagado)))
	assert.True(t, cuenta.SaldoPendiente.Equal(dec("300")))
}

func TestPagoParcial_ReintentoTrasConflicto(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, repo := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	_, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)

	repo.conflictos = 1
	resp, err := svc.RegistrarAbono(ctx, abono(espacio, "50", "2024-05-04"))
	require.NoError(t, err)
	assert.Equal(t, string(model.VinculoHijo), resp.Abono.Vinculo)
	assert.True(t, resp.Cuenta.SaldoPendiente.Equal(dec("200")))
}

func TestPagoParcial_ResumenDesdeHijo(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	segundo, err := svc.RegistrarAbono(ctx, abono(espacio, "50", "2024-05-04"))
	require.NoError(t, err)

	cuenta, err := svc.ResumenCuenta(ctx, uuid.MustParse(segundo.Abono.ID))
	require.NoError(t, err)
	assert.Equal(t, primero.Abono.ID, cuenta.CobroPadreID)
}

func TestPagoParcial_ResumenDeCobroIndependiente(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, cobros, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	id := espacio.ID.String()
	c, err := cobros.Crear(ctx, dto.CrearCobroRequest{
		EspacioID: &id, Concepto: model.ConceptoRenta, Periodo: str("2024-05"),
	})
	require.NoError(t, err)

	_, err = svc.ResumenCuenta(ctx, uuid.MustParse(c.ID))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPagoParcial_ListarPendientes(t *testing.T) {
	a := nuevoEspacio("450", 5)
	b := nuevoEspacio("300", 10)
	svc, _, _ := buildPagoParcialSvc(a, b)
	ctx := context.Background()

	_, err := svc.RegistrarAbono(ctx, abono(a, "200", "2024-05-03"))
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, abono(b, "100", "2024-05-03"))
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, abono(b, "200", "2024-05-15"))
	require.NoError(t, err)

	pendientes, err := svc.ListarCuentasPendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, a.ID.String(), *pendientes[0].EspacioID)
	assert.True(t, pendientes[0].SaldoPendiente.Equal(dec("250")))
}

func TestPagoParcial_EliminarPadreConAbonos(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, cobros, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, abono(espacio, "50", "2024-05-04"))
	require.NoError(t, err)

	err = cobros.Eliminar(ctx, uuid.MustParse(primero.Abono.ID), primero.Abono.Codigo)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPagoParcial_NoSeEditanMontos(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, cobros, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)

	_, err = cobros.Actualizar(ctx, uuid.MustParse(primero.Abono.ID), dto.ActualizarCobroRequest{MontoPagado: decP("450")})
	assert.True(t, apierror.Is(err, apierror.KindValidation))

	resp, err := cobros.Actualizar(ctx, uuid.MustParse(primero.Abono.ID), dto.ActualizarCobroRequest{Referencia: str("REC-12")})
	require.NoError(t, err)
	assert.Equal(t, "REC-12", *resp.Referencia)
}

func TestPagoParcial_AbonosOrdenadosPorFechaDePago(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, _, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	primero, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-20"))
	require.NoError(t, err)
	atrasado, err := svc.RegistrarAbono(ctx, abono(espacio, "96", "2024-05-03"))
	require.NoError(t, err)

	pendientes, err := svc.ListarCuentasPendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	abonos := pendientes[0].Abonos
	require.Len(t, abonos, 2)
	assert.Equal(t, atrasado.Abono.ID, abonos[0].ID)
	assert.Equal(t, "2024-05-03", *abonos[0].FechaPago)
	assert.Equal(t, primero.Abono.ID, abonos[1].ID)
	assert.Equal(t, "2024-05-20", *abonos[1].FechaPago)
	assert.NotNil(t, abonos[1].DiasVencido, "la mora se anota en el padre")

	cuenta, err := svc.ResumenCuenta(ctx, uuid.MustParse(primero.Abono.ID))
	require.NoError(t, err)
	require.Len(t, cuenta.Abonos, 2)
	assert.Equal(t, atrasado.Abono.ID, cuenta.Abonos[0].ID)
}

func TestPagoParcial_FiltroPorEstadoDeCuenta(t *testing.T) {
	espacio := nuevoEspacio("450", 5)
	svc, cobros, _ := buildPagoParcialSvc(espacio)
	ctx := context.Background()

	_, err := svc.RegistrarAbono(ctx, abono(espacio, "200", "2024-05-03"))
	require.NoError(t, err)
	_, err = svc.RegistrarAbono(ctx, abono(espacio, "250", "2024-05-28"))
	require.NoError(t, err)
	id := espacio.ID.String()
	_, err = cobros.Crear(ctx, dto.CrearCobroRequest{
		EspacioID: &id, Concepto: model.ConceptoRenta, Periodo: str("2024-06"),
		MontoPagado: dec("450"), FechaPago: str("2024-06-05"), MetodoPago: str("efectivo"),
	})
	require.NoError(t, err)

	porFila, err := cobros.Listar(ctx, dto.CobroFilter{Estado: model.EstadoPagado, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, porFila.Total, "el padre conserva su estado propio")

	saldadas, err := cobros.Listar(ctx, dto.CobroFilter{EstadoCuenta: model.EstadoPagado, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, saldadas.Total)
	for _, c := range saldadas.Data {
		assert.NotEqual(t, string(model.VinculoIndependiente), c.Vinculo)
	}

	abiertas, err := cobros.Listar(ctx, dto.CobroFilter{EstadoCuenta: model.EstadoParcial, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, abiertas.Total)
}
