package service

import (
	"fmt"
	"time"

	"admincs/internal/apierror"
	"admincs/internal/model"
	"admincs/internal/mora"
)

// pasoMeses is the number of months between two consecutive periods.
var pasoMeses = map[string]int{
	model.FrecuenciaMensual:    1,
	model.FrecuenciaBimestral:  2,
	model.FrecuenciaTrimestral: 3,
	model.FrecuenciaSemestral:  6,
	model.FrecuenciaAnual:      12,
}

// PasoMeses returns the month step of a frequency.
func PasoMeses(frecuencia string) (int, error) {
	paso, ok := pasoMeses[frecuencia]
	if !ok {
		return 0, apierror.ValidationField("frecuencia", fmt.Sprintf("frecuencia desconocida: %q", frecuencia))
	}
	return paso, nil
}

// FechaEnMes returns the given day of the month, capped to its last day.
func FechaEnMes(anio int, mes time.Month, dia int) time.Time {
	ultimo := time.Date(anio, mes+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dia > ultimo {
		dia = ultimo
	}
	if dia < 1 {
		dia = 1
	}
	return time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC)
}

// ParsePeriodo parses a YYYY-MM period into the first day of that month.
func ParsePeriodo(s string) (time.Time, error) {
	t, err := time.Parse(layoutPeriodo, s)
	if err != nil {
		return time.Time{}, apierror.ValidationField("periodo", "periodo inválido, se espera AAAA-MM")
	}
	return t, nil
}

func FormatPeriodo(t time.Time) string { return t.Format(layoutPeriodo) }

func inicioMes(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func mesesEntre(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// diaObjetivo is the template's due day, or the day of fecha_inicio when unset.
func diaObjetivo(p *model.PlantillaObligacion) int {
	if p.DiaVencimiento != nil {
		return *p.DiaVencimiento
	}
	return p.FechaInicio.Day()
}

// SiguienteVencimiento adds the frequency step to the month of desde and
// places the result on the template's due day, capped to the month length.
func SiguienteVencimiento(p *model.PlantillaObligacion, desde time.Time) (time.Time, error) {
	paso, err := PasoMeses(p.Frecuencia)
	if err != nil {
		return time.Time{}, err
	}
	destino := inicioMes(desde).AddDate(0, paso, 0)
	return FechaEnMes(destino.Year(), destino.Month(), diaObjetivo(p)), nil
}

// ProximoVencimiento is the first due date of p after hoy. ok is false when
// the template is inactive or its fecha_fin has passed.
func ProximoVencimiento(p *model.PlantillaObligacion, hoy time.Time) (vence time.Time, ok bool, err error) {
	if !p.Activo {
		return time.Time{}, false, nil
	}
	vencidos, err := PeriodosVencidos(p, hoy)
	if err != nil {
		return time.Time{}, false, err
	}
	vence = VencimientoPeriodo(p, p.FechaInicio)
	if n := len(vencidos); n > 0 {
		if vence, err = SiguienteVencimiento(p, vencidos[n-1]); err != nil {
			return time.Time{}, false, err
		}
	}
	if p.FechaFin != nil && inicioMes(vence).After(inicioMes(*p.FechaFin)) {
		return time.Time{}, false, nil
	}
	return vence, true, nil
}

// VencimientoPeriodo is the due date of the template inside the given period.
func VencimientoPeriodo(p *model.PlantillaObligacion, periodo time.Time) time.Time {
	return FechaEnMes(periodo.Year(), periodo.Month(), diaObjetivo(p))
}

// CorrespondePeriodo reports whether periodo is one of the template's periods:
// on the frequency grid anchored at fecha_inicio and not after fecha_fin.
func CorrespondePeriodo(p *model.PlantillaObligacion, periodo time.Time) (bool, error) {
	paso, err := PasoMeses(p.Frecuencia)
	if err != nil {
		return false, err
	}
	n := mesesEntre(inicioMes(p.FechaInicio), inicioMes(periodo))
	if n < 0 || n%paso != 0 {
		return false, nil
	}
	if p.FechaFin != nil && inicioMes(periodo).After(inicioMes(*p.FechaFin)) {
		return false, nil
	}
	return true, nil
}

// PeriodosVencidos lists every period of the template whose due date is on or
// before hoy, oldest first.
func PeriodosVencidos(p *model.PlantillaObligacion, hoy time.Time) ([]time.Time, error) {
	paso, err := PasoMeses(p.Frecuencia)
	if err != nil {
		return nil, err
	}
	var periodos []time.Time
	limite := mora.Civil(hoy)
	for periodo := inicioMes(p.FechaInicio); ; periodo = periodo.AddDate(0, paso, 0) {
		if p.FechaFin != nil && periodo.After(inicioMes(*p.FechaFin)) {
			break
		}
		if VencimientoPeriodo(p, periodo).After(limite) {
			break
		}
		periodos = append(periodos, periodo)
	}
	return periodos, nil
}
