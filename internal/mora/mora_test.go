package mora

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDiasVencido(t *testing.T) {
	venc := fecha(2024, time.March, 5)

	assert.Equal(t, 0, DiasVencido(venc, fecha(2024, time.March, 1)), "antes del vencimiento")
	assert.Equal(t, 0, DiasVencido(venc, venc), "el mismo dia")
	assert.Equal(t, 10, DiasVencido(venc, fecha(2024, time.March, 15)))
	assert.Equal(t, 31, DiasVencido(venc, fecha(2024, time.April, 5)))
}

func TestDiasRetrasoConSigno(t *testing.T) {
	venc := fecha(2024, time.February, 10)

	assert.Equal(t, 3, DiasRetraso(fecha(2024, time.February, 13), venc))
	assert.Equal(t, -5, DiasRetraso(fecha(2024, time.February, 5), venc))
	assert.Equal(t, 0, DiasRetraso(venc, venc))
	// cruza el 29 de febrero
	assert.Equal(t, 20, DiasRetraso(fecha(2024, time.March, 1), fecha(2024, time.February, 10)))
}

func TestDiasIgnoraHoraYZona(t *testing.T) {
	gye := time.FixedZone("GYE", -5*3600)
	venc := time.Date(2024, time.May, 1, 23, 30, 0, 0, gye)
	hoy := time.Date(2024, time.May, 2, 0, 15, 0, 0, gye)

	assert.Equal(t, 1, DiasVencido(venc, hoy))
}

func TestCivil(t *testing.T) {
	tarde := time.Date(2024, time.May, 8, 23, 59, 0, 0, time.FixedZone("CST", -6*3600))
	assert.Equal(t, fecha(2024, time.May, 8), Civil(tarde), "conserva el dia local")
	assert.Equal(t, fecha(2024, time.May, 8), Civil(fecha(2024, time.May, 8)))
}
