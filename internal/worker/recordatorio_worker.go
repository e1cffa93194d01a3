package worker

// recordatorio_worker.go
// Processes arrears reminder jobs from QueueRecordatorio.
// Re-reads the charge (it may have been paid since the sweep), renders an
// arrears notice PDF and emails it to the tenant through the circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"admincs/internal/infra"
	"admincs/internal/model"
	"admincs/internal/mora"
	"admincs/internal/repository"
	"admincs/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxIntentos = 3

// errEnvio tags failures that happened talking to the relay.
var errEnvio = errors.New("send failed")

// RecordatorioPayload is the job envelope sent to QueueRecordatorio.
type RecordatorioPayload struct {
	CobroID   string `json:"cobro_id"`
	Codigo    string `json:"codigo"`
	ToEmail   string `json:"to_email"`
	Inquilino string `json:"inquilino"`
}

// Notificador sends a notice with an optional PDF attachment.
type Notificador interface {
	SendAviso(to, subject, body, pdfPath string) error
}

var _ Notificador = (*infra.Mailer)(nil)

// RecordatorioWorker processes reminder jobs from QueueRecordatorio.
type RecordatorioWorker struct {
	mailer      Notificador
	relay       *infra.BreakerSMTP
	cobroRepo   repository.CobroRepository
	empresa     string
	storagePath string
	ahora       func() time.Time
}

func NewRecordatorioWorker(mailer Notificador, relay *infra.BreakerSMTP, cobroRepo repository.CobroRepository, empresa, storagePath string) *RecordatorioWorker {
	return &RecordatorioWorker{
		mailer:      mailer,
		relay:       relay,
		cobroRepo:   cobroRepo,
		empresa:     empresa,
		storagePath: storagePath,
		ahora:       time.Now,
	}
}

// Process sends the reminder. Returns an error only when delivery failed and
// the job should be parked in the DLQ.
func (w *RecordatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RecordatorioPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("recordatorio_worker: %w: %v", errPayloadInvalido, err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("codigo", payload.Codigo).Msg("recordatorio_worker: empty to_email: skipping")
		return nil
	}
	id, err := uuid.Parse(payload.CobroID)
	if err != nil {
		return fmt.Errorf("recordatorio_worker: %w: cobro_id %q", errPayloadInvalido, payload.CobroID)
	}

	c, err := w.cobroRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("recordatorio_worker: load %s: %w", payload.Codigo, err)
	}
	saldo, err := w.saldo(ctx, c)
	if err != nil {
		return err
	}
	if !saldo.IsPositive() || c.FechaVencimiento == nil {
		log.Info().Str("codigo", c.Codigo).Msg("recordatorio_worker: charge settled since sweep: skipping")
		return nil
	}
	dias := mora.DiasVencido(*c.FechaVencimiento, w.ahora())

	pdfPath, err := infra.GuardarAvisoMoraPDF(c, dias, saldo.StringFixed(2), w.empresa, w.storagePath)
	if err != nil {
		// the email still goes out without the attachment
		log.Error().Err(err).Str("codigo", c.Codigo).Msg("recordatorio_worker: notice PDF failed")
		pdfPath = ""
	}

	subject := fmt.Sprintf("%s: saldo vencido %s", w.empresa, c.Codigo)
	body := fmt.Sprintf("Estimado/a %s:\n\nLe recordamos que el cobro %s tiene un saldo pendiente de $%s, vencido hace %d días.\n\n%s",
		payload.Inquilino, c.Codigo, saldo.StringFixed(2), dias, w.empresa)

	err = withRetry(ctx, maxIntentos, func(attempt int) error {
		err := w.relay.Enviar(func() error {
			return w.mailer.SendAviso(payload.ToEmail, subject, body, pdfPath)
		})
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Str("codigo", c.Codigo).
			Msg("recordatorio_worker: send attempt failed")
		// a suspended relay stays down for minutes and a rejected address never recovers
		if errors.Is(err, infra.ErrSMTPSuspendido) || !infra.FallaDelRelay(err) {
			return sinReintento{err}
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("recordatorio_worker: send %s: %w: %w", c.Codigo, errEnvio, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("codigo", c.Codigo).Int("dias_vencido", dias).
		Msg("recordatorio_worker: reminder sent")
	return nil
}

// saldo is what remains unpaid: the whole account for a partial parent,
// otherwise the charge's own shortfall.
func (w *RecordatorioWorker) saldo(ctx context.Context, c *model.Cobro) (decimal.Decimal, error) {
	if c.Vinculo != model.VinculoPadre {
		return c.MontoAcordado.Sub(c.MontoPagado), nil
	}
	hijos, err := w.cobroRepo.ListAbonos(ctx, nil, c.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return service.NuevaCuentaParcial(c, hijos).SaldoPendiente, nil
}
