package infra

import (
	"errors"
	"net/textproto"
	"sync"
	"time"

	"admincs/internal/config"

	"github.com/rs/zerolog/log"
)

// ── SMTP breaker ──────────────────────────────────────────────────────────────
// Sits in front of the relay used for arrears reminders. After a run of
// consecutive relay failures it suspends sending for a while, so an outage
// fails the queued reminders fast instead of holding every worker in dial
// timeouts. When the pause is over a single send goes through as a test; its
// outcome resumes or re-suspends the relay.
//
// A permanent rejection of one recipient (55x) says nothing about the relay and
// does not count as a failure.

// EstadoSMTP is what /health reports under "smtp".
type EstadoSMTP int

const (
	SMTPDisponible EstadoSMTP = iota
	SMTPSuspendido
	SMTPProbando
)

func (e EstadoSMTP) String() string {
	switch e {
	case SMTPDisponible:
		return "disponible"
	case SMTPSuspendido:
		return "suspendido"
	case SMTPProbando:
		return "probando"
	default:
		return "desconocido"
	}
}

// ErrSMTPSuspendido is returned without contacting the relay while it is suspended.
var ErrSMTPSuspendido = errors.New("smtp: relay suspended after repeated failures")

const (
	defaultFallosSMTP = 3
	defaultPausaSMTP  = 2 * time.Minute
)

// BreakerSMTPConfig tunes the breaker; zero values take the defaults.
type BreakerSMTPConfig struct {
	Fallos int           // consecutive relay failures before suspending
	Pausa  time.Duration // how long to stay suspended before a test send
}

// BreakerSMTPConfigDesde reads SMTP_CB_FALLOS and SMTP_CB_PAUSA.
func BreakerSMTPConfigDesde(cfg *config.Config) BreakerSMTPConfig {
	return BreakerSMTPConfig{Fallos: cfg.SMTPCBFallos, Pausa: cfg.SMTPCBPausa}
}

type BreakerSMTP struct {
	mu        sync.Mutex
	estado    EstadoSMTP
	fallos    int
	hasta     time.Time
	enPrueba  bool
	maxFallos int
	pausa     time.Duration
	ahora     func() time.Time
}

func NewBreakerSMTP(cfg BreakerSMTPConfig) *BreakerSMTP {
	if cfg.Fallos <= 0 {
		cfg.Fallos = defaultFallosSMTP
	}
	if cfg.Pausa <= 0 {
		cfg.Pausa = defaultPausaSMTP
	}
	return &BreakerSMTP{maxFallos: cfg.Fallos, pausa: cfg.Pausa, ahora: time.Now}
}

func (b *BreakerSMTP) Estado() EstadoSMTP {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vencerPausa()
	return b.estado
}

// vencerPausa moves a suspended relay to probando once the pause is over.
// Caller holds mu.
func (b *BreakerSMTP) vencerPausa() {
	if b.estado == SMTPSuspendido && !b.ahora().Before(b.hasta) {
		b.estado = SMTPProbando
		b.enPrueba = false
	}
}

// Enviar runs send unless the relay is suspended. While probando only one
// send is in flight; concurrent callers get ErrSMTPSuspendido.
func (b *BreakerSMTP) Enviar(send func() error) error {
	b.mu.Lock()
	b.vencerPausa()
	switch {
	case b.estado == SMTPSuspendido:
		b.mu.Unlock()
		return ErrSMTPSuspendido
	case b.estado == SMTPProbando && b.enPrueba:
		b.mu.Unlock()
		return ErrSMTPSuspendido
	case b.estado == SMTPProbando:
		b.enPrueba = true
	}
	b.mu.Unlock()

	err := send()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && FallaDelRelay(err) {
		b.registrarFallo()
	} else {
		b.registrarExito()
	}
	return err
}

func (b *BreakerSMTP) registrarFallo() {
	b.fallos++
	if b.estado == SMTPProbando || b.fallos >= b.maxFallos {
		b.estado = SMTPSuspendido
		b.hasta = b.ahora().Add(b.pausa)
		b.enPrueba = false
		log.Warn().Int("fallos", b.fallos).Dur("pausa", b.pausa).Msg("smtp: relay suspended")
	}
}

func (b *BreakerSMTP) registrarExito() {
	if b.estado == SMTPProbando {
		log.Info().Msg("smtp: relay available again")
	}
	b.estado = SMTPDisponible
	b.fallos = 0
	b.enPrueba = false
}

// FallaDelRelay reports whether err points at the relay rather than at a
// single recipient. Mailbox rejections (550-553) are the recipient's problem.
func FallaDelRelay(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 550 && tpErr.Code <= 553 {
		return false
	}
	return true
}
