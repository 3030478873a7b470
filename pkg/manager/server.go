package manager

import (
	"github.com/MikeDev101/camrelay/pkg/config"
	"github.com/MikeDev101/camrelay/pkg/metrics"
	"github.com/MikeDev101/camrelay/pkg/structs"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// New returns an empty relay with its connection registry and session table.
func New(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *structs.Server {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &structs.Server{
		Config:          cfg,
		Clients:         &structs.ClientStore{Clients: make(map[string]*structs.Client)},
		Sessions:        &structs.SessionStore{Sessions: make(map[string]*structs.Session)},
		PacketValidator: validator.New(validator.WithRequiredStructEnabled()),
		Metrics:         m,
		Log:             log.Named("relay"),
	}
}
