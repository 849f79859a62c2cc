package factory

import (
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/adapters/httpapi"
	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/ports"
)

// ServerFactory creates analysis servers
type ServerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger) *ServerFactory {
	return &ServerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAnalysisServer creates the HTTP analysis server
func (f *ServerFactory) CreateAnalysisServer(service *core.AnalyzerService) (ports.AnalysisServer, error) {
	listenAddr := f.cfg.GetString("server.listen_address")
	return httpapi.NewServer(service, listenAddr, f.logger), nil
}
