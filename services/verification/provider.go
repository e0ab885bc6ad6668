package verification

import (
	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/arulyan/cfauth/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideVerificationService(cfg *config.Config, db *gorm.DB, mailSvc *mail.Service, logger *logging.Service) *Service {
	return NewService(cfg, db, mailSvc, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideVerificationService),
)
