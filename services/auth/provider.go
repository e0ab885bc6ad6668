package auth

import (
	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/services/codeforces"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/arulyan/cfauth/services/verification"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAuthService(cfg *config.Config, db *gorm.DB, verificationSvc *verification.Service, oracle codeforces.ProfileOracle, logger *logging.Service) *Service {
	return NewService(cfg, db, verificationSvc, oracle, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
)
