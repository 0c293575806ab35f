package usecase

import (
	"car-rental/internal/data/repository"
	"car-rental/internal/gateway"
	"car-rental/pkg/cache"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Car     CarService
	Rental  RentalService
	Payment PaymentService
}

// Deps are the outside collaborators the services need besides the database.
type Deps struct {
	Gateway  gateway.Gateway
	Webhooks gateway.WebhookVerifier
	Cache    cache.Cache
	Signer   *utils.CallbackSigner
}

func NewService(repo *repository.Repository, deps Deps, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Car:     NewCarService(repo, deps.Cache, log),
		Rental:  NewRentalService(repo, deps.Gateway, deps.Webhooks, deps.Signer, config.Payment, log),
		Payment: NewPaymentService(repo, log),
	}
}
