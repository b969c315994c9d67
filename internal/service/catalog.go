package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

func (s *Service) CreateStore(ctx context.Context, req domain.StoreCreateRequest) (domain.Store, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Store{}, err
	}

	created, err := s.repo.CreateStore(ctx, domain.Store{Name: req.Name, OwnerID: principal.UserID})
	if err != nil {
		return domain.Store{}, err
	}
	s.log.WithFields(logrus.Fields{"store_id": created.ID, "owner_id": created.OwnerID}).Info("store created")
	return *created, nil
}

func (s *Service) RenameStore(ctx context.Context, storeID int64, req domain.StoreCreateRequest) (domain.Store, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Store{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return domain.Store{}, err
	}

	renamed, err := s.repo.RenameStore(ctx, storeID, req.Name)
	if err != nil {
		return domain.Store{}, err
	}
	return *renamed, nil
}

func (s *Service) DeleteStore(ctx context.Context, storeID int64) error {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return err
	}

	if err := s.repo.DeleteStore(ctx, storeID); err != nil {
		return err
	}
	s.committed(ctx, storeID)
	s.log.WithField("store_id", storeID).Info("store deleted")
	return nil
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListStoresByOwner(ctx, principal.UserID)
}

func (s *Service) CreateProduct(ctx context.Context, storeID int64, req domain.ProductCreateRequest) (domain.Product, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		StoreID: storeID,
		Name:    req.Name,
		Price:   req.Price.Round(2),
		Stock:   req.Stock,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context, storeID int64) ([]domain.Product, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, storeID)
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, p.StoreID); err != nil {
		if errors.Is(err, store.ErrForbidden) {
			return domain.Product{}, store.NotFound("product", productID)
		}
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateCustomer(ctx context.Context, storeID int64, req domain.PartyCreateRequest) (domain.Customer, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return domain.Customer{}, err
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{StoreID: storeID, Name: req.Name})
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) ListCustomers(ctx context.Context, storeID int64) ([]domain.Customer, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx, storeID)
}

func (s *Service) CreateEmployee(ctx context.Context, storeID int64, req domain.PartyCreateRequest) (domain.Employee, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return domain.Employee{}, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return domain.Employee{}, err
	}

	created, err := s.repo.CreateEmployee(ctx, domain.Employee{StoreID: storeID, Name: req.Name})
	if err != nil {
		return domain.Employee{}, err
	}
	return *created, nil
}

func (s *Service) ListEmployees(ctx context.Context, storeID int64) ([]domain.Employee, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListEmployees(ctx, storeID)
}
