package service

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/lock"
	"storeledger/backend/internal/store"
)

// lineTotal is the summed demand for one product across a request's lines.
type lineTotal struct {
	productID int64
	quantity  int
}

// mergeLines sums quantities per product and orders the result by product
// id, which is the order product rows are locked in.
func mergeLines(lines []domain.LineRequest) []lineTotal {
	index := make(map[int64]int, len(lines))
	out := make([]lineTotal, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			out[i].quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, lineTotal{productID: line.ProductID, quantity: line.Quantity})
	}
	slices.SortFunc(out, func(a, b lineTotal) int { return cmp.Compare(a.productID, b.productID) })
	return out
}

func reservedBy(lines []domain.SoldLine) map[int64]int {
	reserved := make(map[int64]int, len(lines))
	for _, line := range lines {
		reserved[line.ProductID] += line.Quantity
	}
	return reserved
}

func (s *Service) storeProduct(ctx context.Context, l store.Ledger, storeID int64, productID int64) (*domain.Product, error) {
	p, err := l.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.StoreID != storeID {
		return nil, store.NotFound("product", productID)
	}
	return p, nil
}

func (s *Service) checkParties(ctx context.Context, l store.Ledger, req domain.TransactionRequest) error {
	if req.Type != domain.TypeIncome {
		return nil
	}
	customer, err := l.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return err
	}
	if customer.StoreID != req.StoreID {
		return store.NotFound("customer", req.CustomerID)
	}
	employee, err := l.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	if employee.StoreID != req.StoreID {
		return store.NotFound("employee", req.EmployeeID)
	}
	return nil
}

// precheckStock verifies every demanded quantity fits what is on hand plus
// what the transaction itself already holds, and prices the sale. Demanded
// and held products are read in ascending id order so concurrent postings
// take their row locks in the same sequence.
func (s *Service) precheckStock(ctx context.Context, l store.Ledger, storeID int64, demand []lineTotal, held map[int64]int) (decimal.Decimal, error) {
	wanted := make(map[int64]int, len(demand))
	for _, d := range demand {
		wanted[d.productID] = d.quantity
	}
	ids := slices.Collect(maps.Keys(wanted))
	for productID := range held {
		if _, ok := wanted[productID]; !ok {
			ids = append(ids, productID)
		}
	}
	slices.Sort(ids)

	total := decimal.Zero
	for _, productID := range ids {
		p, err := s.storeProduct(ctx, l, storeID, productID)
		if err != nil {
			return decimal.Zero, err
		}
		qty, ok := wanted[productID]
		if !ok {
			continue
		}
		available := p.Stock + held[productID]
		if qty > available {
			return decimal.Zero, &store.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

func (s *Service) reserveAll(ctx context.Context, l store.Ledger, demand []lineTotal) error {
	for _, d := range demand {
		if _, err := s.inventory.Reserve(ctx, l, d.productID, d.quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) releaseAll(ctx context.Context, l store.Ledger, held map[int64]int) error {
	for _, productID := range slices.Sorted(maps.Keys(held)) {
		if _, err := s.inventory.Release(ctx, l, productID, held[productID]); err != nil {
			return err
		}
	}
	return nil
}

func buildTransaction(req domain.TransactionRequest, total decimal.Decimal) domain.Transaction {
	tx := domain.Transaction{
		StoreID:       req.StoreID,
		Type:          req.Type,
		Category:      req.Category,
		Status:        req.Status,
		TotalAmount:   total.Round(2),
		PaymentMethod: req.PaymentMethod,
		SaleDate:      req.SaleDate,
		Description:   req.Description,
	}
	if req.Type == domain.TypeIncome {
		tx.Income = &domain.IncomeParty{CustomerID: req.CustomerID, EmployeeID: req.EmployeeID}
	} else {
		tx.Expense = &domain.ExpenseDetail{Recipient: req.Recipient, Deductible: req.Deductible}
	}
	return tx
}

// PostTransaction validates and records a new transaction. For sales the
// total is derived from the lines and the stock is reserved in the same
// unit of work as the row itself.
func (s *Service) PostTransaction(ctx context.Context, req domain.TransactionRequest) (domain.TransactionWithLines, error) {
	var result domain.TransactionWithLines
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return result, err
	}
	if err := s.validateRequest(req); err != nil {
		s.metrics.ObservePosting("post", err)
		return result, err
	}
	req = normalize(req)

	err = s.repo.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		if _, err := authorizeStore(ctx, l, principal, req.StoreID); err != nil {
			return err
		}
		if err := s.checkParties(ctx, l, req); err != nil {
			return err
		}

		total := req.TotalAmount
		demand := mergeLines(req.Lines)
		if len(demand) > 0 {
			priced, err := s.precheckStock(ctx, l, req.StoreID, demand, nil)
			if err != nil {
				return err
			}
			total = priced
		}

		created, err := l.CreateTransaction(ctx, buildTransaction(req, total))
		if err != nil {
			return err
		}
		result.Transaction = *created
		result.Lines = []domain.SoldLine{}

		if len(demand) == 0 {
			return nil
		}
		if _, err := l.ReplaceSoldLines(ctx, created.ID, req.Lines); err != nil {
			return err
		}
		if err := s.reserveAll(ctx, l, demand); err != nil {
			return err
		}
		result.Lines, err = l.ListSoldLines(ctx, created.ID)
		return err
	})
	s.metrics.ObservePosting("post", err)
	if err != nil {
		return domain.TransactionWithLines{}, err
	}

	s.committed(ctx, req.StoreID)
	s.log.WithFields(logrus.Fields{
		"store_id":       result.StoreID,
		"transaction_id": result.ID,
		"type":           result.Type,
		"category":       result.Category,
		"total_amount":   result.TotalAmount.StringFixed(2),
	}).Info("transaction posted")
	return result, nil
}

// RepostTransaction replaces the mutable fields of an existing transaction.
// Stock held by the previous lines is released before the new lines are
// checked and reserved, so the net stock delta is new minus old.
func (s *Service) RepostTransaction(ctx context.Context, id int64, req domain.TransactionRequest) (domain.TransactionWithLines, error) {
	var result domain.TransactionWithLines
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return result, err
	}

	release, err := s.locker.Acquire(ctx, lock.TransactionKey(id))
	if err != nil {
		s.metrics.ObservePosting("repost", err)
		return result, err
	}
	defer release()

	err = s.repo.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		existing, err := l.FindTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeStore(ctx, l, principal, existing.StoreID); err != nil {
			return err
		}
		if err := s.validateRequest(req); err != nil {
			return err
		}
		req = normalize(req)
		if req.StoreID != existing.StoreID {
			return store.Invalid("store_id", "immutable", "a transaction cannot move to another store")
		}
		if err := s.checkParties(ctx, l, req); err != nil {
			return err
		}

		oldLines, err := l.ListSoldLines(ctx, id)
		if err != nil {
			return err
		}
		held := reservedBy(oldLines)

		total := req.TotalAmount
		demand := mergeLines(req.Lines)
		if len(demand) > 0 {
			priced, err := s.precheckStock(ctx, l, req.StoreID, demand, held)
			if err != nil {
				return err
			}
			total = priced
		}

		if err := s.releaseAll(ctx, l, held); err != nil {
			return err
		}

		next := buildTransaction(req, total)
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		updated, err := l.UpdateTransaction(ctx, next)
		if err != nil {
			return err
		}
		result.Transaction = *updated
		result.Lines = []domain.SoldLine{}

		if len(demand) == 0 {
			return l.DeleteSoldLines(ctx, id)
		}
		if _, err := l.ReplaceSoldLines(ctx, id, req.Lines); err != nil {
			return err
		}
		if err := s.reserveAll(ctx, l, demand); err != nil {
			return err
		}
		result.Lines, err = l.ListSoldLines(ctx, id)
		return err
	})
	s.metrics.ObservePosting("repost", err)
	if err != nil {
		return domain.TransactionWithLines{}, err
	}

	s.committed(ctx, result.StoreID)
	s.log.WithFields(logrus.Fields{
		"store_id":       result.StoreID,
		"transaction_id": result.ID,
		"total_amount":   result.TotalAmount.StringFixed(2),
	}).Info("transaction reposted")
	return result, nil
}

// DeleteTransaction removes a transaction and its lines and gives the units
// of a deleted sale back to stock.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}

	release, err := s.locker.Acquire(ctx, lock.TransactionKey(id))
	if err != nil {
		s.metrics.ObservePosting("delete", err)
		return err
	}
	defer release()

	var storeID int64
	err = s.repo.WithinTx(ctx, func(ctx context.Context, l store.Ledger) error {
		existing, err := l.FindTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeStore(ctx, l, principal, existing.StoreID); err != nil {
			return err
		}
		storeID = existing.StoreID

		lines, err := l.ListSoldLines(ctx, id)
		if err != nil {
			return err
		}
		if err := s.releaseAll(ctx, l, reservedBy(lines)); err != nil {
			return err
		}
		if err := l.DeleteSoldLines(ctx, id); err != nil {
			return err
		}
		return l.DeleteTransaction(ctx, id)
	})
	s.metrics.ObservePosting("delete", err)
	if err != nil {
		return err
	}

	s.committed(ctx, storeID)
	s.log.WithFields(logrus.Fields{"store_id": storeID, "transaction_id": id}).Info("transaction deleted")
	return nil
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (domain.TransactionWithLines, error) {
	var result domain.TransactionWithLines
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return result, err
	}

	tx, err := s.repo.FindTransactionByID(ctx, id)
	if err != nil {
		return result, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, tx.StoreID); err != nil {
		// Hide other tenants' ids.
		if errors.Is(err, store.ErrForbidden) {
			return result, store.NotFound("transaction", id)
		}
		return result, err
	}

	lines, err := s.repo.ListSoldLines(ctx, id)
	if err != nil {
		return result, err
	}
	return domain.TransactionWithLines{Transaction: *tx, Lines: lines}, nil
}

func (s *Service) ListTransactions(ctx context.Context, storeID int64) ([]domain.Transaction, error) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeStore(ctx, s.repo, principal, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactionsByStore(ctx, storeID)
}
