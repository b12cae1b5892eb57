package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/google/uuid"
)

// accountService implements the Account Registry.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	scale       int32
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountAmountScale sets the number of fractional digits allowed on opening balances.
func WithAccountAmountScale(scale int32) AccountServiceOption {
	return func(s *accountService) {
		s.scale = scale
	}
}

// WithAccountBase replaces the embedded BaseService, e.g. to inject a clock.
func WithAccountBase(base BaseService) AccountServiceOption {
	return func(s *accountService) {
		s.BaseService = base
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		scale:       accounting.DefaultScale,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}
	if err := accounting.CheckScale(req.OpeningBalance, s.scale); err != nil {
		return nil, err
	}

	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		if _, err := s.loadParent(ctx, tenantID, *req.ParentAccountID); err != nil {
			s.LogWarn(ctx, err, "Rejected parent account", slog.String("parent_account_id", *req.ParentAccountID))
			return nil, err
		}
	} else {
		req.ParentAccountID = nil
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        tenantID,
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		AccountType:     req.AccountType,
		NormalBalance:   req.AccountType.NormalBalance(),
		ParentAccountID: req.ParentAccountID,
		SortOrder:       req.SortOrder,
		OpeningBalance:  req.OpeningBalance,
		CurrentBalance:  req.OpeningBalance,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Duplicate account code", slog.String("code", code))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("tenant_id", tenantID))
	return &account, nil
}

// loadParent returns the parent account if it is usable by tenantID.
func (s *accountService) loadParent(ctx context.Context, tenantID, parentID string) (*domain.Account, error) {
	parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent %s does not exist", apperrors.ErrInvalidParent, parentID)
		}
		return nil, fmt.Errorf("failed to load parent account: %w", err)
	}
	if parent.TenantID != tenantID {
		return nil, fmt.Errorf("%w: parent %s belongs to another tenant", apperrors.ErrInvalidParent, parentID)
	}
	if !parent.IsActive {
		return nil, fmt.Errorf("%w: parent %s is inactive", apperrors.ErrInvalidParent, parentID)
	}
	return parent, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return account, nil
}

func (s *accountService) GetAccountTree(ctx context.Context, tenantID string, includeInactive bool) ([]*domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return BuildAccountForest(accounts), nil
}

// BuildAccountForest arranges accounts into trees. Input order (sort order, then code) is kept among
// siblings. Accounts whose parent is not in the input become roots.
func BuildAccountForest(accounts []domain.Account) []*domain.AccountNode {
	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for _, acc := range accounts {
		nodes[acc.AccountID] = &domain.AccountNode{Account: acc, Children: []*domain.AccountNode{}}
	}

	roots := make([]*domain.AccountNode, 0)
	for _, acc := range accounts {
		node := nodes[acc.AccountID]
		if acc.ParentAccountID != nil {
			if parent, ok := nodes[*acc.ParentAccountID]; ok {
				parent.Children = append(parent.Children, node)
				parent.ChildCount++
				continue
			}
		}
		roots = append(roots, node)
	}

	var count func(n *domain.AccountNode) int
	count = func(n *domain.AccountNode) int {
		total := 0
		for _, c := range n.Children {
			total += 1 + count(c)
		}
		n.DescendantCount = total
		return total
	}
	for _, r := range roots {
		count(r)
	}
	return roots
}

func (s *accountService) UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		account.Name = name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.SortOrder != nil {
		account.SortOrder = *req.SortOrder
	}
	switch {
	case req.MoveToRoot:
		account.ParentAccountID = nil
	case req.ParentAccountID != nil:
		if err := s.checkReparent(ctx, tenantID, accountID, *req.ParentAccountID); err != nil {
			s.LogWarn(ctx, err, "Rejected reparent",
				slog.String("account_id", accountID),
				slog.String("parent_account_id", *req.ParentAccountID))
			return nil, err
		}
		parentID := *req.ParentAccountID
		account.ParentAccountID = &parentID
	}

	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrInvalidParent) {
			s.LogWarn(ctx, err, "Rejected reparent", slog.String("account_id", accountID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// checkReparent walks up from the new parent and rejects the move if it reaches the account itself.
func (s *accountService) checkReparent(ctx context.Context, tenantID, accountID, newParentID string) error {
	if newParentID == accountID {
		return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrInvalidParent)
	}
	parent, err := s.loadParent(ctx, tenantID, newParentID)
	if err != nil {
		return err
	}

	visited := map[string]bool{newParentID: true}
	for cur := parent; cur.ParentAccountID != nil; {
		next := *cur.ParentAccountID
		if next == accountID {
			return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrInvalidParent, newParentID, accountID)
		}
		if visited[next] {
			return fmt.Errorf("%w: existing cycle above %s", apperrors.ErrInvalidParent, newParentID)
		}
		visited[next] = true
		cur, err = s.accountRepo.FindAccountByID(ctx, next)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("failed to walk account ancestors: %w", err)
		}
	}
	return nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	account, err := s.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		s.LogDebug(ctx, "Account already inactive", slog.String("account_id", accountID))
		return nil
	}
	if !account.CurrentBalance.IsZero() {
		return fmt.Errorf("%w: balance is %s", apperrors.ErrNonZeroBalance, account.CurrentBalance.String())
	}
	children, err := s.accountRepo.CountActiveChildren(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count child accounts", slog.String("account_id", accountID))
		return fmt.Errorf("failed to count child accounts: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("%w: %d active children", apperrors.ErrHasChildren, children)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, s.Now()); err != nil {
		if apperrors.CategoryOf(err) != apperrors.CategoryInternal {
			return err
		}
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
