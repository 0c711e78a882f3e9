package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	portssvc "github.com/jakartamandarin/jm_finance/internal/core/ports/services"
	"github.com/jakartamandarin/jm_finance/internal/dto"
	"github.com/jakartamandarin/jm_finance/internal/events"
)

// DefaultLowBalanceThreshold is the remaining hours below which LowBalanceReached fires.
var DefaultLowBalanceThreshold = decimal.NewFromInt(2)

// creditService manages credit packages and the per-student hour ledger.
type creditService struct {
	BaseService
	repo      portsrepo.CreditRepositoryFacade
	publisher events.Publisher
	threshold decimal.Decimal
}

// CreditServiceOption is a functional option for configuring the credit service
type CreditServiceOption func(*creditService)

// WithCreditPublisher publishes LowBalanceReached events.
func WithCreditPublisher(p events.Publisher) CreditServiceOption {
	return func(s *creditService) {
		s.publisher = p
	}
}

// WithLowBalanceThreshold overrides DefaultLowBalanceThreshold.
func WithLowBalanceThreshold(hours decimal.Decimal) CreditServiceOption {
	return func(s *creditService) {
		s.threshold = hours
	}
}

// WithCreditBase sets metrics and clock.
func WithCreditBase(base BaseService) CreditServiceOption {
	return func(s *creditService) {
		s.BaseService = base
	}
}

// NewCreditService creates the credit service.
func NewCreditService(repo portsrepo.CreditRepositoryFacade, options ...CreditServiceOption) portssvc.CreditSvcFacade {
	svc := &creditService{
		repo:      repo,
		threshold: DefaultLowBalanceThreshold,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CreditSvcFacade = (*creditService)(nil)

func (s *creditService) CreatePackage(ctx context.Context, req dto.CreatePackageRequest, userID string) (*domain.CreditPackage, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: package name is required", apperrors.ErrValidation)
	case req.Price.IsNegative():
		return nil, fmt.Errorf("%w: package price must not be negative", apperrors.ErrValidation)
	case !req.CreditHours.IsPositive():
		return nil, fmt.Errorf("%w: package credit hours must be positive", apperrors.ErrValidation)
	case req.PackageType != domain.PackageSatuan && req.PackageType != domain.PackageBundle:
		return nil, fmt.Errorf("%w: invalid package type %q", apperrors.ErrValidation, req.PackageType)
	}

	pkg := domain.CreditPackage{
		PackageID:   uuid.NewString(),
		Name:        name,
		Price:       req.Price,
		CreditHours: req.CreditHours,
		PackageType: req.PackageType,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.repo.SavePackage(ctx, pkg); err != nil {
		s.LogError(ctx, err, "Failed to save credit package")
		return nil, err
	}
	s.LogInfo(ctx, "Credit package created", slog.String("package_id", pkg.PackageID), slog.String("type", string(pkg.PackageType)))
	return &pkg, nil
}

func (s *creditService) GetPackage(ctx context.Context, packageID string) (*domain.CreditPackage, error) {
	return s.repo.FindPackageByID(ctx, packageID)
}

func (s *creditService) ListPackages(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error) {
	return s.repo.ListPackages(ctx, activeOnly)
}

func (s *creditService) UpdatePackage(ctx context.Context, packageID string, req dto.UpdatePackageRequest, userID string) (*domain.CreditPackage, error) {
	pkg, err := s.repo.FindPackageByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: package name cannot be empty", apperrors.ErrValidation)
		}
		pkg.Name = name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: package price must not be negative", apperrors.ErrValidation)
		}
		pkg.Price = *req.Price
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}
	pkg.Touch(userID, s.Now())
	if err := s.repo.UpdatePackage(ctx, *pkg); err != nil {
		s.LogError(ctx, err, "Failed to update credit package", slog.String("package_id", packageID))
		return nil, err
	}
	return pkg, nil
}

func (s *creditService) OpenAccount(ctx context.Context, studentID string, initialHours decimal.Decimal, userID string) (*domain.StudentCredit, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, fmt.Errorf("%w: student ID is required", apperrors.ErrValidation)
	}
	if initialHours.IsNegative() {
		return nil, fmt.Errorf("%w: initial hours must not be negative", apperrors.ErrValidation)
	}
	credit := domain.StudentCredit{
		StudentID:        studentID,
		RemainingHours:   initialHours,
		TotalCreditHours: initialHours,
		UpdatedAt:        s.Now(),
	}
	if err := s.repo.CreateStudentCredit(ctx, credit); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to open credit account", slog.String("student_id", studentID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Credit account opened",
		slog.String("student_id", studentID),
		slog.String("initial_hours", initialHours.String()),
		slog.String("user_id", userID))
	return &credit, nil
}

func (s *creditService) Purchase(ctx context.Context, studentID string, req dto.PurchaseRequest, userID string) (*domain.CreditTransaction, error) {
	pkg, err := s.repo.FindPackageByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, fmt.Errorf("%w: package %s is inactive", apperrors.ErrValidation, pkg.PackageID)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	amount := req.Amount
	if amount.IsZero() {
		amount = pkg.Price
	}
	return s.apply(ctx, domain.CreditTransaction{
		StudentID: studentID,
		Type:      domain.CreditPurchase,
		Hours:     pkg.CreditHours,
		Amount:    amount,
		PackageID: pkg.PackageID,
		CreatedBy: userID,
	})
}

func (s *creditService) Deduct(ctx context.Context, studentID string, req dto.DeductRequest, userID string) (*domain.CreditTransaction, error) {
	if !req.Hours.IsPositive() {
		return nil, fmt.Errorf("%w: hours to deduct must be positive", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.ClassID) == "" {
		return nil, fmt.Errorf("%w: class ID is required", apperrors.ErrValidation)
	}
	return s.apply(ctx, domain.CreditTransaction{
		StudentID: studentID,
		Type:      domain.CreditDeduction,
		Hours:     req.Hours.Neg(),
		ClassID:   req.ClassID,
		CreatedBy: userID,
	})
}

func (s *creditService) Adjust(ctx context.Context, studentID string, req dto.AdjustRequest, userID string) (*domain.CreditTransaction, error) {
	if req.Hours.IsZero() {
		return nil, fmt.Errorf("%w: adjustment hours must not be zero", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: adjustment reason is required", apperrors.ErrValidation)
	}
	return s.apply(ctx, domain.CreditTransaction{
		StudentID: studentID,
		Type:      domain.CreditAdjustment,
		Hours:     req.Hours,
		Reason:    req.Reason,
		CreatedBy: userID,
	})
}

// apply commits one transaction and fires LowBalanceReached when the balance crosses
// from at-or-above the threshold to below it.
func (s *creditService) apply(ctx context.Context, txn domain.CreditTransaction) (*domain.CreditTransaction, error) {
	if strings.TrimSpace(txn.StudentID) == "" {
		return nil, fmt.Errorf("%w: student ID is required", apperrors.ErrValidation)
	}
	txn.TransactionID = uuid.NewString()
	txn.Date = s.Now()

	credit, err := s.repo.ApplyCreditTransaction(ctx, txn)
	if err != nil {
		s.Metrics.IncCreditTransaction(string(txn.Type), "rejected")
		if errors.Is(err, apperrors.ErrInsufficientCredit) {
			s.LogWarn(ctx, err, "Credit transaction refused",
				slog.String("student_id", txn.StudentID),
				slog.String("hours", txn.Hours.String()))
		} else {
			s.LogError(ctx, err, "Failed to apply credit transaction", slog.String("student_id", txn.StudentID))
		}
		return nil, err
	}
	s.Metrics.IncCreditTransaction(string(txn.Type), "applied")
	txn.BalanceAfter = credit.RemainingHours

	before := credit.RemainingHours.Sub(txn.Hours)
	if before.GreaterThanOrEqual(s.threshold) && credit.RemainingHours.LessThan(s.threshold) {
		s.raiseLowBalance(ctx, credit)
	}

	s.LogInfo(ctx, "Credit transaction applied",
		slog.String("student_id", txn.StudentID),
		slog.String("type", string(txn.Type)),
		slog.String("hours", txn.Hours.String()),
		slog.String("balance_after", txn.BalanceAfter.String()))
	return &txn, nil
}

func (s *creditService) raiseLowBalance(ctx context.Context, credit *domain.StudentCredit) {
	s.Metrics.IncLowBalance()
	if s.publisher == nil {
		return
	}
	now := s.Now()
	event := events.Event{
		Type: domain.EventLowBalanceReached,
		Payload: domain.LowBalanceReached{
			StudentID:      credit.StudentID,
			RemainingHours: credit.RemainingHours,
			Threshold:      s.threshold,
			LastPackageID:  credit.LastPackageID,
			OccurredAt:     now,
		},
		OccurredAt: now,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish low balance event", slog.String("student_id", credit.StudentID))
	}
}

func (s *creditService) GetBalance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	credit, err := s.repo.FindStudentCredit(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return credit.RemainingHours, nil
}

func (s *creditService) GetStudentCredit(ctx context.Context, studentID string) (*domain.StudentCredit, error) {
	credit, err := s.repo.FindStudentCredit(ctx, studentID)
	if err != nil {
		return nil, err
	}
	txns, err := s.repo.ListCreditTransactions(ctx, studentID)
	if err != nil {
		return nil, err
	}
	credit.Transactions = txns
	return credit, nil
}
