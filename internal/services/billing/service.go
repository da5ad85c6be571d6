// Package billing turns the academy's tariff table and a student's
// membership state into concrete amounts due. The arithmetic itself lives
// in the pure fare package; this service loads the inputs, injects the
// clock and flags anything the fare core clamped so reconciliation can
// look at the tariff configuration.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"compas/internal/fare"
	"compas/internal/models"
	"compas/internal/repositories"
)

type Service interface {
	// QuoteEnrollment prices adding newCourses courses for a student,
	// evaluated at now. Any overdue balance penalty on the current
	// membership is included in the quote.
	QuoteEnrollment(ctx context.Context, studentID uint, newCourses int, now time.Time) (*Quote, error)

	// QuoteRenewal prices the student's next monthly payment, evaluated
	// at now, including the late penalty if the due date plus grace has
	// passed.
	QuoteRenewal(ctx context.Context, studentID uint, now time.Time) (*Quote, error)

	// Tariff table management.
	Tariffs(ctx context.Context) ([]models.TariffEntry, error)
	UpsertTariff(ctx context.Context, entry *models.TariffEntry) error
	DeleteTariff(ctx context.Context, id uint) error
}

type service struct {
	tariffRepo     repositories.TariffRepository
	membershipRepo repositories.MembershipRepository
	config         Config
	metrics        MetricsCollector
}

func NewService(
	tariffRepo repositories.TariffRepository,
	membershipRepo repositories.MembershipRepository,
	config Config,
	metrics MetricsCollector,
) Service {
	if tariffRepo == nil {
		panic("tariff repository is required")
	}
	if membershipRepo == nil {
		panic("membership repository is required")
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		tariffRepo:     tariffRepo,
		membershipRepo: membershipRepo,
		config:         config.withDefaults(),
		metrics:        metrics,
	}
}

func (s *service) QuoteEnrollment(ctx context.Context, studentID uint, newCourses int, now time.Time) (*Quote, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("quote_enrollment", time.Since(start)) }()

	if newCourses <= 0 {
		return nil, ErrNoCoursesSelected
	}

	table, err := s.loadTable(ctx)
	if err != nil {
		s.metrics.RecordError("quote_enrollment")
		return nil, err
	}

	prior := 0
	var dueDate *time.Time
	membership, err := s.membershipRepo.GetByStudentID(ctx, studentID)
	switch {
	case err == nil:
		prior = membership.CourseCount
		dueDate = membership.NextPaymentDue
	case errors.Is(err, repositories.ErrMembershipNotFound):
		// First enrollment, nothing committed yet.
	default:
		s.metrics.RecordError("quote_enrollment")
		return nil, err
	}

	var base int64
	var clamped bool
	if prior == 0 && s.config.InitialScheme != nil {
		base, err = fare.ComputeInitialFare(newCourses, *s.config.InitialScheme)
	} else {
		base, clamped, err = fare.ComputeIncrementalFare(prior, newCourses, table)
	}
	if err != nil {
		s.metrics.RecordError("quote_enrollment")
		return nil, fmt.Errorf("failed to compute enrollment fare: %w", err)
	}

	quote := &Quote{
		StudentID:    studentID,
		Kind:         QuoteKindEnrollment,
		PriorCourses: prior,
		NewCourses:   newCourses,
		Base:         base,
		Clamped:      clamped,
		DueDate:      dueDate,
	}

	// An overdue membership settles its penalty together with the new
	// enrollment charge.
	if dueDate != nil {
		late, err := fare.ComputeLateFee(*dueDate, now, s.config.LatePolicy, table)
		if err != nil {
			s.metrics.RecordError("quote_enrollment")
			return nil, fmt.Errorf("failed to compute late fee: %w", err)
		}
		quote.Penalty = late.Penalty
		quote.DaysLate = late.DaysLate
	}

	quote.Total = quote.Base + quote.Penalty
	s.finishQuote(quote)
	return quote, nil
}

func (s *service) QuoteRenewal(ctx context.Context, studentID uint, now time.Time) (*Quote, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("quote_renewal", time.Since(start)) }()

	membership, err := s.membershipRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrNoMembership
		}
		s.metrics.RecordError("quote_renewal")
		return nil, err
	}

	table, err := s.loadTable(ctx)
	if err != nil {
		s.metrics.RecordError("quote_renewal")
		return nil, err
	}

	base, err := fare.ResolveMonthlyFare(membership.CourseCount, table)
	if err != nil {
		s.metrics.RecordError("quote_renewal")
		return nil, fmt.Errorf("failed to resolve monthly fare: %w", err)
	}

	quote := &Quote{
		StudentID:    studentID,
		Kind:         QuoteKindRenewal,
		PriorCourses: membership.CourseCount,
		Base:         base,
		DueDate:      membership.NextPaymentDue,
	}

	if membership.NextPaymentDue != nil {
		late, err := fare.ComputeLateFee(*membership.NextPaymentDue, now, s.config.LatePolicy, table)
		if err != nil {
			s.metrics.RecordError("quote_renewal")
			return nil, fmt.Errorf("failed to compute late fee: %w", err)
		}
		quote.Penalty = late.Penalty
		quote.DaysLate = late.DaysLate
	}

	quote.Total = quote.Base + quote.Penalty
	s.finishQuote(quote)
	return quote, nil
}

func (s *service) Tariffs(ctx context.Context) ([]models.TariffEntry, error) {
	return s.tariffRepo.GetAll(ctx)
}

func (s *service) UpsertTariff(ctx context.Context, entry *models.TariffEntry) error {
	tier, err := entry.Tier()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTariff, err)
	}
	// A single-tier table exercises the same shape checks the full table
	// build would.
	if _, err := fare.NewTable([]fare.Tier{tier}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTariff, err)
	}
	return s.tariffRepo.Upsert(ctx, entry)
}

func (s *service) DeleteTariff(ctx context.Context, id uint) error {
	return s.tariffRepo.Delete(ctx, id)
}

func (s *service) loadTable(ctx context.Context) (fare.Table, error) {
	entries, err := s.tariffRepo.GetAll(ctx)
	if err != nil {
		return fare.Table{}, fmt.Errorf("failed to load tariff table: %w", err)
	}
	table, err := models.FareTable(entries)
	if err != nil {
		return fare.Table{}, fmt.Errorf("tariff table is malformed: %w", err)
	}
	return table, nil
}

func (s *service) finishQuote(q *Quote) {
	s.metrics.RecordQuote(q.Kind, q.Total)
	if q.Clamped {
		// A clamped quote means the tariff table charges less for more
		// courses somewhere. Not the student's problem, but someone
		// should look at the table.
		s.metrics.RecordClampedQuote(q.StudentID)
		log.Printf("billing: clamped negative fare to 0 for student %d (prior=%d new=%d), check tariff table",
			q.StudentID, q.PriorCourses, q.NewCourses)
	}
}
