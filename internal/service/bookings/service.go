package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
)

// Service сервис чтения и операционных переходов бронирований
type Service struct {
	bookingRepo BookingRepository
	outboxRepo  OutboxRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID в рамках тенанта
func (s *Service) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for tenant=%s", id, tenantID)

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// ListByCustomer получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) ListByCustomer(ctx context.Context, tenantID, customerID string, status *string) (*models.BookingListResponse, error) {
	s.logger.Info("ListByCustomer: fetching bookings for tenant=%s, customer=%s", tenantID, customerID)

	var domainStatus *domain.BookingStatus
	if status != nil {
		converted, ok := models.ToDomainBookingStatus(*status)
		if !ok {
			s.logger.Warn("ListByCustomer: invalid status=%s", *status)
			return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *status)
		}
		domainStatus = &converted
	}

	bookings, err := s.bookingRepo.ListByCustomer(ctx, tenantID, customerID, domainStatus)
	if err != nil {
		s.logger.Error("ListByCustomer: repository error for customer=%s: %v", customerID, err)
		return nil, fmt.Errorf("%w: ListByCustomer - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByCustomer: fetched %d bookings for customer=%s", len(bookings), customerID)
	return models.FromDomainBookingList(bookings), nil
}

// CheckIn отмечает прибытие клиента: confirmed -> checked_in.
// Любой другой исходный статус отклоняется без побочных эффектов.
func (s *Service) CheckIn(ctx context.Context, tenantID string, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("CheckIn: booking id=%s, tenant=%s", id, tenantID)

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, tenantID, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
		}

		// Идемпотентный повтор check-in'а
		if booking.Status == domain.StatusCheckedIn {
			return nil
		}

		if !booking.CanCheckIn() {
			return ErrInvalidStateTransition
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, tenantID, id, domain.StatusCheckedIn); err != nil {
			return fmt.Errorf("%w: CheckIn - failed to update status: %v", ErrInternal, err)
		}
		booking.Status = domain.StatusCheckedIn

		payload, err := json.Marshal(map[string]interface{}{
			"booking_id": booking.ID,
			"status":     booking.Status,
		})
		if err != nil {
			return fmt.Errorf("%w: CheckIn - failed to marshal event payload: %v", ErrInternal, err)
		}

		event := &domain.OutboxEvent{
			TenantID:      tenantID,
			EventType:     domain.EventBookingCheckedIn,
			AggregateType: "booking",
			AggregateID:   booking.ID,
			Payload:       payload,
		}
		if err := s.outboxRepo.Append(txCtx, event); err != nil {
			return fmt.Errorf("%w: CheckIn - failed to append outbox event: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrInvalidStateTransition) {
			s.logger.Warn("CheckIn: booking id=%s rejected: %v", id, err)
			return nil, err
		}
		s.logger.Error("CheckIn: transaction failed for booking id=%s: %v", id, err)
		return nil, err
	}

	s.logger.Info("CheckIn: booking id=%s checked in", id)
	return models.FromDomainBooking(booking), nil
}
