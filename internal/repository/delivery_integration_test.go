//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/ports/deliverytx"
	"cafe-delivery-service/internal/repository"
)

type DeliveryRepositorySuite struct {
	suite.Suite
	repo *repository.DeliveryRepo
	base time.Time
}

func TestDeliveryRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeliveryRepositorySuite))
}

func (s *DeliveryRepositorySuite) SetupSuite() {
	s.repo = repository.NewDeliveryRepo(tcPool)
	s.base = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
}

func (s *DeliveryRepositorySuite) SetupTest() {
	_, err := tcPool.Exec(context.Background(), `TRUNCATE deliveries, employees RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *DeliveryRepositorySuite) createEmployee(name string) int64 {
	var id int64
	err := tcPool.QueryRow(context.Background(),
		`INSERT INTO employees (name, phone) VALUES ($1, $2) RETURNING id`, name, "+10000000000").Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *DeliveryRepositorySuite) create(orderID string, createdAt time.Time) domain.Delivery {
	d, err := domain.NewDelivery{OrderID: orderID, DeliveryAddress: "1 Main St", DeliveryFee: 200}.Build(createdAt)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(context.Background(), &d, domain.OrderSummary{CustomerName: "Ann", Total: 1800}))
	s.Require().NotZero(d.ID)
	return d
}

func (s *DeliveryRepositorySuite) TestCreate_DuplicateOrderIsConflict() {
	s.create("o-1", s.base)

	d, err := domain.NewDelivery{OrderID: "o-1", DeliveryAddress: "x"}.Build(s.base)
	s.Require().NoError(err)
	err = s.repo.Create(context.Background(), &d, domain.OrderSummary{})
	s.Require().ErrorIs(err, apperr.ErrConflict)
}

func (s *DeliveryRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	emp := s.createEmployee("Dave")

	s.create("o-1", s.base)
	d2 := s.create("o-2", s.base.Add(time.Hour))
	s.create("o-3", s.base.Add(2*time.Hour))

	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetForUpdate(ctx, d2.ID)
		if err != nil {
			return err
		}
		d.EmployeeID = &emp
		d.Status = domain.StatusPreparing
		return tx.Update(ctx, d)
	})
	s.Require().NoError(err)

	all, err := s.repo.List(ctx, domain.ListQuery{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("o-1", all[0].OrderID)

	st := domain.StatusPreparing
	got, err := s.repo.List(ctx, domain.ListQuery{Status: &st})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(d2.ID, got[0].ID)

	got, err = s.repo.List(ctx, domain.ListQuery{EmployeeID: &emp})
	s.Require().NoError(err)
	s.Require().Len(got, 1)

	from := s.base.Add(30 * time.Minute)
	to := s.base.Add(90 * time.Minute)
	got, err = s.repo.List(ctx, domain.ListQuery{From: &from, To: &to})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("o-2", got[0].OrderID)
}

func (s *DeliveryRepositorySuite) TestGetDetails() {
	ctx := context.Background()
	emp := s.createEmployee("Dave")
	d := s.create("o-9", s.base)

	det, err := s.repo.GetDetails(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal("o-9", det.Order.ID)
	s.Equal("Ann", det.Order.CustomerName)
	s.Equal(int64(1800), det.Order.Total)
	s.Nil(det.Employee)

	s.Require().NoError(s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		cur.EmployeeID = &emp
		return tx.Update(ctx, cur)
	}))

	det, err = s.repo.GetDetails(ctx, d.ID)
	s.Require().NoError(err)
	s.Require().NotNil(det.Employee)
	s.Equal("Dave", det.Employee.Name)

	_, err = s.repo.GetDetails(ctx, 999)
	s.Require().ErrorIs(err, apperr.ErrNotFound)
}

func (s *DeliveryRepositorySuite) TestWithTx_RollsBackOnError() {
	ctx := context.Background()
	d := s.create("o-5", s.base)
	boom := errors.New("boom")

	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		cur.Status = domain.StatusCancelled
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, d.ID, domain.StatusPending, domain.StatusCancelled, s.base); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	det, err := s.repo.GetDetails(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, det.Status)

	var n int
	s.Require().NoError(tcPool.QueryRow(ctx, `SELECT COUNT(*) FROM delivery_status_history`).Scan(&n))
	s.Zero(n)
}

func (s *DeliveryRepositorySuite) TestAuditAndOutbox() {
	ctx := context.Background()
	d := s.create("o-6", s.base)
	at := s.base.Add(time.Minute)

	s.Require().NoError(s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		if err := tx.InsertTimeChange(ctx, domain.TimeChange{
			DeliveryID: d.ID, Field: domain.TimeEstimated, NewTime: at.Add(time.Hour), Reason: "rain", ChangedAt: at,
		}); err != nil {
			return err
		}
		return tx.InsertIntent(ctx, domain.NotificationIntent{
			ID: "4f1c1c1e-1b7a-4c57-9a55-0f8f0b0e6a11", DeliveryID: d.ID, Message: "late", Channel: domain.ChannelSMS,
		}, at)
	}))

	pending, err := s.repo.PendingIntents(ctx, at, 10)
	s.Require().NoError(err)
	s.Empty(pending, "intents stored at the cutoff are still in flight")

	pending, err = s.repo.PendingIntents(ctx, at.Add(time.Second), 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(domain.ChannelSMS, pending[0].Channel)
	s.Equal(d.ID, pending[0].DeliveryID)

	s.Require().NoError(s.repo.MarkIntentPublished(ctx, "4f1c1c1e-1b7a-4c57-9a55-0f8f0b0e6a11", at))

	pending, err = s.repo.PendingIntents(ctx, at.Add(time.Second), 10)
	s.Require().NoError(err)
	s.Empty(pending)

	var published *time.Time
	s.Require().NoError(tcPool.QueryRow(ctx, `SELECT published_at FROM notification_outbox`).Scan(&published))
	s.Require().NotNil(published)
}

func (s *DeliveryRepositorySuite) TestUpdate_UnknownEmployeeIsInvalid() {
	ctx := context.Background()
	d := s.create("o-7", s.base)
	ghost := int64(404)

	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		cur.EmployeeID = &ghost
		return tx.Update(ctx, cur)
	})
	s.Require().ErrorIs(err, apperr.ErrInvalid)
}

func (s *DeliveryRepositorySuite) TestCountOverdue() {
	ctx := context.Background()
	d := s.create("o-8", s.base)
	s.create("o-10", s.base)

	s.Require().NoError(s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		eta := s.base.Add(10 * time.Minute)
		cur.EstimatedDeliveryTime = &eta
		return tx.Update(ctx, cur)
	}))

	n, err := s.repo.CountOverdue(ctx, s.base.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.repo.CountOverdue(ctx, s.base)
	s.Require().NoError(err)
	s.Zero(n)
}
