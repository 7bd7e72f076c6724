package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsPublisher(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var rec struct {
			Event string                    `json:"event"`
			Data  usecase.OrderCreatedEvent `json:"data"`
		}
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if rec.Event != string(notifier.OrderCreated) || rec.Data.OrderID != "o-1" {
			return errors.New("unexpected record " + string(val))
		}
		return nil
	})
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewAnalyticsPublisher(sp, "bakery.order-events")
	err := p.Update(context.Background(), notifier.Event{Name: notifier.OrderCreated, Payload: usecase.OrderCreatedEvent{
		OrderID:     "o-1",
		TotalAmount: decimal.RequireFromString("3.50"),
	}})
	require.NoError(t, err)

	err = p.Update(context.Background(), notifier.Event{
		Name:    notifier.OrderStatusUpdated,
		Payload: usecase.OrderStatusUpdatedEvent{OrderID: "o-1", NewStatus: domain.StatusCompleted},
	})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	// unrelated payloads are not sent
	assert.NoError(t, p.Update(context.Background(), notifier.Event{Name: "X", Payload: 1}))
	require.NoError(t, p.Close())
}

type fakeUpdater struct {
	calls []usecase.OrderStatusChangedMsg
	err   error
}

func (f *fakeUpdater) UpdateOrderStatus(_ context.Context, id, status string) (*usecase.StatusChange, error) {
	f.calls = append(f.calls, usecase.OrderStatusChangedMsg{OrderID: id, Status: status})
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.StatusChange{ID: id, Status: domain.Status(status)}, nil
}

func TestOrderStatusChangedHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     usecase.OrderStatusChangedMsg
		wantErr bool
		calls   int
	}{
		{"applied", nil, usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "completed"}, false, 1},
		{"unknown order dropped", domain.ErrOrderNotFound, usecase.OrderStatusChangedMsg{OrderID: "x", Status: "completed"}, false, 1},
		{"bad status dropped", domain.Invalid("invalid status"), usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "baked"}, false, 1},
		{"transient retried", errors.New("db locked"), usecase.OrderStatusChangedMsg{OrderID: "o-1", Status: "completed"}, true, 1},
		{"missing id", nil, usecase.OrderStatusChangedMsg{Status: "completed"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &fakeUpdater{err: tt.err}
			err := NewOrderStatusChangedHandler(u).Handle(context.Background(), tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, u.calls, tt.calls)
		})
	}
}

type fakeSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32                        { return nil }
func (s *fakeSession) MemberID() string                                  { return "m" }
func (s *fakeSession) GenerationID() int32                               { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)           {}
func (s *fakeSession) Commit()                                           {}
func (s *fakeSession) ResetOffset(string, int32, int64, string)          {}
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) { s.marked = append(s.marked, msg.Offset) }
func (s *fakeSession) Context() context.Context                          { return s.ctx }

type fakeClaim struct{ msgs chan *sarama.ConsumerMessage }

func (c *fakeClaim) Topic() string                            { return "bakery.order-status" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 3 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func TestConsumeClaim_MarksHandledAndPoison(t *testing.T) {
	u := &fakeUpdater{}
	failures := 0
	h := &cgHandler{
		handle: func(ctx context.Context, ev usecase.OrderStatusChangedMsg) error {
			if ev.Status == "fail" {
				failures++
				return errors.New("retry later")
			}
			_, err := u.UpdateOrderStatus(ctx, ev.OrderID, ev.Status)
			return err
		},
		logger:      logging.New("kafka-test"),
		maxAttempts: 3,
		backoff:     time.Millisecond,
	}

	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 4)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 0, Value: []byte(`{"orderId":"o-1","status":"processing"}`)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 1, Value: []byte(`{oops`)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 2, Value: []byte(`{"orderId":"o-1","status":"fail"}`)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 3, Value: []byte(`{"orderId":"o-1","status":"completed"}`)}
	close(claim.msgs)

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claim)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 2")

	// offset 3 is left for redelivery together with 2
	assert.Equal(t, []int64{0, 1}, sess.marked)
	assert.Equal(t, 3, failures)
	require.Len(t, u.calls, 1)
	assert.Equal(t, "processing", u.calls[0].Status)
}

func TestConsumeClaim_RetrySucceeds(t *testing.T) {
	calls := 0
	h := &cgHandler{
		handle: func(context.Context, usecase.OrderStatusChangedMsg) error {
			calls++
			if calls < 2 {
				return errors.New("db busy")
			}
			return nil
		},
		logger:      logging.New("kafka-test"),
		maxAttempts: 3,
		backoff:     time.Millisecond,
	}
	claim := &fakeClaim{msgs: make(chan *sarama.ConsumerMessage, 1)}
	claim.msgs <- &sarama.ConsumerMessage{Offset: 7, Value: []byte(`{"orderId":"o-9","status":"completed"}`)}
	close(claim.msgs)

	sess := &fakeSession{ctx: context.Background()}
	require.NoError(t, h.ConsumeClaim(sess, claim))
	assert.Equal(t, []int64{7}, sess.marked)
	assert.Equal(t, 2, calls)
}
