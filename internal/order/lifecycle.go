package order

import (
	"context"
	"fmt"
)

// Mutations validate against canonical state, then forward to the remote feed.
// They never touch the canonical list directly: confirmed state arrives only
// through the next feed delivery, so a rejected write leaves nothing to undo.

// AddOrder submits a new order draft. Status is forced to pending and
// createdAt to submission time; the remote side assigns the id.
func (t *Tracker) AddOrder(ctx context.Context, draft Draft) error {
	now := t.now().UTC()

	o := Order{
		Items:         draft.Items,
		Status:        StatusPending,
		OrderType:     draft.OrderType,
		CreatedAt:     now,
		UpdatedAt:     now,
		Total:         draft.Total,
		CashierName:   draft.CashierName,
		CustomerName:  draft.CustomerName,
		TableNumber:   draft.TableNumber,
		EstimatedTime: draft.EstimatedTime,
	}
	if o.Items == nil {
		o.Items = map[string]int{}
	}
	if o.OrderType == "" {
		o.OrderType = TypeDineIn
	}
	if draft.Total < 0 {
		return &ValidationError{Msg: "order total must not be negative"}
	}

	if err := t.feed.Create(ctx, o); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateOrderStatus moves an order to newStatus when the state machine allows
// it, forwarding a {status, updatedAt} patch. Invalid moves fail locally and
// issue no remote call.
func (t *Tracker) UpdateOrderStatus(ctx context.Context, id, newStatus string) error {
	current, ok := t.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}

	if !ValidStatus(newStatus) || !CanTransition(current.Status, newStatus) {
		return &InvalidTransitionError{ID: id, From: current.Status, To: newStatus}
	}

	now := t.now().UTC()
	patch := Patch{Status: &newStatus, UpdatedAt: &now}
	if err := t.feed.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// CancelOrder cancels an order still in the queue, recording who cancelled it
// and why. Terminal orders fail with an invalid-transition error.
func (t *Tracker) CancelOrder(ctx context.Context, id, reason, cancelledBy string) error {
	current, ok := t.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}

	if !CanTransition(current.Status, StatusCancelled) {
		return &InvalidTransitionError{ID: id, From: current.Status, To: StatusCancelled}
	}

	now := t.now().UTC()
	status := StatusCancelled
	patch := Patch{
		Status:             &status,
		UpdatedAt:          &now,
		CancellationReason: &reason,
		CancelledBy:        &cancelledBy,
		CancelledAt:        &now,
	}
	if err := t.feed.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}
