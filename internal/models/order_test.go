package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := [][2]OrderStatus{
		{OrderPending, OrderAccepted},
		{OrderPending, OrderClosed},
		{OrderAccepted, OrderCompleted},
		{OrderAccepted, OrderRejected},
		{OrderClosed, OrderCompleted},
		{OrderClosed, OrderRejected},
	}

	for _, edge := range allowed {
		if !CanTransition(edge[0], edge[1]) {
			t.Errorf("Expected transition %s -> %s to be allowed", edge[0], edge[1])
		}
	}
}

func TestCanTransitionForbidden(t *testing.T) {
	statuses := []OrderStatus{OrderPending, OrderAccepted, OrderClosed, OrderCompleted, OrderRejected}

	allowed := map[[2]OrderStatus]bool{
		{OrderPending, OrderAccepted}:   true,
		{OrderPending, OrderClosed}:     true,
		{OrderAccepted, OrderCompleted}: true,
		{OrderAccepted, OrderRejected}:  true,
		{OrderClosed, OrderCompleted}:   true,
		{OrderClosed, OrderRejected}:    true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			if allowed[[2]OrderStatus{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("Expected transition %s -> %s to be forbidden", from, to)
			}
		}
	}
}

func TestNoBackwardTransitions(t *testing.T) {
	// Once resolved, an order can never become Pending again, and
	// reviewer verdicts are final.
	terminal := []OrderStatus{OrderAccepted, OrderClosed, OrderCompleted, OrderRejected}
	for _, from := range terminal {
		if CanTransition(from, OrderPending) {
			t.Errorf("Expected transition %s -> %s to be forbidden", from, OrderPending)
		}
	}
	for _, from := range []OrderStatus{OrderCompleted, OrderRejected} {
		for _, to := range []OrderStatus{OrderPending, OrderAccepted, OrderClosed, OrderCompleted, OrderRejected} {
			if CanTransition(from, to) {
				t.Errorf("Expected no transitions out of %s, got %s -> %s", from, from, to)
			}
		}
	}
}

func TestReviewableStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderAccepted, OrderCompleted, OrderRejected} {
		if !ReviewableStatus(s) {
			t.Errorf("Expected status %s to be reviewable", s)
		}
	}
	// Pending and Closed are lifecycle states, not verdicts.
	for _, s := range []OrderStatus{OrderPending, OrderClosed, "", "Cancelled"} {
		if ReviewableStatus(s) {
			t.Errorf("Expected status %q to not be reviewable", s)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderAccepted, OrderClosed, OrderCompleted, OrderRejected} {
		if !ValidOrderStatus(s) {
			t.Errorf("Expected status %s to be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "pending", "Cancelled"} {
		if ValidOrderStatus(s) {
			t.Errorf("Expected status %q to be invalid", s)
		}
	}
}

func TestValidOrderKind(t *testing.T) {
	for _, k := range OrderKinds() {
		if !ValidOrderKind(k) {
			t.Errorf("Expected kind %s to be valid", k)
		}
	}
	for _, k := range []OrderKind{"", "product", "Service"} {
		if ValidOrderKind(k) {
			t.Errorf("Expected kind %q to be invalid", k)
		}
	}
}
