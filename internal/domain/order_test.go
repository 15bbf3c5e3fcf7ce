package domain

import "testing"

func TestOrder_Remaining(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		filled   int64
		want     int64
	}{
		{"unfilled", 10, 0, 10},
		{"partial", 10, 4, 6},
		{"filled", 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Quantity: tt.quantity, FilledQuantity: tt.filled}
			if got := o.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrder_IsFilled(t *testing.T) {
	o := &Order{Quantity: 5, FilledQuantity: 4}
	if o.IsFilled() {
		t.Error("expected not filled at 4/5")
	}
	o.FilledQuantity = 5
	if !o.IsFilled() {
		t.Error("expected filled at 5/5")
	}
}

func TestOrder_IsOpen(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusPartiallyFilled, true},
		{OrderStatusFilled, false},
		{OrderStatusCancelled, false},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.status}
		if got := o.IsOpen(); got != tt.want {
			t.Errorf("IsOpen() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"valid buy", Order{Side: SideBuy, Price: 10000, Quantity: 5}, false},
		{"valid sell", Order{Side: SideSell, Price: 1, Quantity: 1}, false},
		{"zero price", Order{Side: SideBuy, Price: 0, Quantity: 5}, true},
		{"negative price", Order{Side: SideBuy, Price: -100, Quantity: 5}, true},
		{"zero quantity", Order{Side: SideSell, Price: 100, Quantity: 0}, true},
		{"negative quantity", Order{Side: SideSell, Price: 100, Quantity: -1}, true},
		{"bad side", Order{Side: Side("hold"), Price: 100, Quantity: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecutedTrade_Notional(t *testing.T) {
	tr := ExecutedTrade{Price: 10050, Quantity: 3}
	if got := tr.Notional(); got != 30150 {
		t.Errorf("Notional() = %d, want 30150", got)
	}
}
