package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending to paid", PaymentStatusPending, PaymentStatusPaid, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"pending to pending", PaymentStatusPending, PaymentStatusPending, false},
		{"paid is terminal", PaymentStatusPaid, PaymentStatusFailed, false},
		{"paid cannot repeat", PaymentStatusPaid, PaymentStatusPaid, false},
		{"failed is terminal", PaymentStatusFailed, PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{Status: tt.from}
			assert.Equal(t, tt.allowed, p.CanTransition(tt.to))
		})
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusPaid.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
}

func TestUserHelpers(t *testing.T) {
	u := &User{Email: "anna@example.com"}
	assert.Equal(t, "anna@example.com", u.FullName())
	assert.False(t, u.IsModerator())

	u.FirstName = "Anna"
	u.LastName = "Petrova"
	u.Groups = []Group{{Name: ModeratorGroupName}}
	assert.Equal(t, "Anna Petrova", u.FullName())
	assert.True(t, u.IsModerator())
	assert.False(t, u.InGroup("admins"))
}
