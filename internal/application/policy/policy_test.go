package policy

import (
	"testing"

	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	customer := &user.User{ID: "u1", Role: user.RoleCustomer}
	admin := &user.User{ID: "a1", Role: user.RoleAdmin}

	tests := []struct {
		name  string
		user  *user.User
		op    Operation
		owner user.ID
		want  Decision
	}{
		{name: "customer creates restricted", user: customer, op: CreateOrder, want: Decision{Allowed: true, Restricted: true}},
		{name: "admin creates", user: admin, op: CreateOrder, want: Decision{Allowed: true}},
		{name: "customer reads own", user: customer, op: ReadOrder, owner: "u1", want: Decision{Allowed: true}},
		{name: "customer reads foreign", user: customer, op: ReadOrder, owner: "u2", want: Decision{Reason: ReasonNotOwner}},
		{name: "customer reads unowned", user: customer, op: ReadOrder, owner: "", want: Decision{Reason: ReasonNotOwner}},
		{name: "admin reads foreign", user: admin, op: ReadOrder, owner: "u2", want: Decision{Allowed: true}},
		{name: "customer lists restricted", user: customer, op: ListOrders, want: Decision{Allowed: true, Restricted: true}},
		{name: "admin lists", user: admin, op: ListOrders, want: Decision{Allowed: true}},
		{name: "customer updates own", user: customer, op: UpdateOrder, owner: "u1", want: Decision{Reason: ReasonAdminRequired}},
		{name: "admin updates", user: admin, op: UpdateOrder, owner: "u1", want: Decision{Allowed: true}},
		{name: "customer deletes own", user: customer, op: DeleteOrder, owner: "u1", want: Decision{Reason: ReasonAdminRequired}},
		{name: "admin deletes", user: admin, op: DeleteOrder, want: Decision{Allowed: true}},
		{name: "anonymous", user: nil, op: ListOrders, want: Decision{Reason: ReasonUnauthenticated}},
		{name: "unknown operation", user: admin, op: Operation(42), want: Decision{Reason: ReasonUnknownOperation}},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Authorize(tt.user, tt.op, tt.owner))
		})
	}
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "update", UpdateOrder.String())
	assert.Equal(t, "unknown", Operation(-1).String())
}
