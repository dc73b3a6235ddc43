// Package policy decides what an authenticated user may do with orders.
package policy

import (
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
)

type Operation int

const (
	CreateOrder Operation = iota
	ReadOrder
	ListOrders
	UpdateOrder
	DeleteOrder
)

func (o Operation) String() string {
	switch o {
	case CreateOrder:
		return "create"
	case ReadOrder:
		return "read"
	case ListOrders:
		return "list"
	case UpdateOrder:
		return "update"
	case DeleteOrder:
		return "delete"
	}
	return "unknown"
}

// Deny reasons.
const (
	ReasonUnauthenticated  = "unauthenticated"
	ReasonAdminRequired    = "admin_required"
	ReasonNotOwner         = "not_owner"
	ReasonUnknownOperation = "unknown_operation"
)

// Decision is the outcome of Authorize. Restricted means the operation is
// allowed only in the scope of the user's own orders: created orders are
// pending and owned by the user, listings contain only the user's orders.
type Decision struct {
	Allowed    bool
	Restricted bool
	Reason     string
}

func allow() Decision { return Decision{Allowed: true} }
func restrict() Decision { return Decision{Allowed: true, Restricted: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize decides whether u may perform op on an order owned by ownerID.
// The owner only matters for ReadOrder.
func Authorize(u *user.User, op Operation, ownerID user.ID) Decision {
	if u == nil {
		return deny(ReasonUnauthenticated)
	}

	admin := u.IsAdmin()

	switch op {
	case CreateOrder, ListOrders:
		if admin {
			return allow()
		}
		return restrict()

	case ReadOrder:
		if admin || (ownerID != "" && ownerID == u.ID) {
			return allow()
		}
		return deny(ReasonNotOwner)

	case UpdateOrder, DeleteOrder:
		if admin {
			return allow()
		}
		return deny(ReasonAdminRequired)
	}

	return deny(ReasonUnknownOperation)
}
