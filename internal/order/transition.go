package order

import "github.com/fekuna/omnipos-order-service/internal/model"

type Action string

const (
	ActionApprove Action = "approve"
	ActionCancel  Action = "cancel"
)

// transitions is the complete order lifecycle. Completed and cancelled are terminal.
var transitions = map[model.OrderStatus]map[Action]model.OrderStatus{
	model.OrderStatusPending: {
		ActionApprove: model.OrderStatusCompleted,
		ActionCancel:  model.OrderStatusCancelled,
	},
}

// Transition returns the status an order in from moves to under action.
func Transition(from model.OrderStatus, action Action) (model.OrderStatus, bool) {
	to, ok := transitions[from][action]
	return to, ok
}
