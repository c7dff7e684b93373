package dto

type LineInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	CustomerID string
	Lines      []LineInput
}
