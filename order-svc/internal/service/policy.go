package service

// AmountPolicy decides what happens when a client supplied amount differs
// from the one recomputed on the server.
type AmountPolicy string

const (
	PolicyReject  AmountPolicy = "reject"
	PolicyCorrect AmountPolicy = "correct"
)
