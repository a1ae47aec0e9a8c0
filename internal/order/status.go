package order

type Status string

// Orders are created pending and never transition in this service;
// downstream consumers of order.created own the rest of the lifecycle.
const StatusPending Status = "pending"
