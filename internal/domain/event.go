package domain

// PoolEvent names a change to a pool that listeners are told about.
type PoolEvent string

const (
	EventPoolCreated      PoolEvent = "pool_created"
	EventPoolDeleted      PoolEvent = "pool_deleted"
	EventParticipantAdded PoolEvent = "participant_added"
	EventParticipantPaid  PoolEvent = "participant_paid"
	EventPoolAssigned     PoolEvent = "pool_assigned"
	EventPoolSettled      PoolEvent = "pool_settled"
)
