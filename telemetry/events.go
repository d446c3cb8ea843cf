// Package telemetry provides ecosystem health tracking, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/ecosys/traits"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventKill
	EventConception
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventKill:
		return "kill"
	case EventConception:
		return "conception"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int32
	AnimalID uint32
	Diet     traits.Diet

	// Optional fields depending on event type
	OtherID uint32  // parent for births, prey for kills, partner for conceptions
	Age     float64 // age at death
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int32, childID, parentID uint32, diet traits.Diet) Event {
	return Event{
		Type:     EventBirth,
		Tick:     tick,
		AnimalID: childID,
		Diet:     diet,
		OtherID:  parentID,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick int32, animalID uint32, diet traits.Diet, age float64) Event {
	return Event{
		Type:     EventDeath,
		Tick:     tick,
		AnimalID: animalID,
		Diet:     diet,
		Age:      age,
	}
}

// NewKillEvent creates a kill event.
func NewKillEvent(tick int32, predatorID, preyID uint32) Event {
	return Event{
		Type:     EventKill,
		Tick:     tick,
		AnimalID: predatorID,
		Diet:     traits.Carnivore,
		OtherID:  preyID,
	}
}

// NewConceptionEvent creates a conception event for the pregnant animal.
func NewConceptionEvent(tick int32, motherID, partnerID uint32, diet traits.Diet) Event {
	return Event{
		Type:     EventConception,
		Tick:     tick,
		AnimalID: motherID,
		Diet:     diet,
		OtherID:  partnerID,
	}
}
