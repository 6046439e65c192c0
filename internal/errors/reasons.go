package errors

// Reason identifies a domain failure independently of its transport code
type Reason string

// Domain reasons
const (
	ReasonRoomNotFound             Reason = "ROOM_NOT_FOUND"
	ReasonUserNotInRoom            Reason = "USER_NOT_IN_ROOM"
	ReasonInvalidCoordinates       Reason = "INVALID_COORDINATES"
	ReasonStackGap                 Reason = "STACK_GAP"
	ReasonCombatNotActive          Reason = "COMBAT_NOT_ACTIVE"
	ReasonNotYourTurn              Reason = "NOT_YOUR_TURN"
	ReasonInsufficientActionPoints Reason = "INSUFFICIENT_ACTION_POINTS"
	ReasonUnknownActor             Reason = "UNKNOWN_ACTOR"
	ReasonRoomCreationFailed       Reason = "ROOM_CREATION_FAILED"
	ReasonBadRequest               Reason = "BAD_REQUEST"
)

// String returns the string representation of the reason
func (r Reason) String() string {
	return string(r)
}

// GetReason extracts the domain reason from an error
func GetReason(err error) Reason {
	if err == nil {
		return ""
	}

	var customErr *Error
	if As(err, &customErr) {
		return customErr.Reason
	}

	return ""
}

// HasReason checks if an error carries the given domain reason
func HasReason(err error, reason Reason) bool {
	return GetReason(err) == reason
}

// RoomNotFound creates the error returned when a room id does not resolve
func RoomNotFound(roomID string) *Error {
	return NotFound("Room not found").
		WithReason(ReasonRoomNotFound).
		WithMeta("room_id", roomID)
}

// UserNotInRoom creates the error returned when a connection acts on a room it has not joined
func UserNotInRoom(roomID, connID string) *Error {
	return PermissionDenied("User not in room").
		WithReason(ReasonUserNotInRoom).
		WithMeta("room_id", roomID).
		WithMeta("connection_id", connID)
}

// InvalidCoordinates creates a coordinate validation error
func InvalidCoordinates(format string, args ...interface{}) *Error {
	return InvalidArgumentf(format, args...).WithReason(ReasonInvalidCoordinates)
}

// StackGap creates the error returned when a write would leave a hole in a hex stack
func StackGap(hexID string, level int) *Error {
	return InvalidArgumentf("stack level %d of %s has no level below it", level, hexID).
		WithReason(ReasonStackGap).
		WithMeta("hex_id", hexID)
}

// CombatNotActive creates the error returned for combat intents outside of combat
func CombatNotActive() *Error {
	return FailedPrecondition("Combat not active").WithReason(ReasonCombatNotActive)
}

// NotYourTurn creates the error returned when an actor acts out of turn
func NotYourTurn(actorID string) *Error {
	return FailedPrecondition("Not your turn").
		WithReason(ReasonNotYourTurn).
		WithMeta("actor_id", actorID)
}

// InsufficientActionPoints creates the error returned when an action costs more than the budget
func InsufficientActionPoints(actorID string, cost, available int) *Error {
	return FailedPrecondition("Not enough AP").
		WithReason(ReasonInsufficientActionPoints).
		WithMeta("actor_id", actorID).
		WithMeta("cost", cost).
		WithMeta("available", available)
}

// UnknownActor creates the error returned when an actor is not part of the turn order
func UnknownActor(actorID string) *Error {
	return NotFound("Character not in turn order").
		WithReason(ReasonUnknownActor).
		WithMeta("actor_id", actorID)
}

// RoomCreationFailed wraps the fatal-rare failure to allocate a room
func RoomCreationFailed(cause error) *Error {
	if cause == nil {
		return Internal("Failed to create room").WithReason(ReasonRoomCreationFailed)
	}
	return WrapWithCode(cause, CodeInternal, "Failed to create room").WithReason(ReasonRoomCreationFailed)
}

// BadRequest creates a malformed-message error
func BadRequest(format string, args ...interface{}) *Error {
	return InvalidArgumentf(format, args...).WithReason(ReasonBadRequest)
}
