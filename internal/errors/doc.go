// Package errors provides structured errors for the hexroom server.
//
// Every error carries a transport-neutral Code, an optional domain Reason,
// a user-facing Message and free-form metadata:
//   - Codes map onto HTTP statuses (health and inspection endpoints) and gRPC codes
//   - Reasons name the protocol failures clients can react to (RoomNotFound, NotYourTurn, ...)
//   - Messages are what the websocket `error` event shows to the player
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.RoomNotFound(roomID)
//	err := errors.InvalidCoordinates("q+r+s must be 0, got %d", sum)
//
// Adding metadata:
//
//	err := errors.NotFound("terrain not found").
//	    WithMeta("room_id", roomID).
//	    WithMeta("name", name)
//
// Wrapping errors keeps code and reason:
//
//	if err := store.SetHex(id, rec); err != nil {
//	    return errors.Wrap(err, "failed to update hex")
//	}
//
// # Error Checking
//
//	if errors.HasReason(err, errors.ReasonNotYourTurn) {
//	    // tell the client to wait
//	}
//
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", input.Name, vb)
//	errors.ValidateEnum("weatherType", input.WeatherType, allowed, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return NotFound / AlreadyExists with ids in metadata
//   - Wrap storage errors with context
//
// Store/engine layer (terrain, combat):
//   - Return reason-tagged errors; never partially apply a change
//
// Session layer:
//   - Convert every error into a single `error` event for the sender
//   - Log internal errors for debugging
package errors
