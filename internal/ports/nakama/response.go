package nakama

import (
	"errors"

	"battleship/internal/app"
	"battleship/internal/commit"
	"battleship/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeResponse renders an RPC response body. Values must be structpb
// compatible: slices as []interface{}, numbers as int or float64.
func encodeResponse(logger runtime.Logger, body map[string]interface{}) (string, error) {
	st, err := structpb.NewStruct(body)
	if err != nil {
		logger.Error("Failed to build response: %v", err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	out, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		logger.Error("Failed to marshal response: %v", err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	return string(out), nil
}

func embed(title, description string) map[string]interface{} {
	return map[string]interface{}{"title": title, "description": description}
}

func intsToList(in []int) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func bitsToList(in []uint8) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func scoreToMap(s domain.Score) map[string]interface{} {
	return map[string]interface{}{
		"shots":           s.Shots,
		"hit_tiles":       s.HitTiles,
		"sunk_tiles":      s.SunkTiles,
		"misses":          s.Misses,
		"ships_sunk":      s.ShipsSunk,
		"ships_remaining": s.ShipsRemaining,
	}
}

func shipsToList(ships []domain.Ship) []interface{} {
	out := make([]interface{}, len(ships))
	for i, s := range ships {
		coords := make([]interface{}, len(s.Coords))
		for j, c := range s.Coords {
			coords[j] = c.String()
		}
		out[i] = map[string]interface{}{
			"id":          int(s.ID),
			"length":      s.Length,
			"orientation": string(s.Orientation),
			"coords":      coords,
		}
	}
	return out
}

func receiptToMap(r *commit.Receipt) map[string]interface{} {
	if r == nil {
		return nil
	}
	path := make([]interface{}, len(r.Path))
	for i, p := range r.Path {
		path[i] = p
	}
	return map[string]interface{}{
		"index": r.Index,
		"bit":   int(r.Bit),
		"path":  path,
		"dir":   bitsToList(r.Dir),
	}
}

// toRuntimeError maps use-case errors onto Nakama status codes. Anything
// unexpected is logged and hidden behind an internal error.
func toRuntimeError(logger runtime.Logger, err error) error {
	var exhausted *domain.PlacementExhaustedError
	switch {
	case errors.As(err, &exhausted):
		return runtime.NewError(exhausted.Error(), codeFailedPrecondition)
	case errors.Is(err, app.ErrInvalidDimensions),
		errors.Is(err, app.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidCoordinate):
		return runtime.NewError(err.Error(), codeInvalidArgument)
	case errors.Is(err, app.ErrOutOfBounds):
		return runtime.NewError(err.Error(), codeOutOfRange)
	case errors.Is(err, app.ErrGameNotFound):
		return runtime.NewError("Game not found.", codeNotFound)
	case errors.Is(err, app.ErrBothSidesTaken):
		return runtime.NewError("Both teams have already joined.", codeAlreadyExists)
	case errors.Is(err, app.ErrSideUnresolvable):
		return runtime.NewError("This channel is not part of a game.", codeFailedPrecondition)
	case errors.Is(err, app.ErrRevealLocked):
		return runtime.NewError(err.Error(), codeFailedPrecondition)
	case errors.Is(err, app.ErrUnauthorized):
		return runtime.NewError("Permission denied.", codePermissionDenied)
	case errors.Is(err, app.ErrConcurrentUpdate):
		return runtime.NewError(err.Error(), codeAborted)
	default:
		logger.Error("Unhandled error: %v", err)
		return runtime.NewError("Internal error", codeInternal)
	}
}
