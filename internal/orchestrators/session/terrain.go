package session

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
	"github.com/KirkDiggler/hexroom/internal/protocol"
	terrainlibrary "github.com/KirkDiggler/hexroom/internal/repositories/terrain_library"
	"github.com/KirkDiggler/hexroom/internal/services/room"
	"github.com/KirkDiggler/hexroom/internal/terrain"
)

func (s *service) updateHex(in *protocol.UpdateHex) memberFunc {
	return func(_ context.Context, r *room.Room, _ string) error {
		d := in.HexData
		if d.Q == nil || d.R == nil || d.S == nil {
			return errors.InvalidCoordinates("Invalid cube coordinates").WithMeta("hex_id", in.HexID)
		}

		stored, err := r.Terrain().SetHex(in.HexID, entities.HexRecord{
			Q:           *d.Q,
			R:           *d.R,
			S:           *d.S,
			Type:        entities.TerrainType(d.Type),
			Elevation:   d.Elevation,
			IsStacked:   d.IsStacked,
			StackLevel:  d.StackLevel,
			StackHeight: d.StackHeight,
		})
		if err != nil {
			return err
		}

		s.broadcast(r, protocol.TerrainUpdate{
			Type:    protocol.TerrainHexUpdate,
			HexID:   hexgrid.StackID(stored.Cube(), stored.StackLevel).String(),
			HexData: &stored,
		})
		return nil
	}
}

func (s *service) removeHex(in *protocol.RemoveHex) memberFunc {
	return func(_ context.Context, r *room.Room, _ string) error {
		removed, err := r.Terrain().RemoveHex(in.HexID)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}

		s.broadcast(r, protocol.TerrainUpdate{
			Type:       protocol.TerrainHexRemove,
			HexID:      removed[0],
			RemovedIDs: removed,
		})
		return nil
	}
}

func (s *service) updateFullTerrain(in *protocol.UpdateFullTerrain) memberFunc {
	return func(_ context.Context, r *room.Room, _ string) error {
		m, err := terrain.Decode(in.TerrainData)
		if err != nil {
			return err
		}
		if err := r.Terrain().ReplaceAll(m); err != nil {
			return err
		}

		s.broadcast(r, protocol.TerrainUpdate{
			Type:        protocol.TerrainFullUpdate,
			TerrainData: r.Terrain().Snapshot(),
		})
		return nil
	}
}

// saveTerrain snapshots the room under its lock and writes to the library outside it
func (s *service) saveTerrain(ctx context.Context, connID string, in *protocol.SaveTerrain) error {
	r, err := s.lockMember(ctx, connID, in.RoomID)
	if err != nil {
		return err
	}
	if err := terrainlibrary.ValidateName(in.Name); err != nil {
		r.Unlock()
		return err
	}
	data, err := r.Terrain().Serialize()
	count := r.Terrain().Len()
	r.Unlock()
	if err != nil {
		return errors.Wrap(err, "failed to serialize terrain")
	}

	if _, err := s.library.Save(ctx, &terrainlibrary.SaveInput{
		Name:     in.Name,
		HexCount: count,
		Data:     data,
	}); err != nil {
		return err
	}

	slog.Info("Terrain saved",
		"room_id", in.RoomID,
		"name", in.Name,
		"hex_count", count,
	)

	s.reply(connID, protocol.TerrainSaved{Name: in.Name, HexCount: count})
	return nil
}

// loadTerrain reads from the library before taking the room lock
func (s *service) loadTerrain(ctx context.Context, connID string, in *protocol.LoadTerrain) error {
	if err := s.checkMember(ctx, connID, in.RoomID); err != nil {
		return err
	}

	out, err := s.library.Load(ctx, &terrainlibrary.LoadInput{Name: in.Name})
	if err != nil {
		return err
	}

	return s.withMember(ctx, connID, in, func(_ context.Context, r *room.Room, _ string) error {
		if err := r.Terrain().Load(out.Data); err != nil {
			return err
		}

		slog.Info("Terrain loaded",
			"room_id", r.ID,
			"name", in.Name,
			"hex_count", r.Terrain().Len(),
		)

		s.broadcast(r, protocol.TerrainUpdate{
			Type:        protocol.TerrainFullUpdate,
			TerrainData: r.Terrain().Snapshot(),
		})
		return nil
	})
}

func (s *service) listTerrains(ctx context.Context, connID string, in *protocol.ListTerrains) error {
	if err := s.checkMember(ctx, connID, in.RoomID); err != nil {
		return err
	}

	out, err := s.library.List(ctx, &terrainlibrary.ListInput{})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(out.Entries))
	for _, e := range out.Entries {
		names = append(names, e.Name)
	}
	s.reply(connID, protocol.TerrainList{Names: names})
	return nil
}

// checkMember verifies membership without keeping the room locked
func (s *service) checkMember(ctx context.Context, connID, roomID string) error {
	r, err := s.lockMember(ctx, connID, roomID)
	if err != nil {
		return err
	}
	r.Unlock()
	return nil
}
