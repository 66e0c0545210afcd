package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/ecs"
	"github.com/milk9111/tabletop/ecs/component"
	"github.com/milk9111/tabletop/impact"
	"github.com/milk9111/tabletop/logging"
)

// SoundPlayer plays one glass clink.
type SoundPlayer interface {
	PlayClink(sound impact.SoundRequest) error
}

// AudioSystem hands queued clinks to the player. Without a player queued
// sounds are dropped.
type AudioSystem struct {
	player SoundPlayer
	logger *zap.Logger
}

func NewAudioSystem(player SoundPlayer, logger *zap.Logger) *AudioSystem {
	return &AudioSystem{player: player, logger: logging.Or(logger).Named("audio")}
}

func (a *AudioSystem) Update(w *ecs.World) {
	if a == nil || w == nil {
		return
	}

	ecs.ForEach(w, component.AudioComponent.Kind(), func(e ecs.Entity, audioComp *component.Audio) {
		pending := audioComp.Pending
		audioComp.Pending = nil
		if a.player == nil {
			return
		}
		for _, sound := range pending {
			if err := a.player.PlayClink(sound); err != nil {
				a.logger.Warn("clink failed", zap.Stringer("entity", e), zap.Error(err))
				continue
			}
			audioComp.Played++
		}
	})
}
