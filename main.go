package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/milk9111/tabletop/audio"
	"github.com/milk9111/tabletop/common"
	"github.com/milk9111/tabletop/logging"
	"github.com/milk9111/tabletop/scenario"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging and physics overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	sceneName := flag.String("scene", scenario.DefaultScene, "scene prefab under prefabs/")
	seed := flag.Uint64("seed", 0, "random seed; 0 uses the scene's seed")
	watch := flag.Bool("watch", false, "reload the scene when prefabs/ changes on disk")
	mute := flag.Bool("mute", false, "disable the glass clink")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabletop: logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.ScreenWidth, common.ScreenHeight)
	ebiten.SetWindowTitle("tabletop")
	ebiten.SetTPS(common.TPS)

	var sound *audio.Player
	if !*mute {
		sound, err = audio.NewPlayer(ebaudio.NewContext(int(audio.SampleRate)), logger)
		if err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		}
	}

	opts := gameOptions{Scene: *sceneName, Seed: *seed, Debug: *debug, Watch: *watch}
	var game *Game
	if sound != nil {
		game, err = NewGame(opts, sound, logger)
	} else {
		game, err = NewGame(opts, nil, logger)
	}
	if err != nil {
		logger.Fatal("build game", zap.Error(err))
	}
	defer func() { _ = game.Close() }()

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", zap.Error(err))
	}
	if sound != nil {
		_ = sound.Close()
	}
}
