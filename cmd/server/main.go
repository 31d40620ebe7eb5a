package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nova-arena/internal/api"
	"nova-arena/internal/audio"
	"nova-arena/internal/config"
	"nova-arena/internal/debugview"
	"nova-arena/internal/game"
	"nova-arena/internal/physics"
	"nova-arena/internal/rank"

	"github.com/joho/godotenv"
)

// cueNames lists the sound cues the simulation plays. Each maps to
// <name>.ogg under the audio directory; missing files degrade to
// silence.
var cueNames = []string{
	"shoot", "hit", "empty_clip", "reload",
	"enemy_spawn", "enemy_death", "enemy_attack",
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.Load()

	world := physics.NewWorld(cfg.Physics)

	var sink game.AudioSink = game.NoopAudio{}
	var mixer *audio.Mixer
	if cfg.Audio.Enabled {
		bank := audio.LoadBank(cfg.Audio.Dir, cueNames)
		mixer = audio.NewMixer(bank)
		mixer.SetVolume(cfg.Audio.Volume)
		sink = mixer
	}

	events := game.NewEventLog()
	if err := events.Start(os.Getenv("EVENT_LOG_PATH")); err != nil {
		log.Fatalf("event log: %v", err)
	}
	defer events.Stop()

	session := game.NewSession(cfg.SessionConfig(), world, sink, events)
	session.SetTickObserver(api.RecordTick)

	board := rank.NewBoard()

	if err := api.StartDebugServer(cfg.Observability); err != nil {
		log.Fatalf("debug server: %v", err)
	}

	server := api.NewServer(session, board, events.Stats)
	defer server.Stop()
	server.Handle("/debug/arena.png", debugview.Handler(session.Snapshot, debugview.Config{
		Width:           800,
		Height:          800,
		ArenaHalfExtent: cfg.Physics.ArenaHalfExtent,
	}))

	// Every rendered frame goes out to websocket clients and refreshes
	// the enemy and event-log gauges. The hook runs on the loop
	// goroutine only, so the dropped-count delta needs no locking.
	var lastDropped uint64
	session.SetRenderHook(func(snap *game.SessionSnapshot) {
		api.UpdateEnemyCounts(len(snap.Enemies), snap.AliveCount)
		if dropped := events.Stats()["dropped"]; dropped > lastDropped {
			api.RecordEventsDropped(dropped - lastDropped)
			lastDropped = dropped
		}
		server.Hub().BroadcastSnapshot(snap)
	})

	session.Start()
	defer session.Stop()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("shutting down")

		session.Stop()
		events.Stop()
		server.Stop()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("nova-arena simulation running at %d ticks/s", cfg.Sim.FrameRate)
	if err := server.Start(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
