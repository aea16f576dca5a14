// Command container runs self-play games of the commodity-trading engine,
// optionally journaling final digests for duplicate detection.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"containergame/engine"
	"containergame/game"
	"containergame/journal"
)

func main() {
	var (
		games       = flag.Int("games", 1, "number of games to play")
		players     = flag.Int("players", 4, "players per game (3-5)")
		variant     = flag.String("variant", string(game.FirstShipment), "rule variant")
		seed        = flag.Int64("seed", 1, "seed of the first game; later games increment it")
		strategy    = flag.Int("strategy", 5, "valuation strategy version (4, 5 or 6)")
		policy      = flag.String("policy", "greedy", "move policy: greedy or random")
		tuningPath  = flag.String("tuning", "", "yaml tuning overlay, empty for defaults")
		journalPath = flag.String("journal", "", "sqlite digest journal, empty to disable")
		verbose     = flag.Bool("v", false, "log every move")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	tuning := game.DefaultTuning()
	if *tuningPath != "" {
		var err error
		if tuning, err = game.LoadTuning(*tuningPath); err != nil {
			log.Fatal().Err(err).Msg("loading tuning")
		}
	}

	var jnl *journal.Journal
	if *journalPath != "" {
		var err error
		if jnl, err = journal.Open(*journalPath); err != nil {
			log.Fatal().Err(err).Msg("opening journal")
		}
		defer jnl.Close()
	}

	version := game.Version(*strategy)
	switch version {
	case game.V4, game.V5, game.V6:
	default:
		log.Fatal().Int("strategy", *strategy).Msg("unknown strategy version")
	}

	wins := make([]int, *players)
	for i := 0; i < *games; i++ {
		cfg := game.GameConfig{
			Variant: game.Variant(strings.TrimSpace(*variant)),
			Players: *players,
			Seed:    *seed + int64(i),
		}
		g, err := game.NewGame(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("starting game")
		}
		g.Tun = tuning

		policies := make([]engine.Policy, *players)
		for p := range policies {
			if *policy == "random" {
				policies[p] = engine.Random{}
			} else {
				policies[p] = engine.Greedy{Version: version}
			}
		}
		runner, err := engine.NewLocal(g, policies, cfg.Seed)
		if err != nil {
			log.Fatal().Err(err).Msg("wiring runner")
		}
		res := runner.Run()
		if res.Winner >= 0 {
			wins[res.Winner]++
		}

		if jnl != nil {
			if seen, err := jnl.Seen(res.Digest); err != nil {
				log.Error().Err(err).Msg("querying journal")
			} else if seen {
				log.Warn().Uint64("digest", res.Digest).Msg("duplicate final position")
			}
			if err := jnl.Record(res.ID.String(), cfg.Seed, string(cfg.Variant),
				cfg.Players, res.Moves, res.Digest); err != nil {
				log.Error().Err(err).Msg("recording game")
			}
		}
	}
	log.Info().Ints("wins", wins).Int("games", *games).Msg("done")
}
