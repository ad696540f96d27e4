package main

import (
	"context"
	"log"
	"math/rand"
	"os"

	"lexigrid/dictionary"
	"lexigrid/engine"
	"lexigrid/server"
	"lexigrid/tile"
)

func serverConfig(ctx context.Context, m mainFlags, log *log.Logger) (*server.Config, *engine.Game, error) {
	if err := m.validate(); err != nil {
		return nil, nil, err
	}
	wordsFile, err := os.Open(m.wordsFile)
	if err != nil {
		return nil, nil, err
	}
	defer wordsFile.Close()
	dict, err := dictionary.New(wordsFile)
	if err != nil {
		return nil, nil, err
	}
	shuffleFunc := func(tiles []tile.Tile) {
		rand.Shuffle(len(tiles), func(i, j int) {
			tiles[i], tiles[j] = tiles[j], tiles[i]
		})
	}
	gameCfg := engine.Config{
		Debug:       m.debug,
		Log:         log,
		Dictionary:  dict,
		ShuffleFunc: shuffleFunc,
	}
	g, err := gameCfg.New()
	if err != nil {
		return nil, nil, err
	}
	cfg := server.Config{
		Addr:  m.addr,
		Log:   log,
		Debug: m.debug,
	}
	return &cfg, g, nil
}
