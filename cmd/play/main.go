// Command play runs a memory-match game in the terminal against a running
// backend, exercising the full score lifecycle: login, placeholder creation,
// gameplay, finalize, leaderboard.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"memory-match-system/client"
	"memory-match-system/game"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", envOr("API_URL", "http://localhost:5000"), "backend base URL")
	gridSize := flag.Int("grid", 4, "board side length (4, 6 or 8)")
	username := flag.String("user", "", "username (required)")
	password := flag.String("pass", "", "password (required)")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: play -user NAME -pass SECRET [-grid 4|6|8] [-server URL]")
		os.Exit(2)
	}

	ctx := context.Background()
	api := client.New(*serverURL, logger)

	identity, err := api.Login(ctx, *username, *password)
	if err != nil {
		logger.Info("login failed, registering instead", "user", *username)
		identity, err = api.Register(ctx, *username, *password)
		if err != nil {
			logger.Error("registration failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("logged in", "user", identity.Username, "id", identity.UserID)

	lifecycle := client.NewScoreLifecycle(api, identity, *gridSize)
	scoreID, err := lifecycle.Init(ctx)
	if err != nil {
		// One explicit retry before giving up, mirroring the reset path the
		// lifecycle exposes.
		lifecycle.Reset()
		if scoreID, err = lifecycle.Init(ctx); err != nil {
			logger.Error("could not start game session", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("game session ready", "score_id", scoreID, "grid", *gridSize)

	engine, err := game.New(*gridSize, nil)
	if err != nil {
		logger.Error("could not build board", "error", err)
		os.Exit(1)
	}
	engine.Start()
	defer engine.Stop()

	in := bufio.NewScanner(os.Stdin)
	for !engine.Over() {
		printBoard(engine.Snapshot(), *gridSize)
		fmt.Print("flip> ")
		if !in.Scan() {
			fmt.Println()
			return
		}
		index, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil {
			fmt.Println("enter a card index")
			continue
		}
		engine.Flip(index)
		if engine.Snapshot().Checking {
			// Mismatch cooldown; wait it out so the reveal is visible.
			printBoard(engine.Snapshot(), *gridSize)
			time.Sleep(game.FlipBackDelay)
		}
	}

	snap := engine.Snapshot()
	fmt.Printf("\n🎉 Done in %ds and %d moves!\n", snap.Elapsed, snap.Moves)

	if err := lifecycle.Finalize(ctx, snap.Elapsed, snap.Moves); err != nil {
		logger.Error("score submission failed, result kept locally", "error", err)
	} else {
		logger.Info("score submitted", "score_id", scoreID)
	}

	entries, err := api.Leaderboard(ctx, *gridSize)
	if err != nil {
		logger.Error("leaderboard fetch failed", "error", err)
		return
	}
	fmt.Printf("\nTop scores (%dx%d):\n", *gridSize, *gridSize)
	for i, e := range entries {
		fmt.Printf("%2d. %-20s %4ds %4d moves\n", i+1, e.PlayerName, e.TimeSeconds, e.Moves)
	}

	if err := api.Logout(ctx, identity.Token); err != nil {
		logger.Warn("logout failed", "error", err)
	}
}

func printBoard(snap game.Snapshot, gridSize int) {
	fmt.Printf("\ntime %ds  moves %d\n", snap.Elapsed, snap.Moves)
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			card := snap.Cards[row*gridSize+col]
			switch {
			case card.Matched:
				fmt.Printf(" %s ", card.Icon)
			case card.Flipped:
				fmt.Printf("[%s]", card.Icon)
			default:
				fmt.Printf("%3d ", card.ID)
			}
		}
		fmt.Println()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
