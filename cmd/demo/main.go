// Command demo plays scripted debates against the offline partner and
// prints the resulting leaderboard. Useful as a smoke run without a client.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/internal/identity"
	"github.com/agonhq/agon/internal/session"
	"github.com/agonhq/agon/pkg/logger"
)

type scriptedDebate struct {
	email    string
	username string
	topic    string
	persona  string
	turns    []string
}

var script = []scriptedDebate{
	{
		email:    "ada@example.com",
		username: "ada",
		topic:    "school uniforms should be mandatory",
		persona:  "The Traditionalist",
		turns: []string{
			"Uniforms reduce visible income differences between students.",
			"They also cut morning decision fatigue and lateness.",
			"Schools with uniforms report fewer dress-code disputes.",
		},
	},
	{
		email:    "bob@example.com",
		username: "bob",
		topic:    "remote work should be the default",
		persona:  "The Office Advocate",
		turns: []string{
			"Commutes waste hours that remote workers reinvest in their work.",
			"Distributed hiring widens the talent pool dramatically.",
		},
	},
	{
		email:    "eve@example.com",
		username: "eve",
		topic:    "homework should be abolished",
		persona:  "The Pragmatist",
		turns: []string{
			"Homework deepens inequality between supported and unsupported students.",
		},
	},
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")

		return
	}
	_ = logger.SetLevelString("warn")

	if err := run(context.Background()); err != nil {
		os.Stderr.WriteString("demo failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "agon-demo-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	medium, err := repository.NewFileMedium(dir)
	if err != nil {
		return err
	}
	store := repository.NewStore(medium)
	ident := identity.NewManager(store)
	registry := session.NewRegistry(store, provider.NewOffline())
	defer registry.Close()

	for _, d := range script {
		if err := play(ctx, ident, registry, d); err != nil {
			return fmt.Errorf("debate for %s: %w", d.username, err)
		}
	}

	profiles, err := ident.ListProfiles(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Final standings:")
	for _, entry := range ranking.Rank(profiles) {
		fmt.Printf("%2d. %-8s %4d pts  %d wins / %d debates  [%s]\n",
			entry.Position, entry.Username, entry.TotalScore, entry.Wins, entry.TotalDebates, entry.Rank)
	}

	return nil
}

func play(ctx context.Context, ident *identity.Manager, registry *session.Registry, d scriptedDebate) error {
	account, _, err := ident.SignUp(ctx, d.email, "secret-pass", d.username)
	if err != nil {
		return err
	}

	machine := registry.Machine(account.ID)
	_, opening, err := machine.Start(ctx, d.topic, d.persona)
	if err != nil {
		return err
	}
	fmt.Printf("\n=== %s vs %s on %q ===\n", d.username, d.persona, d.topic)
	fmt.Printf("AI: %s\n", opening.Content)

	for _, turn := range d.turns {
		userMsg, aiMsg, err := machine.SubmitTurn(ctx, "", turn)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (+%d)\n", d.username, userMsg.Content, userMsg.ScoreImpact)
		fmt.Printf("AI: %s (+%d)\n", aiMsg.Content, aiMsg.ScoreImpact)
	}

	debate, verdict, err := machine.End(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Verdict: user %d, ai %d, winner %s\n", verdict.UserScore, verdict.AIScore, verdict.Winner)
	fmt.Printf("Feedback: %s\n", debate.Feedback)
	machine.Restart()

	return ident.SignOut(ctx)
}
