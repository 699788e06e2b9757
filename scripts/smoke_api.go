//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"edugen-client/internal/api"
	"edugen-client/internal/chat"
	"edugen-client/internal/dto"
	"edugen-client/internal/pkg/authstore"
	"edugen-client/internal/pkg/logger"
	"edugen-client/internal/session"
	"edugen-client/internal/upload"

	"github.com/fatih/color"
)

// Live smoke test against a running EduGen backend.
// Usage: go run scripts/smoke_api.go <email> <password>

const baseURL = "http://localhost:8000"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func main() {
	if len(os.Args) < 3 {
		color.Red("usage: go run scripts/smoke_api.go <email> <password>")
		os.Exit(1)
	}

	ctx := context.Background()
	log := logger.NopLogger{}
	tokens := authstore.NewFileStore(".smoke_token")
	client := api.NewClient(baseURL, tokens, log, 60*time.Second)
	chatCtl := chat.NewController(client, log)
	ctl := session.NewController(client, chatCtl, log)

	color.Cyan("EduGen API Smoke Test\n")

	color.Yellow("\n1. Login")
	resp, err := client.Login(ctx, dto.LoginRequest{Email: os.Args[1], Password: os.Args[2]})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Logged in as %s", resp.Email)

	color.Yellow("\n2. Upload (streamed text)")
	err = ctl.Upload(ctx, api.UploadPayload{Text: "The mitochondria is the powerhouse of the cell."}, func(p upload.Progress) {
		fmt.Printf("  [%3d%%] %-10s %s\n", p.Percentage, p.Stage, p.Message)
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	content := ctl.Content()
	color.Green("Content session: %s (%s)", content.ContentId, content.InputType)

	color.Yellow("\n3. Generate Summary")
	err = ctl.StartGeneration(ctx, dto.ActionSummary, dto.SummaryOptions{
		ContentId:   content.ContentId,
		SummaryType: "brief",
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: ok")
		prettyPrint(ctl.Result().Data)
	}

	color.Yellow("\n4. Generate Quiz (Test mode)")
	err = ctl.StartGeneration(ctx, dto.ActionQuiz, dto.QuizOptions{
		ContentId:         content.ContentId,
		NumberOfQuestions: 3,
		Difficulty:        "easy",
		Mode:              "Test",
	})
	if err != nil {
		color.Red("Failed: %v", err)
	} else if engine := ctl.Quiz(); engine != nil {
		for _, q := range engine.Questions() {
			engine.SelectAnswer(q.Id, q.CorrectAnswer)
		}
		score, err := engine.Submit(ctx)
		if err != nil {
			color.Red("Submit failed: %v", err)
		} else {
			color.Green("Score: %d/%d (%d%%) grade %s", score.Correct, score.Total, score.Percentage, score.Grade())
		}
	}

	color.Yellow("\n5. Chat")
	reply, err := chatCtl.Send(ctx, "What organelle is mentioned?")
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Answer: %s", reply.Content)
	}

	color.Yellow("\n6. History")
	entries, err := ctl.History(ctx, true)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		for _, e := range entries {
			fmt.Printf("  %s  %-8s  %s\n", e.ContentId, e.InputType, e.Preview)
		}
	}

	color.Yellow("\n7. Cleanup")
	if err := ctl.DeleteContent(ctx, content.ContentId); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Deleted content %s", content.ContentId)
	}

	color.Cyan("\nSmoke test finished.")
}
