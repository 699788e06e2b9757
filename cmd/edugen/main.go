package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"edugen-client/internal/api"
	"edugen-client/internal/chat"
	"edugen-client/internal/config"
	"edugen-client/internal/dto"
	"edugen-client/internal/flashcards"
	"edugen-client/internal/pkg/authstore"
	"edugen-client/internal/pkg/logger"
	"edugen-client/internal/quiz"
	"edugen-client/internal/session"
	"edugen-client/internal/tracer"
	"edugen-client/internal/upload"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	tokens := authstore.NewFileStore(cfg.App.TokenFile)
	client := api.NewClient(cfg.Api.BaseURL, tokens, log, cfg.Api.RequestTimeoutDuration())
	chatCtl := chat.NewController(client, log)
	ctl := session.NewController(client, chatCtl, log,
		session.WithUploadTimeout(cfg.Upload.TimeoutDuration()),
		session.WithRequestTimeout(cfg.Api.RequestTimeoutDuration()),
	)

	color.Cyan("EduGen client (%s)", cfg.Api.BaseURL)
	color.Cyan("Type 'help' for commands.\n")

	app := &cli{ctl: ctl, client: client, chat: chatCtl, tokens: tokens}
	app.loop()
}

type cli struct {
	ctl    *session.Controller
	client *api.Client
	chat   *chat.Controller
	tokens authstore.Store
}

func (a *cli) loop() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest := splitCommand(line)
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := a.dispatch(cmd, rest); err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				color.Red("Session expired. Please login again.")
				continue
			}
			color.Red("Error: %v", err)
		}
	}
}

func (a *cli) dispatch(cmd, rest string) error {
	ctx := context.Background()

	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.tokens.Clear()
	case "upload":
		return a.upload(ctx, rest)
	case "history":
		return a.history(ctx)
	case "outputs":
		return a.outputs(ctx)
	case "open":
		return a.open(ctx, rest)
	case "switch":
		a.ctl.SwitchContent(rest)
		color.Green("Switched to content %s", rest)
		return nil
	case "generate":
		return a.generate(ctx, rest)
	case "answer":
		return a.answer(rest)
	case "submit":
		return a.submit(ctx)
	case "retake":
		return a.retake()
	case "next", "prev", "flip":
		return a.browse(cmd)
	case "chat":
		return a.sendChat(ctx, rest)
	case "close":
		a.ctl.CloseResult()
		return nil
	case "new":
		a.ctl.NewSession()
		return nil
	case "delete":
		return a.ctl.DeleteContent(ctx, rest)
	case "delete-output":
		return a.ctl.DeleteOutput(ctx, rest)
	case "rename":
		id, title := splitCommand(rest)
		return a.ctl.RenameContent(ctx, id, title)
	case "status":
		a.printStatus()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func (a *cli) printHelp() {
	fmt.Print(`Commands:
  login <email> <password>          authenticate
  logout                            drop stored credentials
  upload text <text>                ingest pasted text
  upload url <youtube_url>          ingest a YouTube video
  upload file <path>                ingest a document or video file
  history                           list past content sessions
  switch <content_id>               resume a past session
  outputs                           list stored outputs of the active content
  open <output_id> <feature>        reopen a stored output
  generate summary <type>           brief | detailed | bullet_points
  generate flashcards <type> <n>    term_definition | question_answer
  generate quiz <n> <difficulty> <mode>   mode: Practice | Test
  generate ppt <slides> <theme>     presentation outline
  answer <question_id> <option>     pick a quiz answer (Test mode)
  submit                            grade the quiz attempt
  retake                            clear answers and retake
  next | prev                       browse flashcards
  flip                              flip the current flashcard
  chat <question>                   ask about the active content
  close                             close the open result
  new                               start a fresh session
  delete <content_id>               delete a content session
  delete-output <output_id>         delete one stored output
  rename <content_id> <title>       rename a session
  status                            show session state
  quit
`)
}

func (a *cli) login(ctx context.Context, rest string) error {
	email, password := splitCommand(rest)
	if email == "" || password == "" {
		return errors.New("usage: login <email> <password>")
	}
	if _, err := a.client.Login(ctx, dto.LoginRequest{Email: email, Password: password}); err != nil {
		return err
	}
	color.Green("Logged in as %s", email)
	return nil
}

func (a *cli) upload(ctx context.Context, rest string) error {
	kind, value := splitCommand(rest)
	var payload api.UploadPayload
	switch kind {
	case "text":
		payload.Text = value
	case "url":
		payload.YouTubeURL = value
	case "file":
		f, err := os.Open(value)
		if err != nil {
			return err
		}
		defer f.Close()
		payload.FileName = filepath.Base(value)
		payload.File = f
	default:
		return errors.New("usage: upload text|url|file <value>")
	}

	err := a.ctl.Upload(ctx, payload, func(p upload.Progress) {
		if p.Percentage >= 0 {
			fmt.Printf("\r[%3d%%] %-12s %s", p.Percentage, p.Stage, p.Message)
		}
	})
	fmt.Println()
	if err != nil {
		return err
	}
	content := a.ctl.Content()
	color.Green("Upload complete: %s (%s)", content.ContentId, content.InputType)
	return nil
}

func (a *cli) history(ctx context.Context) error {
	entries, err := a.ctl.History(ctx, false)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No sessions yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("  %s  %-8s  %s\n", e.ContentId, e.InputType, e.Preview)
	}
	return nil
}

func (a *cli) outputs(ctx context.Context) error {
	outputs, err := a.ctl.Outputs(ctx, false)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		fmt.Println("No outputs for this content yet.")
		return nil
	}
	for _, o := range outputs {
		fmt.Printf("  %s  %-12s  %s\n", o.OutputId, o.Feature, o.CreatedAt)
	}
	return nil
}

func (a *cli) open(ctx context.Context, rest string) error {
	outputId, feature := splitCommand(rest)
	action := dto.Action(feature)
	if outputId == "" || !action.Valid() {
		return errors.New("usage: open <output_id> summary|flashcards|quiz|presentation|chatbot")
	}
	if err := a.ctl.OpenOutput(ctx, outputId, action); err != nil {
		return err
	}
	a.printResult()
	return nil
}

func (a *cli) generate(ctx context.Context, rest string) error {
	content := a.ctl.Content()
	if content == nil {
		return session.ErrNoActiveContent
	}

	kind, args := splitCommand(rest)
	fields := strings.Fields(args)

	var (
		action dto.Action
		opts   dto.GenerationOptions
	)
	switch kind {
	case "summary":
		if len(fields) < 1 {
			return errors.New("usage: generate summary <brief|detailed|bullet_points>")
		}
		action = dto.ActionSummary
		opts = dto.SummaryOptions{ContentId: content.ContentId, SummaryType: fields[0]}
	case "flashcards":
		if len(fields) < 2 {
			return errors.New("usage: generate flashcards <type> <count>")
		}
		action = dto.ActionFlashcards
		opts = dto.FlashcardsOptions{
			ContentId:     content.ContentId,
			FlashcardType: fields[0],
			NumberOfCards: atoiDefault(fields[1], 10),
		}
	case "quiz":
		if len(fields) < 3 {
			return errors.New("usage: generate quiz <count> <difficulty> <Practice|Test>")
		}
		action = dto.ActionQuiz
		opts = dto.QuizOptions{
			ContentId:         content.ContentId,
			NumberOfQuestions: atoiDefault(fields[0], 5),
			Difficulty:        fields[1],
			Mode:              fields[2],
		}
	case "ppt":
		if len(fields) < 2 {
			return errors.New("usage: generate ppt <slide_count> <theme>")
		}
		action = dto.ActionPPT
		opts = dto.PPTOptions{
			ContentId:  content.ContentId,
			SlideCount: atoiDefault(fields[0], 10),
			Theme:      fields[1],
		}
	default:
		return errors.New("usage: generate summary|flashcards|quiz|ppt ...")
	}

	color.Yellow("Generating %s...", action)
	if err := a.ctl.StartGeneration(ctx, action, opts); err != nil {
		return err
	}
	a.printResult()
	return nil
}

func (a *cli) answer(rest string) error {
	engine := a.ctl.Quiz()
	if engine == nil {
		return errors.New("no quiz open")
	}
	questionId, option := splitCommand(rest)
	if err := engine.SelectAnswer(questionId, option); err != nil {
		return err
	}
	fmt.Printf("Answered %d/%d\n", len(engine.Answers()), len(engine.Questions()))
	return nil
}

func (a *cli) submit(ctx context.Context) error {
	engine := a.ctl.Quiz()
	if engine == nil {
		return errors.New("no quiz open")
	}
	score, err := engine.Submit(ctx)
	if err != nil {
		return err
	}
	color.Green("Score: %d/%d (%d%%) grade %s", score.Correct, score.Total, score.Percentage, score.Grade())
	return nil
}

func (a *cli) browse(cmd string) error {
	deck := a.ctl.Deck()
	if deck == nil {
		return errors.New("no flashcards open")
	}
	switch cmd {
	case "next":
		if !deck.Next() {
			return errors.New("already at the last card")
		}
	case "prev":
		if !deck.Prev() {
			return errors.New("already at the first card")
		}
	case "flip":
		deck.Flip()
	}
	renderCard(os.Stdout, deck)
	return nil
}

func (a *cli) retake() error {
	engine := a.ctl.Quiz()
	if engine == nil {
		return errors.New("no quiz open")
	}
	engine.Retake()
	color.Yellow("Quiz reset. Answer all questions and submit again.")
	return nil
}

func (a *cli) sendChat(ctx context.Context, question string) error {
	if question == "" {
		return errors.New("usage: chat <question>")
	}
	content := a.ctl.Content()
	if content == nil {
		return session.ErrNoActiveContent
	}
	reply, err := a.chat.Send(ctx, question)
	if err != nil {
		return err
	}
	if reply != nil {
		if reply.IsError {
			color.Red("%s", reply.Content)
		} else {
			fmt.Println(reply.Content)
		}
	}
	return nil
}

func (a *cli) printStatus() {
	content := a.ctl.Content()
	if content == nil {
		fmt.Println("No active content. Use 'upload' or 'switch'.")
		return
	}
	fmt.Printf("Content: %s (%s, %s)\n", content.ContentId, content.InputType, content.Status)
	if action := a.ctl.ActiveAction(); action != "" {
		fmt.Printf("Active action: %s\n", action)
	}
	if err := a.ctl.GenerateError(); err != "" {
		color.Red("Last generation error: %s", err)
	}
	if err := a.ctl.UploadError(); err != "" {
		color.Red("Last upload error: %s", err)
	}
}

func (a *cli) printResult() {
	result := a.ctl.Result()
	if result == nil {
		return
	}
	color.Cyan("--- %s ---", result.Action)
	if deck := a.ctl.Deck(); deck != nil {
		renderCard(os.Stdout, deck)
		return
	}
	if engine := a.ctl.Quiz(); engine != nil {
		renderQuiz(os.Stdout, engine)
		return
	}
	pretty, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", result.Data)
		return
	}
	fmt.Println(string(pretty))
}

// renderQuiz prints every question; practice mode is a study guide, so
// answers and explanations show immediately.
func renderQuiz(w io.Writer, engine *quiz.Engine) {
	for i, q := range engine.Questions() {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
		for key, text := range q.Options {
			fmt.Fprintf(w, "   %s) %s\n", key, text)
		}
		if !engine.TestMode() {
			fmt.Fprintf(w, "   Answer: %s", q.CorrectAnswer)
			if q.Explanation != "" {
				fmt.Fprintf(w, " - %s", q.Explanation)
			}
			fmt.Fprintln(w)
		}
	}
	if engine.TestMode() {
		fmt.Fprintln(w, "Test mode: use 'answer <question_id> <option>' then 'submit'.")
	}
}

func renderCard(w io.Writer, deck *flashcards.Deck) {
	card, ok := deck.Current()
	if !ok {
		fmt.Fprintln(w, "The deck is empty.")
		return
	}
	side, label := card.Front, "front"
	if deck.Flipped() {
		side, label = card.Back, "back"
	}
	fmt.Fprintf(w, "Card %d/%d (%s): %s\n", deck.Index()+1, deck.Len(), label, side)
	fmt.Fprintln(w, "Commands: flip, next, prev")
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func atoiDefault(s string, def int) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return def
	}
	return n
}
