package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/ethanbaker/legal-assistant/pkg/utils"
)

// session tracks the conversation the terminal is currently talking in
type session struct {
	client         *sdk.Client
	conversationID string
	out            io.Writer
}

func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())
	log := utils.NewLogger(cfg)

	baseURL := cfg.GetWithDefault("API_URL", "http://localhost:"+cfg.GetWithDefault("API_PORT", "8080"))
	userID := cfg.GetWithDefault("CLI_USER_ID", "commandline-user")

	s := &session{
		client: sdk.NewClient(baseURL, cfg.Get("API_KEY"), userID),
		out:    os.Stdout,
	}

	if err := s.run(context.Background(), os.Stdin); err != nil {
		log.Fatal().Err(err).Msg("interactive session failed")
	}
}

// run reads lines from in until EOF or "exit"
func (s *session) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "Legal assistant started. Commands: /new, /history, /memory, exit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}

		if err := s.handle(ctx, input); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func (s *session) handle(ctx context.Context, input string) error {
	switch input {
	case "/new":
		s.conversationID = ""
		fmt.Fprintln(s.out, "Started a new conversation")
		return nil

	case "/history":
		if s.conversationID == "" {
			fmt.Fprintln(s.out, "No conversation yet")
			return nil
		}
		messages, err := s.client.ListMessages(ctx, s.conversationID, 0)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			fmt.Fprintf(s.out, "[%s] %s\n", msg.Role, msg.Content)
		}
		return nil

	case "/memory":
		mem, err := s.client.GetMemory(ctx)
		if err != nil {
			return err
		}
		if mem.Name != "" {
			fmt.Fprintf(s.out, "Name: %s\n", mem.Name)
		}
		for _, pref := range mem.Preferences {
			fmt.Fprintf(s.out, "Preference: %s\n", pref)
		}
		for _, item := range mem.Context {
			fmt.Fprintf(s.out, "Context: %s\n", item)
		}
		return nil
	}

	res, err := s.client.Chat(ctx, input, s.conversationID)
	if err != nil {
		return err
	}

	if s.conversationID != res.ConversationID {
		s.conversationID = res.ConversationID
		fmt.Fprintf(s.out, "Conversation: %s\n", res.ConversationID)
	}
	fmt.Fprintf(s.out, "Assistant: %s\n", res.Response)
	return nil
}
