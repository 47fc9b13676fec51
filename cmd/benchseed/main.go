// Command benchseed loads YAML fixtures through the application services,
// so seeded data obeys the same rules as live traffic.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Carig-G/the-bench/internal/app"
	"github.com/Carig-G/the-bench/internal/config"
	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/httpserver"
	"github.com/Carig-G/the-bench/internal/service"
)

type fixtures struct {
	Users         []userFixture         `yaml:"users"`
	Conversations []conversationFixture `yaml:"conversations"`
}

type userFixture struct {
	Username    string  `yaml:"username"`
	Password    string  `yaml:"password"`
	DisplayName *string `yaml:"display_name"`
	ContactInfo *string `yaml:"contact_info"`
}

type conversationFixture struct {
	Title       string           `yaml:"title"`
	Topic       string           `yaml:"topic"`
	Description *string          `yaml:"description"`
	Creator     string           `yaml:"creator"`
	Opening     string           `yaml:"opening"`
	Tags        []string         `yaml:"tags"`
	Responder   string           `yaml:"responder"`
	Messages    []messageFixture `yaml:"messages"`
	Readers     []string         `yaml:"readers"`
	Status      string           `yaml:"status"`
}

type messageFixture struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
}

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	path := pflag.StringP("fixtures", "f", "seed.yaml", "fixture file")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg.Debug)

	if err := run(context.Background(), cfg, *path, log); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, log *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	svc, err := app.NewServices(cfg, st, nil, log)
	if err != nil {
		return err
	}

	s := &seeder{svc: svc, log: log, users: map[string]int64{}}
	if err := s.seed(ctx, fx); err != nil {
		return err
	}
	log.Info("seeded", "users", len(s.users), "conversations", len(fx.Conversations))
	return nil
}

type seeder struct {
	svc   httpserver.Services
	log   *slog.Logger
	users map[string]int64
}

func (s *seeder) seed(ctx context.Context, fx fixtures) error {
	for _, u := range fx.Users {
		if err := s.user(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Username, err)
		}
	}
	for _, c := range fx.Conversations {
		if err := s.conversation(ctx, c); err != nil {
			return fmt.Errorf("conversation %q: %w", c.Title, err)
		}
	}
	return nil
}

// user registers u, or logs in when the username already exists.
func (s *seeder) user(ctx context.Context, u userFixture) error {
	res, err := s.svc.Auth.Register(ctx, service.RegisterInput{Username: u.Username, Password: u.Password})
	if errors.Is(err, domain.ErrConflict) {
		res, err = s.svc.Auth.Login(ctx, service.LoginInput{Username: u.Username, Password: u.Password})
	}
	if err != nil {
		return err
	}
	s.users[u.Username] = res.User.ID
	if u.DisplayName == nil && u.ContactInfo == nil {
		return nil
	}
	_, err = s.svc.Users.UpdateProfile(ctx, res.User.ID, domain.ProfilePatch{
		DisplayName: u.DisplayName,
		ContactInfo: u.ContactInfo,
	})
	return err
}

func (s *seeder) id(username string) (int64, error) {
	id, ok := s.users[username]
	if !ok {
		return 0, fmt.Errorf("unknown user %q", username)
	}
	return id, nil
}

func (s *seeder) conversation(ctx context.Context, c conversationFixture) error {
	creator, err := s.id(c.Creator)
	if err != nil {
		return err
	}
	conv, err := s.svc.Conversations.Start(ctx, creator, service.StartInput{
		Title:          c.Title,
		Topic:          c.Topic,
		Description:    c.Description,
		OpeningMessage: c.Opening,
		Tags:           c.Tags,
	})
	if err != nil {
		return err
	}
	if c.Responder == "" {
		return nil
	}

	responder, err := s.id(c.Responder)
	if err != nil {
		return err
	}
	if _, err := s.svc.Conversations.Join(ctx, conv.ID, responder); err != nil {
		return err
	}
	for _, m := range c.Messages {
		author, err := s.id(m.Author)
		if err != nil {
			return err
		}
		if _, err := s.svc.Messages.Post(ctx, author, service.PostInput{ConversationID: conv.ID, Content: m.Content}); err != nil {
			return err
		}
	}
	for _, name := range c.Readers {
		reader, err := s.id(name)
		if err != nil {
			return err
		}
		if _, err := s.svc.Payments.Create(ctx, reader, service.CreatePaymentInput{ConversationID: conv.ID}); err != nil {
			return err
		}
	}
	if c.Status != "" && c.Status != string(domain.StatusActive) {
		if _, err := s.svc.Conversations.UpdateStatus(ctx, conv.ID, creator, c.Status); err != nil {
			return err
		}
	}
	s.log.Debug("seeded conversation", "conversation_id", conv.ID, "title", c.Title)
	return nil
}
