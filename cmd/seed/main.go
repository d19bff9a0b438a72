package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"devconnector/internal/auth"
	"devconnector/internal/config"
	"devconnector/internal/db"
	"devconnector/internal/logging"
	"devconnector/internal/repository"
	"devconnector/internal/service"
)

// SeedUserData is one entry of the seed file.
type SeedUserData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		file        string
		printTokens bool
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Create the users listed in a JSON seed file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if err := run(cmd.Context(), cfg, logger, file, printTokens); err != nil {
				logger.WithError(err).Error("seed failed")
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed/users.json", "path to the users seed file")
	cmd.Flags().BoolVar(&printTokens, "print-tokens", false, "print a development token per user")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, file string, printTokens bool) error {
	users, err := readSeedFile(file)
	if err != nil {
		return err
	}
	logger.WithField("file", file).Infof("loaded %d users", len(users))

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	userService := service.NewUserService(repository.NewUserRepository(gormDB))

	created, existing, skipped := 0, 0, 0
	for _, item := range users {
		if strings.TrimSpace(item.Email) == "" || item.Password == "" {
			logger.WithField("name", item.Name).Warn("skipping user without email or password")
			skipped++
			continue
		}

		user, isNew, err := userService.EnsureUser(ctx, item.Name, item.Email, item.Password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", item.Email, err)
		}
		if isNew {
			created++
		} else {
			existing++
		}

		if printTokens {
			token, err := auth.NewToken(cfg.Auth.JWTSecret, user.ID, 0)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", user.Email, user.ID, token)
		}
	}

	logger.WithFields(logrus.Fields{
		"created":  created,
		"existing": existing,
		"skipped":  skipped,
	}).Info("seed completed")
	return nil
}

func readSeedFile(path string) ([]SeedUserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var users []SeedUserData
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return users, nil
}
