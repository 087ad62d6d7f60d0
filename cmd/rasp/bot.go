package main

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quesurifn/rasp-ics/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Telegram.Token == "" {
			return errors.New("telegram token is not set, export TELEGRAM_BOT_TOKEN=<token>")
		}

		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("connect to telegram: %w", err)
		}
		api.Debug = debug

		svc, err := newService(nil, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		planner := bot.NewPlanner(logger)
		planner.Start()
		defer planner.Stop()

		b := &bot.Bot{
			Logger:   logger,
			API:      api,
			Schedule: svc,
			Renderer: newRenderer(),
			Planner:  planner,
			Username: api.Self.UserName,
			URL:      cfg.Schedule.URL,
			Group:    cfg.Schedule.Group,
		}
		if err := b.Digest(cmd.Context(), cfg.Telegram.DigestSpec, cfg.Telegram.DigestChats); err != nil {
			return err
		}

		logger.Info("bot", zap.String("username", api.Self.UserName))
		return bot.Run(cmd.Context(), api, b)
	},
}
