// Package main - демонстрационная консоль подсистемы опыта Koydo.
//
// Поднимает одну сессию ученика против реального реестра опыта:
// гидратация, оптимистичные начисления, отправка результата игры и
// фоновая реконсиляция. Полезно для ручной проверки против staging.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистый редьюсер агрегата опыта и доменные события
// - Application: сессия, очередь наград, адаптер отправки игр
// - Infrastructure: HTTP-клиент реестра с rate limiting
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/koydo-hub/koydo-experience-hub/config"
	"github.com/koydo-hub/koydo-experience-hub/internal/application/session"
	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
	"github.com/koydo-hub/koydo-experience-hub/internal/infrastructure/external/ledger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.App.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting playground",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Environment,
		"ledger", cfg.Ledger.BaseURL,
	)

	rlConfig := ledger.DefaultRateLimiterConfig()
	rlConfig.RequestsPerSecond = float64(cfg.Ledger.RateLimit)
	rlConfig.BurstSize = cfg.Ledger.RateLimitBurst

	client := ledger.NewClient(ledger.ClientConfig{
		BaseURL:           cfg.Ledger.BaseURL,
		APIKey:            cfg.Ledger.APIKey,
		Timeout:           cfg.Ledger.RequestTimeout,
		RateLimiterConfig: rlConfig,
		Logger:            logger,
		Debug:             cfg.App.Debug,
	})

	sess := session.NewSession(session.Config{Ledger: client, Logger: logger})
	defer sess.Close()

	hydrateCtx, cancel := context.WithTimeout(context.Background(), cfg.Session.HydrateTimeout)
	sess.Hydrate(hydrateCtx)
	cancel()

	state := sess.State()
	logger.Info("hydrated",
		"points", state.Points,
		"level", state.Level,
		"badges", len(state.Badges),
		"daily_streak", state.Streaks.Daily,
		"unavailable", state.IsUnavailable,
	)

	if cfg.Session.SweepInterval > 0 {
		sess.StartSweep(cfg.Session.SweepInterval)
	}

	// Демонстрационный сценарий: начисление очков и отправка игры.
	sess.AwardXP(25, "playground:warmup")
	logReward(logger, sess)

	adapter := session.NewSubmissionAdapter(sess)
	outcome := adapter.Submit(context.Background(), experience.GameResultInput{
		GameType:   "anagrams",
		Difficulty: "medium",
		Score:      80,
		MaxScore:   100,
		TimeMs:     45000,
	})
	logger.Info("game submitted",
		"stars", outcome.Stars,
		"points_awarded", outcome.PointsAwarded,
		"badge", outcome.BadgeEarned,
		"error", outcome.Error,
	)
	logReward(logger, sess)

	// Ожидание сигнала завершения: фоновая реконсиляция продолжает
	// работать, пока процесс жив.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("shutting down", "signal", sig.String())

	final := sess.State()
	logger.Info("final state", "points", final.Points, "level", final.Level, "badges", len(final.Badges))
	return nil
}

// logReward печатает текущую награду в очереди показа и закрывает её.
func logReward(logger *slog.Logger, sess *session.Session) {
	reward := sess.PendingReward()
	if reward == nil {
		return
	}
	logger.Info("reward",
		"type", reward.Type,
		"title", reward.Title,
		"description", reward.Description,
		"confetti", reward.ShowConfetti,
	)
	sess.DismissReward()
}
