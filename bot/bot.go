// Package bot implements the guided conversation that collects a listing id,
// a region and search phrases, then runs a rank sweep for the chat.
package bot

import (
	"avito-position-probe/config"
	"avito-position-probe/models"
	"avito-position-probe/scraper/avito"
	"avito-position-probe/services"
	"avito-position-probe/utils"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// SessionStore persists the per-chat setup between messages.
type SessionStore interface {
	Load(ctx context.Context, chatID int64) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, chatID int64) error
}

// ListingProber confirms that a listing id refers to a live ad.
type ListingProber interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ReplyFunc sends one message back to the chat.
type ReplyFunc func(text string) error

type Bot struct {
	cfg     *config.Config
	store   SessionStore
	fetcher avito.PageFetcher
	prober  ListingProber
	logger  *slog.Logger
}

// New builds a Bot. prober may be nil, in which case listing ids are only
// checked for format.
func New(cfg *config.Config, store SessionStore, fetcher avito.PageFetcher, prober ListingProber, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Bot{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		prober:  prober,
		logger:  logger,
	}
}

// Handle processes one incoming message of chatID. Every chat has its own
// session; nothing is shared between chats.
func (b *Bot) Handle(ctx context.Context, chatID int64, text string, reply ReplyFunc) error {
	session, err := b.store.Load(ctx, chatID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return b.handleCommand(ctx, session, text, reply)
	}
	return b.handleText(ctx, session, text, reply)
}

func (b *Bot) handleCommand(ctx context.Context, session *models.Session, text string, reply ReplyFunc) error {
	fields := strings.Fields(text)
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "/start", "/help":
		session.State = models.StateIdle
		return b.saveAndReply(ctx, session, reply, helpText)

	case "/set_ad_id":
		if len(args) > 0 {
			return b.receiveAdID(ctx, session, args[0], reply)
		}
		session.State = models.StateAwaitAdID
		return b.saveAndReply(ctx, session, reply, adIDPrompt)

	case "/change_region":
		if session.TargetID == "" {
			return reply("Set the listing ID first with /set_ad_id")
		}
		session.State = models.StateChooseRegion
		return b.saveAndReply(ctx, session, reply, regionPrompt())

	case "/check":
		if session.TargetID == "" {
			return reply("Set the listing ID first with /set_ad_id")
		}
		if len(session.Regions) == 0 {
			return reply("Choose a region first with /change_region")
		}
		session.State = models.StateAwaitQueries
		return b.saveAndReply(ctx, session, reply, queriesPrompt(b.cfg.MaxQueries))

	case "/reset":
		if err := b.store.Delete(ctx, session.ChatID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return reply("Listing and region forgotten. Send /set_ad_id to start over.")

	case "/cancel":
		session.State = models.StateIdle
		return b.saveAndReply(ctx, session, reply, "Operation cancelled")

	default:
		return reply(fmt.Sprintf("Unknown command %s. Send /start for help.", command))
	}
}

func (b *Bot) handleText(ctx context.Context, session *models.Session, text string, reply ReplyFunc) error {
	switch session.State {
	case models.StateAwaitAdID:
		return b.receiveAdID(ctx, session, text, reply)
	case models.StateChooseRegion:
		return b.receiveRegion(ctx, session, text, reply)
	case models.StateAwaitQueries:
		return b.receiveQueries(ctx, session, text, reply)
	default:
		return reply("Send /set_ad_id to set a listing or /check to run a check.")
	}
}

func (b *Bot) receiveAdID(ctx context.Context, session *models.Session, text string, reply ReplyFunc) error {
	id := strings.TrimSpace(text)
	session.State = models.StateAwaitAdID

	if err := models.ValidateTargetID(id); err != nil {
		msg := fmt.Sprintf("Invalid listing ID: digits only, at least %d of them. Try again or send /cancel.", models.MinTargetIDLength)
		return b.saveAndReply(ctx, session, reply, msg)
	}

	if b.prober != nil {
		exists, err := b.prober.Exists(ctx, id)
		if err != nil {
			b.logger.Warn("listing probe failed", "chat_id", session.ChatID, "target_id", id, "error", err)
			return b.saveAndReply(ctx, session, reply, "Could not check the listing right now. Try again or send /cancel.")
		}
		if !exists {
			return b.saveAndReply(ctx, session, reply, "Listing not found. Send another ID or /cancel.")
		}
	}

	session.TargetID = id
	session.State = models.StateChooseRegion
	if err := b.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := reply("Listing ID set: " + id); err != nil {
		return err
	}
	return reply(regionPrompt())
}

func (b *Bot) receiveRegion(ctx context.Context, session *models.Session, text string, reply ReplyFunc) error {
	choice, ok := lookupChoice(text)
	if !ok {
		return reply("Please pick one of the listed regions.\n" + regionPrompt())
	}

	session.Regions = choice.Regions
	session.State = models.StateIdle
	return b.saveAndReply(ctx, session, reply, fmt.Sprintf("Region set: %s\nStart a check with /check", choice.Label))
}

// lookupChoice accepts a choice label or its number in the prompt.
func lookupChoice(text string) (models.RegionChoice, bool) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(models.RegionChoices) {
		return models.RegionChoices[n-1], true
	}
	return models.LookupRegionChoice(text)
}

func (b *Bot) receiveQueries(ctx context.Context, session *models.Session, text string, reply ReplyFunc) error {
	queries := splitQueries(text)
	if len(queries) == 0 {
		return reply("No search phrases received. Try again or send /cancel.")
	}

	if len(queries) > b.cfg.MaxQueries {
		queries = queries[:b.cfg.MaxQueries]
		if err := reply(fmt.Sprintf("Only the first %d phrases will be checked.", b.cfg.MaxQueries)); err != nil {
			return err
		}
	}

	session.State = models.StateIdle
	if err := b.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	req := models.SweepRequest{
		TargetID: session.TargetID,
		Queries:  queries,
		Regions:  session.Regions,
	}

	sweeper := avito.NewSweeper(b.cfg,
		avito.WithLogger(b.logger.With("chat_id", session.ChatID)),
		avito.WithProgress(func(job models.SweepJob) {
			if err := reply(progressText(job)); err != nil {
				b.logger.Warn("progress reply failed", "chat_id", session.ChatID, "error", err)
			}
		}),
	)

	cells, err := sweeper.Run(ctx, req, b.fetcher)
	if errors.Is(err, models.ErrConfiguration) {
		return reply("Cannot start the check: " + err.Error())
	}
	if err != nil && cells == nil {
		return err
	}

	report := services.BuildReport(cells, req.TargetID)
	if err != nil {
		report += "\nThe check was interrupted; unchecked pairs are marked as cancelled."
	}
	return reply(report)
}

// splitQueries returns the non-blank lines of text.
func splitQueries(text string) []string {
	var queries []string
	for _, line := range strings.Split(text, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

func (b *Bot) saveAndReply(ctx context.Context, session *models.Session, reply ReplyFunc, text string) error {
	if err := b.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return reply(text)
}
