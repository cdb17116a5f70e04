package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"pkg.classd.app/classd/internal/storage"
)

type Config struct {
	guilds []string
}

// NewConfig holds the guilds slash commands are registered in.
func NewConfig(guilds []string) *Config {
	return &Config{guilds: guilds}
}

type Discord struct {
	ctx     context.Context
	logger  *zap.SugaredLogger
	session *discordgo.Session
	config  *Config
	storage *storage.Storage
}

func NewDiscord(ctx context.Context, log *zap.Logger, auth string, config *Config, store *storage.Storage) (*Discord, error) {
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return &Discord{ctx: ctx, logger: log.Sugar(), session: s, config: config, storage: store}, nil
}

func (d *Discord) addHandlers() {
	d.session.AddHandlerOnce(d.onReady)
	d.session.AddHandler(d.onInteractionCreate)
}

func (d *Discord) Connect() error {
	d.addHandlers()
	return d.session.Open()
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) onReady(_ *discordgo.Session, e *discordgo.Ready) {
	d.logger.Infof("Logged in Discord API as %s.", e.User)
	d.registerCommands(e.User.ID)
}

// onInteractionCreate routes slash commands and the class menu
// component events. Each event is handled independently; failures are
// logged and the event dropped, never retried.
func (d *Discord) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		d.onCommand(i)
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		switch {
		case data.CustomID == classMenuButtonID:
			d.onClassMenuButton(i)
		case isClassMenuID(data.CustomID):
			d.onClassMenuSubmit(i)
		}
	}
}
