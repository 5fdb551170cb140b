package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"vaulty/bot/commands"
	"vaulty/bot/events"
	"vaulty/bot/handlers"
	"vaulty/bot/onboarding"
	"vaulty/bot/store"
	"vaulty/bot/tasks"
	"vaulty/packages/pushover"
	"vaulty/packages/sheets"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	REGISTER_COMMANDS = flag.Bool("register-commands", true, "True by default (useful in development)")
	TESTING           = flag.Bool("testing", false, "")
)

var s *discordgo.Session
var db *gorm.DB
var st *store.Store

func init() { flag.Parse() }

func init() {
	// Load .env only if --testing=true
	if *TESTING {
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	// Load BotToken
	BotToken := os.Getenv("BOT_TOKEN")

	var err error
	s, err = discordgo.New("Bot " + BotToken)
	if err != nil {
		log.Fatalf("Invalid bot parameters: %v", err)
	}

	s.Identify.Intents |= discordgo.IntentGuilds
	s.Identify.Intents |= discordgo.IntentGuildMembers
	s.Identify.Intents |= discordgo.IntentGuildMessages
	s.Identify.Intents |= discordgo.IntentMessageContent
}

func init() {
	var err error
	db, err = gorm.Open(postgres.Open(os.Getenv("POSTGRES_DSN")), &gorm.Config{})

	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	st = store.New(db)

	if err := st.Migrate(); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}
}

// newSheetsClient builds the master spreadsheet client. Without
// credentials the bot still runs; rows are simply not persisted.
func newSheetsClient() onboarding.RowAppender {
	credentials := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	spreadsheetId := os.Getenv("MASTER_SPREADSHEET_ID")

	if credentials == "" || spreadsheetId == "" {
		log.Println("Sheets persistence disabled: GOOGLE_CREDENTIALS_JSON or MASTER_SPREADSHEET_ID not set")
		return nil
	}

	client, err := sheets.New(context.Background(), []byte(credentials), spreadsheetId)
	if err != nil {
		log.Printf("Sheets persistence disabled: %v", err)
		return nil
	}

	return client
}

func main() {
	notifier := pushover.NewFromEnv()

	engine := onboarding.NewEngine(s, st, newSheetsClient(), notifier)

	s.AddHandler(events.ReadyHandler(notifier))
	s.AddHandler(events.GuildMemberAddHandler(st, engine))
	s.AddHandler(events.MessageCreateHandler(engine))
	s.AddHandler(events.GuildCreateHandler(st, notifier))
	s.AddHandler(events.GuildDeleteHandler(st))
	s.AddHandler(handlers.InteractionCreateHandler(st, engine, notifier))

	err := s.Open()

	if err != nil {
		log.Fatalf("Cannot open the session: %v", err)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(1).Day().At("06:00").Do(tasks.HealthCheck(st, s, notifier))
	scheduler.Every(1).Day().At("18:00").Do(tasks.DailySummary(st, engine, notifier))
	scheduler.StartAsync()

	registeredCommands := make([]*discordgo.ApplicationCommand, len(commands.Commands))
	guildId := "" // Empty to register global commands
	if *REGISTER_COMMANDS {
		log.Println("Adding commands...")

		for i, command := range commands.Commands {

			cmd, err := s.ApplicationCommandCreate(s.State.User.ID, guildId, command)

			if err != nil {
				log.Panicf("Cannot create '%v' command: %v", command.Name, err)
			}

			registeredCommands[i] = cmd
		}
	}

	defer s.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	log.Println("Press Ctrl+C to exit")
	<-stop

	scheduler.Stop()

	CLEAN_COMMANDS_AFTER_SHUTDOWN := os.Getenv("CLEAN_COMMANDS_AFTER_SHUTDOWN")

	if CLEAN_COMMANDS_AFTER_SHUTDOWN == "true" {
		log.Println("Removing commands...")

		for _, command := range registeredCommands {
			err := s.ApplicationCommandDelete(s.State.User.ID, guildId, command.ID)

			if err != nil {
				log.Panicf("Cannot delete '%v' command: %v", command.Name, err)
			}

		}
	}

	log.Println("Gracefully shutting down.")
}
