package pushover

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const apiURL = "https://api.pushover.net/1/messages.json"

// Service sends push alerts to the operator. With no credentials it is
// disabled and every call is a silent no-op; delivery failures are
// logged and swallowed, never returned.
type Service struct {
	appToken string
	userKey  string
	enabled  bool
}

func NewFromEnv() *Service {
	appToken := os.Getenv("PUSHOVER_APP_TOKEN")
	userKey := os.Getenv("PUSHOVER_USER_KEY")

	return &Service{
		appToken: appToken,
		userKey:  userKey,
		enabled:  appToken != "" && userKey != "",
	}
}

// Notify sends one alert. Priority follows the Pushover scale
// (-2..2, 0 normal, 1 high). Returns whether delivery succeeded.
func (p *Service) Notify(message, title string, priority int) bool {
	if !p.enabled {
		return false
	}

	if title == "" {
		title = "Vaulty Bot Alert"
	}

	form := url.Values{
		"token":    {p.appToken},
		"user":     {p.userKey},
		"message":  {message},
		"title":    {title},
		"priority": {strconv.Itoa(priority)},
	}

	resp, err := http.Post(apiURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("Pushover: request error: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Pushover: failed to send notification (%v)", resp.StatusCode)
		return false
	}

	return true
}

func (p *Service) NotifyBotStarted(serverCount int) bool {
	plural := "s"
	if serverCount == 1 {
		plural = ""
	}

	return p.Notify(
		fmt.Sprintf("🤖 Vaulty Bot is now online and ready!\n\n📊 Managing %d Discord server%s", serverCount, plural),
		"Bot Started", 0)
}

func (p *Service) NotifyNewServer(serverName, serverId string) bool {
	return p.Notify(
		fmt.Sprintf("📥 Bot joined new server!\n\n🏠 Server: %s\n🆔 ID: %s\n\nWaiting for admin to run /server-setup", serverName, serverId),
		"New Server", 0)
}

func (p *Service) NotifyHealthCheckFailure(serverName string, issues []string) bool {
	return p.Notify(
		fmt.Sprintf("⚠️ Health check failed!\n\n🏠 Server: %s\n❌ Issues: %s", serverName, strings.Join(issues, ", ")),
		"Health Check Failed", 0)
}

func (p *Service) NotifyDailySummary(onboardings, servers int) bool {
	return p.Notify(
		fmt.Sprintf("📊 Daily Summary\n\n📈 Active onboardings: %d\n🏠 Servers: %d", onboardings, servers),
		"Daily Summary", -1)
}
