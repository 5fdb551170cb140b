package cards

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
)

const (
	cardWidth  = 640
	cardHeight = 320
)

// WelcomeCard renders the PNG greeting posted into a new member's
// private onboarding channel.
func WelcomeCard(username, guildName string) (*bytes.Buffer, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetHexColor("#36393f")
	dc.Clear()

	boxX, boxY := 40.0, 60.0
	boxW, boxH := float64(cardWidth)-80.0, float64(cardHeight)-120.0
	radius := (boxW + boxH) / 2 / 12

	dc.DrawRoundedRectangle(boxX, boxY, boxW, boxH, radius)
	dc.SetRGB(1, 1, 1)
	dc.Fill()

	dc.DrawRoundedRectangle(boxX, boxY, boxW, boxH, radius)
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.Stroke()

	text := fmt.Sprintf("Welcome, %s!", username)
	if guildName != "" {
		text += fmt.Sprintf("\n%s", guildName)
	}

	fontPadding := 20.0

	dc.SetRGB(0, 0, 0)
	dc.DrawStringWrapped(text, boxX+boxW/2, boxY+boxH/2, 0.5, 0.5, boxW-fontPadding, 1.5, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}

	return &buf, nil
}
